package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/anacrolix/log"
	qt "github.com/frankban/quicktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anacrolix/relink/internal/testutil"
	"github.com/anacrolix/relink/pieceindex"
	"github.com/anacrolix/relink/storage"
)

func TestSamplePieces(t *testing.T) {
	for _, _case := range []struct {
		begin, end int
		fraction   float64
		expected   []int
	}{
		{0, 10, 1, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{0, 10, 2, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{0, 10, 0, nil},
		{0, 10, -1, nil},
		{0, 10, 0.3, []int{0, 3, 6}},
		{0, 10, 0.5, []int{0, 2, 4, 6, 8}},
		{0, 10, 0.01, []int{0}},
		{5, 8, 0.5, []int{5, 6}},
		{4, 4, 1, nil},
		{3, 4, 0.1, []int{3}},
	} {
		assert.Equal(t, _case.expected, SamplePieces(_case.begin, _case.end, _case.fraction), "%+v", _case)
	}
}

type fixture struct {
	tt    testutil.Torrent
	v     *Verifier
	paths []string
}

func newFixture(t *testing.T, tt testutil.Torrent, pieceLength int64) *fixture {
	m := tt.Manifest(pieceLength)
	files := storage.NewFileCache(storage.FileCacheOpts{})
	t.Cleanup(func() { files.Close() })
	return &fixture{
		tt: tt,
		v: &Verifier{
			Manifest: m,
			Index:    pieceindex.Build(m),
			Files:    files,
			Logger:   log.Default,
		},
		paths: tt.WriteFiles(t.TempDir()),
	}
}

func (me *fixture) candidate(t *testing.T, entry int) Candidate {
	fi, err := os.Stat(me.paths[entry])
	require.NoError(t, err)
	return Candidate{Path: me.paths[entry], Size: fi.Size(), ModTime: fi.ModTime()}
}

func (me *fixture) settled(t *testing.T, entries ...int) SettledMap {
	ret := make(SettledMap)
	for _, e := range entries {
		ret[e] = me.candidate(t, e)
	}
	return ret
}

// Flips the bits of the byte at off.
func corrupt(t *testing.T, path string, off int64) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()
	var b [1]byte
	_, err = f.ReadAt(b[:], off)
	require.NoError(t, err)
	b[0] = ^b[0]
	_, err = f.WriteAt(b[:], off)
	require.NoError(t, err)
}

func TestScoreGreeting(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture(t, testutil.Greeting, 5)
	out, err := f.v.Score(ctx, f.candidate(t, 0), 0, 1, NoneSettled{})
	c.Assert(err, qt.IsNil)
	c.Check(out.Checked, qt.Equals, uint32(3))
	c.Check(out.Matched, qt.Equals, uint32(3))
	c.Check(out.Accepted(), qt.IsTrue)
	c.Check(out.Ratio(), qt.Equals, 1.0)

	out, err = f.v.Score(ctx, f.candidate(t, 0), 0, 0, NoneSettled{})
	c.Assert(err, qt.IsNil)
	c.Check(out.Checked, qt.Equals, uint32(0))
	c.Check(out.Accepted(), qt.IsFalse)
}

func TestScoreCorrupted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Greeting, 5)
	corrupt(t, f.paths[0], 12)
	cand := f.candidate(t, 0)

	out, err := f.v.Score(ctx, cand, 0, 1, NoneSettled{})
	require.NoError(t, err)
	assert.False(t, out.Accepted())
	assert.EqualValues(t, 3, out.Checked)
	assert.EqualValues(t, 2, out.Matched)
	assert.Equal(t, []int{2}, out.Mismatched.Slice())

	// The sample doesn't include the last piece.
	out, err = f.v.Score(ctx, cand, 0, 0.5, NoneSettled{})
	require.NoError(t, err)
	assert.True(t, out.Accepted())
	assert.EqualValues(t, 2, out.Checked)
}

func TestScoreStopsAtFirstMismatch(t *testing.T) {
	tt := testutil.Torrent{Name: "x", Files: []testutil.File{{Data: testutil.RandomData(1, 100)}}}
	f := newFixture(t, tt, 10)
	corrupt(t, f.paths[0], 25)
	corrupt(t, f.paths[0], 75)
	out, err := f.v.Score(context.Background(), f.candidate(t, 0), 0, 1, NoneSettled{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, out.Checked)
	assert.EqualValues(t, 2, out.Matched)
	assert.Equal(t, []int{2}, out.Mismatched.Slice())
}

func TestScoreDeterministic(t *testing.T) {
	tt := testutil.Torrent{Name: "x", Files: []testutil.File{{Data: testutil.RandomData(2, 1000)}}}
	f := newFixture(t, tt, 16)
	for i := 0; i < 1000; i += 37 {
		corrupt(t, f.paths[0], int64(i))
	}
	cand := f.candidate(t, 0)
	first, err := f.v.Score(context.Background(), cand, 0, 0.2, NoneSettled{})
	require.NoError(t, err)
	for range 3 {
		again, err := f.v.Score(context.Background(), cand, 0, 0.2, NoneSettled{})
		require.NoError(t, err)
		assert.Equal(t, first.String(), again.String())
	}
}

func spanningTorrent() testutil.Torrent {
	return testutil.Torrent{Name: "dir", Files: []testutil.File{
		{Name: "a", Data: testutil.RandomData(3, 10)},
		{Name: "b", Data: testutil.RandomData(4, 10)},
	}}
}

func TestScoreNeedsSettledNeighbour(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture(t, spanningTorrent(), 4)
	// Piece 2 spans both files.
	out, err := f.v.Score(ctx, f.candidate(t, 1), 1, 1, NoneSettled{})
	c.Assert(err, qt.IsNil)
	c.Check(out.Unverifiable, qt.Equals, uint32(1))
	c.Check(out.Checked, qt.Equals, uint32(2))
	c.Check(out.Accepted(), qt.IsTrue)

	out, err = f.v.Score(ctx, f.candidate(t, 1), 1, 1, f.settled(t, 0))
	c.Assert(err, qt.IsNil)
	c.Check(out.Unverifiable, qt.Equals, uint32(0))
	c.Check(out.Checked, qt.Equals, uint32(3))
	c.Check(out.Accepted(), qt.IsTrue)
}

func TestScoreBadNeighbourRejects(t *testing.T) {
	f := newFixture(t, spanningTorrent(), 4)
	settled := f.settled(t, 0)
	corrupt(t, f.paths[0], 9)
	out, err := f.v.Score(context.Background(), f.candidate(t, 1), 1, 1, settled)
	require.NoError(t, err)
	assert.False(t, out.Accepted())
	assert.Equal(t, []int{2}, out.Mismatched.Slice())
}

func TestScoreMissingNeighbourIsUnverifiable(t *testing.T) {
	f := newFixture(t, spanningTorrent(), 4)
	settled := f.settled(t, 0)
	require.NoError(t, os.Remove(f.paths[0]))
	out, err := f.v.Score(context.Background(), f.candidate(t, 1), 1, 1, settled)
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.Unverifiable)
	assert.EqualValues(t, 2, out.Checked)
}

func TestScorePadding(t *testing.T) {
	tt := testutil.Torrent{Name: "dir", Files: []testutil.File{
		{Name: "a", Data: "abc"},
		{Name: ".pad/1", Data: testutil.Zeros(1), Attr: "p"},
		{Name: "b", Data: "defgh"},
	}}
	f := newFixture(t, tt, 4)
	for _, entry := range []int{0, 2} {
		out, err := f.v.Score(context.Background(), f.candidate(t, entry), entry, 1, NoneSettled{})
		require.NoError(t, err)
		assert.True(t, out.Accepted(), "entry %v: %v", entry, &out)
		assert.Zero(t, out.Unverifiable)
	}
}

func TestScoreVerdictCache(t *testing.T) {
	f := newFixture(t, testutil.Greeting, 5)
	f.v.Verdicts = storage.NewMapPieceVerdicts()
	cand := f.candidate(t, 0)
	out, err := f.v.Score(context.Background(), cand, 0, 1, NoneSettled{})
	require.NoError(t, err)
	require.True(t, out.Accepted())
	hits := verdictCacheHits.Value()
	// The candidate fingerprint is unchanged, so the cached verdicts stand.
	corrupt(t, f.paths[0], 0)
	out, err = f.v.Score(context.Background(), cand, 0, 1, NoneSettled{})
	require.NoError(t, err)
	assert.True(t, out.Accepted())
	assert.EqualValues(t, hits+3, verdictCacheHits.Value())
	// A different fingerprint is hashed again.
	cand.ModTime = cand.ModTime.Add(1)
	out, err = f.v.Score(context.Background(), cand, 0, 1, NoneSettled{})
	require.NoError(t, err)
	assert.False(t, out.Accepted())
}

func TestScoreErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.Greeting, 5)
	cand := f.candidate(t, 0)

	opens := candidateOpenErrors.Value()
	_, err := f.v.Score(ctx, Candidate{Path: filepath.Join(t.TempDir(), "nope"), Size: cand.Size}, 0, 1, NoneSettled{})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.EqualValues(t, opens+1, candidateOpenErrors.Value())

	_, err = f.v.Score(ctx, Candidate{Path: cand.Path, Size: cand.Size + 1}, 0, 1, NoneSettled{})
	assert.Error(t, err)

	// Truncated after it was scanned.
	require.NoError(t, os.Truncate(cand.Path, 7))
	_, err = f.v.Score(ctx, cand, 0, 1, NoneSettled{})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = f.v.Score(cancelled, cand, 0, 1, NoneSettled{})
	assert.ErrorIs(t, err, context.Canceled)
}
