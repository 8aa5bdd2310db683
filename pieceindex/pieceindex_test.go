package pieceindex

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anacrolix/relink/internal/testutil"
	"github.com/anacrolix/relink/metainfo"
	"github.com/anacrolix/relink/segments"
)

func manifest(pieceLength int64, lengths ...int64) *metainfo.Manifest {
	m := &metainfo.Manifest{Name: "t", IsDir: true, PieceLength: pieceLength}
	var off int64
	for _, l := range lengths {
		m.Files = append(m.Files, metainfo.FileEntry{Path: []string{"f"}, Length: l, Offset: off})
		off += l
	}
	m.Pieces = make([]metainfo.Hash, metainfo.NumPiecesFor(off, pieceLength))
	return m
}

// 1 MiB is exactly four 256 KiB pieces, so the second file starts on a piece boundary and no
// piece contains both files.
func TestPieceAlignedFiles(t *testing.T) {
	idx := Build(manifest(262144, 1048576, 500000))
	require.Equal(t, 6, idx.NumPieces())
	assert.Equal(t, PieceRange{0, 4}, idx.FilePieces(0))
	assert.Equal(t, PieceRange{4, 6}, idx.FilePieces(1))
	for p := range 4 {
		assert.Equal(t, []Segment{{0, int64(p) * 262144, 262144}}, idx.Segments(p))
	}
	assert.Equal(t, []Segment{{1, 0, 262144}}, idx.Segments(4))
	assert.Equal(t, []Segment{{1, 262144, 500000 - 262144}}, idx.Segments(5))
	assert.EqualValues(t, 500000-262144, idx.PieceLength(5))
	assert.EqualValues(t, 262144, idx.PieceLength(3))
	assert.Equal(t, segments.Extent{Start: 1048576, Length: 500000}, idx.FileExtent(1))
}

func TestPieceSpanningFiles(t *testing.T) {
	idx := Build(manifest(262144, 1000000, 500000))
	require.Equal(t, 6, idx.NumPieces())
	assert.Equal(t, PieceRange{0, 4}, idx.FilePieces(0))
	assert.Equal(t, PieceRange{3, 6}, idx.FilePieces(1))
	assert.Equal(t, []Segment{
		{0, 3 * 262144, 1000000 - 3*262144},
		{1, 0, 4*262144 - 1000000},
	}, idx.Segments(3))
	assert.False(t, idx.PieceWithinFile(3))
	assert.True(t, idx.PieceWithinFile(2))
}

func TestZeroLengthFiles(t *testing.T) {
	idx := Build(manifest(4, 0, 3, 0, 5, 0))
	require.Equal(t, 2, idx.NumPieces())
	assert.Equal(t, 0, idx.FilePieces(0).Len())
	assert.Equal(t, 0, idx.FilePieces(2).Len())
	assert.Equal(t, 0, idx.FilePieces(4).Len())
	assert.Equal(t, PieceRange{2, 2}, idx.FilePieces(4))
	assert.Equal(t, []Segment{{1, 0, 3}, {3, 0, 1}}, idx.Segments(0))
	assert.Equal(t, []Segment{{3, 1, 4}}, idx.Segments(1))
	fo := idx.FileAt(3)
	require.True(t, fo.Ok)
	assert.Equal(t, segments.IndexAndOffset{Index: 3, Offset: 0}, fo.Value)
	assert.False(t, idx.FileAt(8).Ok)
}

func TestEmptyTorrent(t *testing.T) {
	idx := Build(manifest(16, 0))
	qt.Assert(t, qt.Equals(idx.NumPieces(), 0))
	qt.Assert(t, qt.Equals(idx.FilePieces(0), PieceRange{0, 0}))
}

func TestGreeting(t *testing.T) {
	idx := Build(testutil.Greeting.Manifest(5))
	qt.Assert(t, qt.Equals(idx.NumPieces(), 3))
	qt.Assert(t, qt.DeepEquals(idx.Segments(2), []Segment{{0, 10, 3}}))
	qt.Assert(t, qt.Equals(idx.TotalLength(), int64(13)))
}

// Every byte of every file is covered by exactly one piece, and each piece's segments add up to
// the piece's length. The segments must agree with locating the piece in the file extents.
func TestCoverage(t *testing.T) {
	for _, _case := range []struct {
		pieceLength int64
		lengths     []int64
	}{
		{262144, []int64{1048576, 500000}},
		{262144, []int64{1000000, 500000}},
		{3, []int64{1, 1, 1, 1, 1, 1, 1}},
		{7, []int64{0, 20, 0, 1, 13, 0}},
		{1, []int64{5, 0, 2}},
		{1 << 20, []int64{3}},
		{10, []int64{10, 10, 10}},
	} {
		m := manifest(_case.pieceLength, _case.lengths...)
		idx := Build(m)
		covered := make([]int64, len(m.Files))
		for p := range idx.NumPieces() {
			var sum int64
			var located []Segment
			idx.files.Locate(
				segments.Extent{Start: idx.PieceOffset(p), Length: idx.PieceLength(p)},
				func(i int, e segments.Extent) bool {
					if e.Length != 0 {
						located = append(located, Segment{i, e.Start, e.Length})
					}
					return true
				})
			assert.Equal(t, located, idx.Segments(p), "piece %v of %v", p, _case)
			for _, s := range idx.Segments(p) {
				assert.Equal(t, covered[s.File], s.Offset, "gap or overlap in file %v", s.File)
				covered[s.File] += s.Length
				sum += s.Length
				r := idx.FilePieces(s.File)
				assert.True(t, p >= r.Begin && p < r.End)
			}
			assert.Equal(t, idx.PieceLength(p), sum)
		}
		for i, fe := range m.Files {
			assert.Equal(t, fe.Length, covered[i])
		}
	}
}
