package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/anacrolix/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, data string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

type scanned struct {
	Path string
	Size int64
}

func scan(t *testing.T, s *Scanner, roots ...string) (ret []scanned) {
	for c := range s.Candidates(context.Background(), roots...) {
		assert.False(t, c.ModTime.IsZero())
		ret = append(ret, scanned{c.Path, c.Size})
	}
	return
}

func testTree(t *testing.T) string {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b", "z"), "zz")
	touch(t, filepath.Join(dir, "b", "a"), "a")
	touch(t, filepath.Join(dir, "a"), "")
	touch(t, filepath.Join(dir, "c", "d", "e"), "eee")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))
	return dir
}

func TestCandidatesOrdered(t *testing.T) {
	dir := testTree(t)
	s := Scanner{Logger: log.Default}
	assert.Equal(t, []scanned{
		{filepath.Join(dir, "a"), 0},
		{filepath.Join(dir, "b", "a"), 1},
		{filepath.Join(dir, "b", "z"), 2},
		{filepath.Join(dir, "c", "d", "e"), 3},
	}, scan(t, &s, dir))
	assert.Equal(t, Stats{Files: 4, Dirs: 5}, s.Stats)
}

func TestCandidatesRelativeRoot(t *testing.T) {
	dir := testTree(t)
	t.Chdir(dir)
	s := Scanner{Logger: log.Default}
	got := scan(t, &s, "c")
	require.Len(t, got, 1)
	assert.True(t, filepath.IsAbs(got[0].Path))
}

func TestCandidatesFileRootAndMissingRoot(t *testing.T) {
	dir := testTree(t)
	s := Scanner{Logger: log.Default}
	assert.Equal(t, []scanned{
		{filepath.Join(dir, "b", "z"), 2},
	}, scan(t, &s, filepath.Join(dir, "nope"), filepath.Join(dir, "b", "z")))
	assert.Equal(t, 1, s.Stats.Errors)
}

func TestSymlinks(t *testing.T) {
	dir := testTree(t)
	other := t.TempDir()
	touch(t, filepath.Join(other, "x"), "xxxx")
	require.NoError(t, os.Symlink(other, filepath.Join(dir, "b", "link")))
	require.NoError(t, os.Symlink(filepath.Join(other, "x"), filepath.Join(dir, "c", "filelink")))
	// A cycle.
	require.NoError(t, os.Symlink(dir, filepath.Join(dir, "c", "d", "up")))

	s := Scanner{Logger: log.Default}
	assert.Len(t, scan(t, &s, dir), 4)

	s = Scanner{FollowSymlinks: true, Logger: log.Default}
	assert.Equal(t, []scanned{
		{filepath.Join(dir, "a"), 0},
		{filepath.Join(dir, "b", "a"), 1},
		{filepath.Join(dir, "b", "link", "x"), 4},
		{filepath.Join(dir, "b", "z"), 2},
		{filepath.Join(dir, "c", "d", "e"), 3},
		{filepath.Join(dir, "c", "filelink"), 4},
	}, scan(t, &s, dir))
}

func TestCandidatesStopEarly(t *testing.T) {
	dir := testTree(t)
	s := Scanner{Logger: log.Default}
	var n int
	for range s.Candidates(context.Background(), dir, dir) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n = 0
	for range s.Candidates(ctx, dir) {
		n++
	}
	assert.Equal(t, 0, n)
}
