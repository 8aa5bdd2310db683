// Package scan enumerates the regular files under search roots as match candidates.
package scan

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/anacrolix/log"

	"github.com/anacrolix/relink/match"
)

type Stats struct {
	Files  int
	Dirs   int
	Errors int
}

type Scanner struct {
	// Follow symlinks below the roots. Roots themselves are always followed.
	FollowSymlinks bool
	Logger         log.Logger
	// Updated while candidates are iterated.
	Stats Stats
}

// Walks the roots in order, and each directory in name order, yielding regular files with
// absolute paths. Errors are logged and the walk continues. Iteration stops when ctx is done.
func (me *Scanner) Candidates(ctx context.Context, roots ...string) iter.Seq[match.Candidate] {
	return func(yield func(match.Candidate) bool) {
		w := walker{
			Scanner: me,
			ctx:     ctx,
			yield:   yield,
			visited: make(map[string]struct{}),
		}
		for _, root := range roots {
			if !w.root(root) {
				return
			}
		}
	}
}

type walker struct {
	*Scanner
	ctx   context.Context
	yield func(match.Candidate) bool
	// Real paths of directories already walked.
	visited map[string]struct{}
}

func (w *walker) logErr(err error) {
	w.Stats.Errors++
	w.Logger.Levelf(log.Warning, "scanning: %v", err)
}

func (w *walker) root(root string) bool {
	abs, err := filepath.Abs(root)
	if err != nil {
		w.logErr(err)
		return true
	}
	fi, err := os.Stat(abs)
	if err != nil {
		w.logErr(err)
		return true
	}
	return w.entry(abs, fi)
}

func (w *walker) entry(path string, fi fs.FileInfo) bool {
	switch {
	case fi.IsDir():
		return w.dir(path)
	case fi.Mode().IsRegular():
		w.Stats.Files++
		return w.yield(match.Candidate{
			Path:    path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return true
}

func (w *walker) dir(dir string) bool {
	if w.ctx.Err() != nil {
		return false
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.logErr(err)
		return true
	}
	if _, ok := w.visited[resolved]; ok {
		w.Logger.Levelf(log.Debug, "skipping %q, already visited as %q", dir, resolved)
		return true
	}
	w.visited[resolved] = struct{}{}
	w.Stats.Dirs++
	// Sorted by name.
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logErr(err)
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		var fi fs.FileInfo
		if e.Type()&fs.ModeSymlink != 0 {
			if !w.FollowSymlinks {
				continue
			}
			fi, err = os.Stat(p)
		} else {
			fi, err = e.Info()
		}
		if err != nil {
			w.logErr(err)
			continue
		}
		if !w.entry(p, fi) {
			return false
		}
	}
	return true
}
