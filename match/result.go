package match

import (
	"maps"
	"slices"

	g "github.com/anacrolix/generics"

	"github.com/anacrolix/relink/metainfo"
)

type Resolution struct {
	Candidate Candidate
	// Matched over checked pieces of the accepted candidate.
	Ratio float64
	// The pass that resolved the entry, starting from 1.
	Pass int
}

// The outcome of matching candidates to a manifest's entries. Entries are Unresolved until a
// candidate is accepted for them.
type Result struct {
	Manifest *metainfo.Manifest
	// Indexed by manifest entry.
	Resolutions []g.Option[Resolution]
	Passes      int
}

func newResult(m *metainfo.Manifest) *Result {
	return &Result{
		Manifest:    m,
		Resolutions: make([]g.Option[Resolution], len(m.Files)),
	}
}

func (me *Result) Resolution(entry int) (Resolution, bool) {
	return me.Resolutions[entry].AsTuple()
}

func (me *Result) resolve(entry int, r Resolution) {
	me.Resolutions[entry].Set(r)
}

// The number of entries resolved.
func (me *Result) NumResolved() (ret int) {
	for _, r := range me.Resolutions {
		if r.Ok {
			ret++
		}
	}
	return
}

// Non-padding entries without a resolution, in manifest order.
func (me *Result) Unresolved() (ret []int) {
	for i, r := range me.Resolutions {
		if !r.Ok && !me.Manifest.Files[i].Padding() {
			ret = append(ret, i)
		}
	}
	return
}

// A file that was resolved for more than one entry.
type Duplicate struct {
	Path    string
	Entries []int
}

// Files resolved for more than one entry, ordered by path.
func (me *Result) Duplicates() (ret []Duplicate) {
	byPath := make(map[string][]int)
	for i, r := range me.Resolutions {
		if r.Ok {
			byPath[r.Value.Candidate.Path] = append(byPath[r.Value.Candidate.Path], i)
		}
	}
	for _, path := range slices.Sorted(maps.Keys(byPath)) {
		if entries := byPath[path]; len(entries) > 1 {
			ret = append(ret, Duplicate{path, entries})
		}
	}
	return
}
