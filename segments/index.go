package segments

import (
	"iter"
	"sort"

	g "github.com/anacrolix/generics"
	"github.com/anacrolix/missinggo/v2/panicif"
)

// Segments laid out consecutively, like the files of a torrent in its concatenated byte space.
type Index struct {
	segments []Extent
}

// The segments must be sorted and must not overlap.
func NewIndexFromSegments(segments []Extent) Index {
	return Index{segments}
}

func (me Index) Len() int {
	return len(me.segments)
}

func (me Index) Index(i int) Extent {
	return me.segments[i]
}

// The end of the last segment.
func (me Index) End() Int {
	if len(me.segments) == 0 {
		return 0
	}
	return me.segments[len(me.segments)-1].End()
}

// Calls output with the part of each segment the extent overlaps, with bounds relative to the
// segment. Zero-length segments that fall inside the extent are included. Returns true if the
// callback returns false early, or extents are found in the index for all parts of the given
// extent.
func (me Index) Locate(e Extent, output Callback) bool {
	first := sort.Search(len(me.segments), func(i int) bool {
		_e := me.segments[i]
		return _e.End() > e.Start
	})
	if first == len(me.segments) {
		return e.Length == 0
	}
	// The extent is before the first segment.
	if e.Start < me.segments[first].Start {
		e.Length -= me.segments[first].Start - e.Start
		e.Start = me.segments[first].Start
	}
	started := false
	for i := first; i < len(me.segments) && e.Length > 0; i++ {
		s := me.segments[i]
		if e.Start < s.Start {
			// Discontiguous segments.
			return false
		}
		off := e.Start - s.Start
		n := min(s.Length-off, e.Length)
		if n > 0 || started {
			if !output(i, Extent{off, n}) {
				return true
			}
			started = true
		}
		e.Start += n
		e.Length -= n
	}
	return e.Length <= 0
}

func (me Index) LocateIter(e Extent) iter.Seq2[int, Extent] {
	return func(yield func(int, Extent) bool) {
		me.Locate(e, yield)
	}
}

type IndexAndOffset struct {
	Index  int
	Offset int64
}

// Returns the segment that contains the given offset, if it exists. Zero-length segments never
// contain an offset.
func (me Index) LocateOffset(off int64) (ret g.Option[IndexAndOffset]) {
	for i, e := range me.LocateIter(Extent{off, 1}) {
		panicif.True(ret.Ok)
		panicif.NotEq(e.Length, 1)
		ret.Set(IndexAndOffset{
			Index:  i,
			Offset: e.Start,
		})
	}
	return
}
