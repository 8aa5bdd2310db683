package segments

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/stretchr/testify/assert"
)

// Lays segments of the given lengths end to end.
func indexFromLengths(ls []Length) Index {
	var extents []Extent
	var start Length
	for _, l := range ls {
		extents = append(extents, Extent{start, l})
		start += l
	}
	return NewIndexFromSegments(extents)
}

type ScanCallbackValue struct {
	Index int
	Extent
}

type collectExtents []ScanCallbackValue

func (me *collectExtents) scanCallback(i int, e Extent) bool {
	*me = append(*me, ScanCallbackValue{
		Index:  i,
		Extent: e,
	})
	return true
}

func assertLocate(t *testing.T, ls []Length, needle Extent, firstExpectedIndex int, expectedExtents []Extent) {
	var actual collectExtents
	var expected collectExtents
	for i, e := range expectedExtents {
		expected.scanCallback(firstExpectedIndex+i, e)
	}
	indexFromLengths(ls).Locate(needle, actual.scanCallback)
	assert.EqualValues(t, expected, actual)
}

func TestIndexLocate(t *testing.T) {
	assertLocate(t,
		[]Length{1, 0, 2, 0, 3},
		Extent{2, 2},
		2,
		[]Extent{{1, 1}, {0, 0}, {0, 1}})
	assertLocate(t,
		[]Length{1, 0, 2, 0, 3},
		Extent{6, 2},
		2,
		[]Extent{})
	assertLocate(t,
		[]Length{4, 4, 4},
		Extent{3, 6},
		0,
		[]Extent{{3, 1}, {0, 4}, {0, 1}})
}

func TestLocateReportsCoverage(t *testing.T) {
	index := indexFromLengths([]Length{3, 3})
	all := func(int, Extent) bool { return true }
	qt.Check(t, qt.IsTrue(index.Locate(Extent{0, 6}, all)))
	qt.Check(t, qt.IsFalse(index.Locate(Extent{4, 3}, all)))
	qt.Check(t, qt.IsTrue(index.Locate(Extent{6, 0}, all)))
	qt.Check(t, qt.Equals(index.End(), Int(6)))
	qt.Check(t, qt.Equals(index.Len(), 2))
}

func TestLocateOffset(t *testing.T) {
	index := indexFromLengths([]Length{2, 0, 3})
	for _, _case := range []struct {
		off    int64
		ok     bool
		expect IndexAndOffset
	}{
		{0, true, IndexAndOffset{0, 0}},
		{1, true, IndexAndOffset{0, 1}},
		{2, true, IndexAndOffset{2, 0}},
		{4, true, IndexAndOffset{2, 2}},
		{5, false, IndexAndOffset{}},
	} {
		got := index.LocateOffset(_case.off)
		qt.Check(t, qt.Equals(got.Ok, _case.ok), qt.Commentf("offset %v", _case.off))
		if got.Ok {
			qt.Check(t, qt.Equals(got.Value, _case.expect))
		}
	}
}
