package typedRoaring

import (
	"testing"

	"github.com/go-quicktest/qt"
)

type pieceIndex int

func TestBitmapSlice(t *testing.T) {
	var bm Bitmap[pieceIndex]
	qt.Check(t, qt.IsNil(bm.Slice()))
	for _, i := range []pieceIndex{9, 3, 5, 3} {
		bm.Add(i)
	}
	qt.Check(t, qt.DeepEquals(bm.Slice(), []pieceIndex{3, 5, 9}))
	qt.Check(t, qt.Equals(bm.GetCardinality(), uint64(3)))
}
