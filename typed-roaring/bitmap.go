// Package typedRoaring wraps roaring bitmaps for integer types other than uint32, such as piece
// indices.
package typedRoaring

import (
	"github.com/RoaringBitmap/roaring"
)

type Bitmap[T BitConstraint] struct {
	roaring.Bitmap
}

func (me *Bitmap[T]) Add(x T) {
	me.Bitmap.Add(uint32(x))
}

// The set values in ascending order.
func (me *Bitmap[T]) Slice() (ret []T) {
	me.Bitmap.Iterate(func(x uint32) bool {
		ret = append(ret, T(x))
		return true
	})
	return
}
