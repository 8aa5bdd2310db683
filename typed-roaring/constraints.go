package typedRoaring

// Values that fit in the uint32 domain of a roaring bitmap.
type BitConstraint interface {
	~int | ~uint32 | ~int32 | ~uint16 | ~uint8
}
