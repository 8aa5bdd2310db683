package verify

import (
	"math"
)

// Chooses ceil(n*fraction) of the n pieces in [begin, end), spread evenly from the first. At least
// one piece is chosen if there are any and fraction is positive. The result depends only on the
// arguments.
func SamplePieces(begin, end int, fraction float64) (ret []int) {
	n := end - begin
	if n <= 0 || !(fraction > 0) {
		return nil
	}
	// Tolerate representation error, so 0.3 of 10 pieces is 3 and not 4.
	k := int(math.Ceil(float64(n)*min(fraction, 1) - 1e-9))
	k = min(max(k, 1), n)
	ret = make([]int, 0, k)
	for j := range k {
		ret = append(ret, begin+j*n/k)
	}
	return
}
