package match

import (
	"iter"
	"strings"

	"github.com/anacrolix/multiless"
	"github.com/tidwall/btree"

	"github.com/anacrolix/relink/verify"
)

type Candidate = verify.Candidate

func candidateLess(a, b *Candidate) multiless.Computation {
	return multiless.New().Int64(
		a.Size, b.Size,
	).Cmp(
		strings.Compare(a.Path, b.Path),
	)
}

// Candidates ordered by size then path, so each size group is visited in path order no matter
// the order they were found in.
type candidateSet struct {
	tree *btree.BTreeG[Candidate]
}

func newCandidateSet() candidateSet {
	return candidateSet{
		tree: btree.NewBTreeGOptions(
			func(a, b Candidate) bool {
				return candidateLess(&a, &b).Less()
			},
			btree.Options{NoLocks: true, Degree: 64}),
	}
}

// Adds the candidates with sizes that are wanted. Candidates seen again replace the earlier
// ones.
func (me candidateSet) AddAll(cands iter.Seq[Candidate], wantSize func(int64) bool) {
	for c := range cands {
		if wantSize(c.Size) {
			me.tree.Set(c)
		}
	}
}

func (me candidateSet) Len() int {
	return me.tree.Len()
}

// The candidates with the given size in path order.
func (me candidateSet) OfSize(size int64) (ret []Candidate) {
	me.tree.Ascend(Candidate{Size: size}, func(c Candidate) bool {
		if c.Size != size {
			return false
		}
		ret = append(ret, c)
		return true
	})
	return
}
