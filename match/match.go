// Package match assigns local files to the entries of a torrent manifest.
package match

import (
	"context"
	"iter"

	g "github.com/anacrolix/generics"
	"github.com/anacrolix/log"
	"golang.org/x/sync/errgroup"

	"github.com/anacrolix/relink/metainfo"
	"github.com/anacrolix/relink/verify"
)

type Matcher struct {
	Verifier *verify.Verifier
	// The proportion of each candidate's pieces to check.
	Fraction float64
	// Candidates of the same size verified concurrently. Values below 2 verify one at a time.
	Workers int
	Logger  log.Logger
}

func (m *Matcher) manifest() *metainfo.Manifest {
	return m.Verifier.Manifest
}

// Picks at most one candidate for each entry, trying entries in manifest order and candidates
// of the entry's size in path order. The first accepted candidate wins. Entries that couldn't be
// checked for lack of resolved neighbours are tried again while the last pass made progress. On
// cancellation the partial result is returned with the context's error.
func (m *Matcher) Resolve(ctx context.Context, candidates iter.Seq[Candidate]) (*Result, error) {
	mi := m.manifest()
	res := newResult(mi)
	wanted := make(map[int64]struct{})
	var pending []int
	for i, fe := range mi.Files {
		if fe.Padding() {
			continue
		}
		wanted[fe.Length] = struct{}{}
		pending = append(pending, i)
	}
	set := newCandidateSet()
	set.AddAll(candidates, func(size int64) bool {
		_, ok := wanted[size]
		return ok
	})
	m.Logger.Levelf(log.Debug, "%v candidates for %v entries", set.Len(), len(pending))
	settled := make(verify.SettledMap)
	for pass := 1; len(pending) != 0; pass++ {
		res.Passes = pass
		var retry []int
		progress := false
		for _, entry := range pending {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			er, err := m.resolveEntry(ctx, entry, set.OfSize(mi.Files[entry].Length), settled)
			if err != nil {
				return res, err
			}
			if r, ok := er.resolution.AsTuple(); ok {
				r.Pass = pass
				res.resolve(entry, r)
				settled[entry] = r.Candidate
				progress = true
				m.Logger.Levelf(log.Info,
					"resolved %q <= %q", mi.Files[entry].DisplayPath(mi), r.Candidate.Path)
				continue
			}
			if er.retry {
				retry = append(retry, entry)
			}
		}
		if !progress {
			break
		}
		pending = retry
	}
	return res, nil
}

type entryResult struct {
	resolution g.Option[Resolution]
	// A candidate might be accepted once more neighbours are resolved.
	retry bool
}

type scored struct {
	out verify.Outcome
	err error
}

func (m *Matcher) resolveEntry(
	ctx context.Context,
	entry int,
	group []Candidate,
	settled verify.Settled,
) (ret entryResult, err error) {
	if len(group) == 0 {
		m.Logger.Levelf(log.Debug, "no candidates of size %v for entry %v", m.manifest().Files[entry].Length, entry)
		return
	}
	window := max(m.Workers, 1)
	for len(group) != 0 {
		n := min(window, len(group))
		results := make([]scored, n)
		if n == 1 {
			results[0].out, results[0].err = m.Verifier.Score(ctx, group[0], entry, m.Fraction, settled)
		} else {
			var eg errgroup.Group
			eg.SetLimit(n)
			for i := range n {
				eg.Go(func() error {
					results[i].out, results[i].err = m.Verifier.Score(ctx, group[i], entry, m.Fraction, settled)
					return nil
				})
			}
			eg.Wait()
		}
		err = ctx.Err()
		if err != nil {
			return
		}
		for i := range n {
			cand := group[i]
			sr := &results[i]
			if sr.err != nil {
				m.Logger.Levelf(log.Warning, "verifying %q for entry %v: %v", cand.Path, entry, sr.err)
				continue
			}
			m.Logger.Levelf(log.Debug, "%q for entry %v: %v", cand.Path, entry, &sr.out)
			if sr.out.Accepted() {
				ret.resolution.Set(Resolution{
					Candidate: cand,
					Ratio:     sr.out.Ratio(),
				})
				return
			}
			if sr.out.Checked == 0 && sr.out.Unverifiable != 0 {
				ret.retry = true
			}
		}
		group = group[n:]
	}
	return
}
