package relink

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

type Summary struct {
	Entries    int
	Resolved   int
	Unresolved int
	Padding    int
	// Extra entries resolved to a file that was already resolved for another entry.
	Duplicates   int
	Linked       int
	LinkFailures int
	// Bytes of the resolved entries, and of all non-padding entries.
	ResolvedBytes int64
	TotalBytes    int64
	Passes        int
}

func (r *Report) Summary() (s Summary) {
	m := r.Manifest
	s.Entries = len(m.Files)
	for i, fe := range m.Files {
		if fe.Padding() {
			s.Padding++
			continue
		}
		s.TotalBytes += fe.Length
		if r.Result == nil {
			continue
		}
		if _, ok := r.Result.Resolution(i); ok {
			s.Resolved++
			s.ResolvedBytes += fe.Length
		} else {
			s.Unresolved++
		}
	}
	if r.Result == nil {
		s.Unresolved = s.Entries - s.Padding
		return
	}
	s.Passes = r.Result.Passes
	for _, d := range r.Result.Duplicates() {
		s.Duplicates += len(d.Entries) - 1
	}
	for _, o := range r.Links {
		if o.Err != nil {
			s.LinkFailures++
		} else {
			s.Linked++
		}
	}
	return
}

// Every non-padding entry was resolved and linked.
func (s Summary) Complete() bool {
	return s.Unresolved == 0 && s.LinkFailures == 0
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"%d/%d entries resolved (%s of %s) in %d passes, %d unresolved, %d padding, %d duplicates, %d linked, %d link failures",
		s.Resolved, s.Entries-s.Padding,
		humanize.Bytes(uint64(s.ResolvedBytes)), humanize.Bytes(uint64(s.TotalBytes)),
		s.Passes, s.Unresolved, s.Padding, s.Duplicates, s.Linked, s.LinkFailures)
}
