// Package verify checks whether a local file holds the content of a torrent's file entry by
// hashing a sample of the pieces that overlap the entry.
package verify

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"hash"
	"io"
	"time"

	"github.com/anacrolix/log"
	"github.com/anacrolix/missinggo/v2/panicif"

	"github.com/anacrolix/relink/metainfo"
	"github.com/anacrolix/relink/pieceindex"
	"github.com/anacrolix/relink/storage"
	typedRoaring "github.com/anacrolix/relink/typed-roaring"
)

// A local file that could hold the content of a manifest entry.
type Candidate struct {
	Path string
	Size int64
	// Only used to fingerprint cached verdicts.
	ModTime time.Time
}

func (c Candidate) verdictSource(offset, length int64) storage.VerdictSource {
	return storage.VerdictSource{
		Path:    c.Path,
		Size:    c.Size,
		ModTime: c.ModTime,
		Offset:  offset,
		Length:  length,
	}
}

// Entries that have already been resolved. Pieces shared with neighbouring entries are completed
// with bytes from their resolved candidates.
type Settled interface {
	Resolved(entry int) (Candidate, bool)
}

// A Settled that resolves nothing.
type NoneSettled struct{}

func (NoneSettled) Resolved(int) (c Candidate, ok bool) {
	return
}

type SettledMap map[int]Candidate

func (me SettledMap) Resolved(entry int) (c Candidate, ok bool) {
	c, ok = me[entry]
	return
}

type Outcome struct {
	// Pieces hashed and compared, and how many of those matched.
	Checked, Matched uint32
	// Sampled pieces that couldn't be checked because a neighbouring entry isn't resolved.
	Unverifiable uint32
	Mismatched   typedRoaring.Bitmap[int]
}

// Whether every checked piece matched. Nothing checked is not a match.
func (me *Outcome) Accepted() bool {
	return me.Checked > 0 && me.Matched == me.Checked
}

func (me *Outcome) Ratio() float64 {
	if me.Checked == 0 {
		return 0
	}
	return float64(me.Matched) / float64(me.Checked)
}

func (me *Outcome) String() string {
	return fmt.Sprintf(
		"%v/%v matched, %v unverifiable, mismatched %v",
		me.Matched, me.Checked, me.Unverifiable, me.Mismatched.Slice())
}

type Verifier struct {
	Manifest *metainfo.Manifest
	Index    pieceindex.Index
	Files    *storage.FileCache
	// Optional. Avoids rehashing pieces when the same sources are checked again.
	Verdicts storage.PieceVerdicts
	Logger   log.Logger
}

type pieceResult int

const (
	pieceMatched pieceResult = iota
	pieceMismatched
	pieceUnverifiable
)

// Hashes a sample of the pieces overlapping the entry with the candidate standing in for the
// entry's bytes. Errors reading the candidate are returned, mismatches are not errors. Checking
// stops at the first mismatch.
func (v *Verifier) Score(
	ctx context.Context,
	cand Candidate,
	entry int,
	fraction float64,
	settled Settled,
) (out Outcome, err error) {
	fe := v.Manifest.Files[entry]
	panicif.True(fe.Padding())
	if cand.Size != fe.Length {
		err = fmt.Errorf("candidate has size %v, entry has length %v", cand.Size, fe.Length)
		return
	}
	pr := v.Index.FilePieces(entry)
	sample := SamplePieces(pr.Begin, pr.End, fraction)
	if len(sample) == 0 {
		return
	}
	f, err := v.Files.Open(cand.Path)
	if err != nil {
		candidateOpenErrors.Add(1)
		err = fmt.Errorf("opening candidate: %w", err)
		return
	}
	defer f.Close()
	h := sha1.New()
	for _, piece := range sample {
		err = ctx.Err()
		if err != nil {
			return
		}
		var res pieceResult
		res, err = v.checkPiece(piece, entry, cand, f, settled, h)
		if err != nil {
			err = fmt.Errorf("checking piece %v: %w", piece, err)
			return
		}
		switch res {
		case pieceUnverifiable:
			out.Unverifiable++
			continue
		case pieceMatched:
			out.Checked++
			out.Matched++
		case pieceMismatched:
			out.Checked++
			out.Mismatched.Add(piece)
			v.Logger.Levelf(log.Debug, "%q: piece %v mismatched for entry %v", cand.Path, piece, entry)
			return
		}
	}
	return
}

type pieceSource struct {
	seg  pieceindex.Segment
	cand Candidate
	// Set when the bytes come from the candidate under test.
	r       io.ReaderAt
	padding bool
}

func (v *Verifier) pieceSources(
	piece, entry int,
	cand Candidate,
	f io.ReaderAt,
	settled Settled,
) (ret []pieceSource, ok bool) {
	for _, seg := range v.Index.Segments(piece) {
		ps := pieceSource{seg: seg}
		switch {
		case seg.File == entry:
			ps.cand = cand
			ps.r = f
		case v.Manifest.Files[seg.File].Padding():
			ps.padding = true
		default:
			ps.cand, ok = settled.Resolved(seg.File)
			if !ok {
				return
			}
		}
		ret = append(ret, ps)
	}
	ok = true
	return
}

func (v *Verifier) verdictKey(piece int, sources []pieceSource) storage.VerdictKey {
	vss := make([]storage.VerdictSource, 0, len(sources))
	for _, ps := range sources {
		if ps.padding {
			vss = append(vss, storage.VerdictSource{Offset: ps.seg.Offset, Length: ps.seg.Length})
		} else {
			vss = append(vss, ps.cand.verdictSource(ps.seg.Offset, ps.seg.Length))
		}
	}
	return storage.NewVerdictKey(v.Manifest.Pieces[piece], vss...)
}

func (v *Verifier) checkPiece(
	piece, entry int,
	cand Candidate,
	f io.ReaderAt,
	settled Settled,
	h hash.Hash,
) (_ pieceResult, err error) {
	sources, ok := v.pieceSources(piece, entry, cand, f, settled)
	if !ok {
		return pieceUnverifiable, nil
	}
	var key storage.VerdictKey
	if v.Verdicts != nil {
		key = v.verdictKey(piece, sources)
		verdict, err := v.Verdicts.Get(key)
		if err != nil {
			v.Logger.Levelf(log.Warning, "getting cached verdict for piece %v: %v", piece, err)
		} else if verdict.Ok {
			verdictCacheHits.Add(1)
			if verdict.Value {
				return pieceMatched, nil
			}
			return pieceMismatched, nil
		}
	}
	h.Reset()
	for _, ps := range sources {
		var r io.Reader
		switch {
		case ps.padding:
			r = zeroReader
		case ps.r != nil:
			r = io.NewSectionReader(ps.r, ps.seg.Offset, ps.seg.Length)
		default:
			var sib *storage.FileRef
			sib, err = v.Files.Open(ps.cand.Path)
			if err != nil {
				v.Logger.Levelf(log.Warning, "opening resolved file %q: %v", ps.cand.Path, err)
				return pieceUnverifiable, nil
			}
			_, err = io.CopyN(h, io.NewSectionReader(sib, ps.seg.Offset, ps.seg.Length), ps.seg.Length)
			sib.Close()
			if err != nil {
				v.Logger.Levelf(log.Warning, "reading resolved file %q: %v", ps.cand.Path, err)
				return pieceUnverifiable, nil
			}
			continue
		}
		_, err = io.CopyN(h, r, ps.seg.Length)
		if err != nil {
			return
		}
	}
	piecesHashed.Add(1)
	bytesHashed.Add(v.Index.PieceLength(piece))
	expected := v.Manifest.Pieces[piece]
	matched := bytes.Equal(h.Sum(nil), expected[:])
	if v.Verdicts != nil {
		err := v.Verdicts.Set(key, matched)
		if err != nil {
			v.Logger.Levelf(log.Warning, "caching verdict for piece %v: %v", piece, err)
		}
	}
	if matched {
		return pieceMatched, nil
	}
	return pieceMismatched, nil
}
