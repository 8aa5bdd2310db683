// Package pieceindex maps between a torrent's pieces and the files they overlap.
package pieceindex

import (
	g "github.com/anacrolix/generics"
	"github.com/anacrolix/missinggo/v2/panicif"

	"github.com/anacrolix/relink/metainfo"
	"github.com/anacrolix/relink/segments"
)

// The part of a file that falls within a piece.
type Segment struct {
	File int
	// Offset of the segment within the file.
	Offset int64
	Length int64
}

// Half-open range of piece indices.
type PieceRange struct {
	Begin, End int
}

func (r PieceRange) Len() int {
	return r.End - r.Begin
}

type Index struct {
	pieceLength int64
	totalLength int64
	files       segments.Index
	filePieces  []PieceRange
	pieces      [][]Segment
}

// Builds the index in a single pass over the files. The manifest must be valid, as returned by
// metainfo.Load.
func Build(m *metainfo.Manifest) (ret Index) {
	pl := m.PieceLength
	numPieces := m.NumPieces()
	ret.pieceLength = pl
	ret.pieces = make([][]Segment, numPieces)
	ret.filePieces = make([]PieceRange, 0, len(m.Files))
	extents := make([]segments.Extent, 0, len(m.Files))
	var offset int64
	for i, fe := range m.Files {
		extents = append(extents, segments.Extent{Start: offset, Length: fe.Length})
		if fe.Length == 0 {
			p := min(int(offset/pl), numPieces)
			ret.filePieces = append(ret.filePieces, PieceRange{p, p})
			continue
		}
		end := offset + fe.Length
		first := int(offset / pl)
		last := int((end - 1) / pl)
		for p := first; p <= last; p++ {
			pieceStart := int64(p) * pl
			segStart := max(pieceStart, offset)
			segEnd := min(pieceStart+pl, end)
			ret.pieces[p] = append(ret.pieces[p], Segment{
				File:   i,
				Offset: segStart - offset,
				Length: segEnd - segStart,
			})
		}
		ret.filePieces = append(ret.filePieces, PieceRange{first, last + 1})
		offset = end
	}
	ret.totalLength = offset
	panicif.NotEq(numPieces, metainfo.NumPiecesFor(offset, pl))
	ret.files = segments.NewIndexFromSegments(extents)
	panicif.NotEq(ret.files.End(), offset)
	return
}

func (me Index) NumPieces() int {
	return len(me.pieces)
}

func (me Index) NumFiles() int {
	return me.files.Len()
}

func (me Index) TotalLength() int64 {
	return me.totalLength
}

func (me Index) PieceOffset(piece int) int64 {
	return int64(piece) * me.pieceLength
}

// The length of the piece in bytes. Only the last piece can be shorter than the piece length.
func (me Index) PieceLength(piece int) int64 {
	return min(me.pieceLength, me.totalLength-me.PieceOffset(piece))
}

// The file segments that make up the piece, in file order. The returned slice must not be
// modified.
func (me Index) Segments(piece int) []Segment {
	return me.pieces[piece]
}

// The pieces that overlap the file. Empty for zero-length files.
func (me Index) FilePieces(file int) PieceRange {
	return me.filePieces[file]
}

// The file's half-open byte range in the concatenated torrent data.
func (me Index) FileExtent(file int) segments.Extent {
	return me.files.Index(file)
}

// Finds the file containing the byte at the offset in the concatenated torrent data.
func (me Index) FileAt(off int64) g.Option[segments.IndexAndOffset] {
	return me.files.LocateOffset(off)
}

// Whether the piece lies entirely within a single file.
func (me Index) PieceWithinFile(piece int) bool {
	return len(me.pieces[piece]) == 1
}
