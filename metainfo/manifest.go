package metainfo

import (
	"fmt"
	"strings"

	g "github.com/anacrolix/generics"
	"github.com/anacrolix/missinggo/v2/panicif"
)

// The parts of a v1 torrent's info dictionary needed to locate and verify its files. Built by
// Load and not modified afterwards.
type Manifest struct {
	// The info dictionary's name. For multi-file torrents this is the suggested directory name,
	// otherwise it's the file name.
	Name        string
	PieceLength int64
	Pieces      []Hash
	// Single-file torrents are upverted to one entry with a nil Path.
	Files []FileEntry
	// Whether the info dictionary had a "files" list.
	IsDir    bool
	InfoHash Hash

	// Set by Load.
	totalLength g.Option[int64]
}

type FileEntry struct {
	// Path components relative to the torrent's directory. Prefers "path.utf-8" when present.
	Path   []string
	Length int64
	// Offset of the file in the concatenation of all files.
	Offset int64
	// BEP 47 attributes.
	Attr string
}

// Padding files fill space between files so that later ones are piece aligned. Their content is
// all zeros and they aren't expected to exist on disk.
func (fe FileEntry) Padding() bool {
	return hasAttr(fe.Attr, AttrPadding)
}

func (fe FileEntry) End() int64 {
	return fe.Offset + fe.Length
}

// The entry's location relative to the root of the torrent's layout, always slash separated.
func (fe FileEntry) DisplayPath(m *Manifest) string {
	if m.IsDir {
		return strings.Join(fe.Path, "/")
	}
	return m.Name
}

func (m *Manifest) TotalLength() (ret int64) {
	if m.totalLength.Ok {
		return m.totalLength.Value
	}
	for _, fe := range m.Files {
		ret += fe.Length
	}
	return
}

func (m *Manifest) NumPieces() int {
	return len(m.Pieces)
}

// The number of pieces required to cover a total length with the given piece length.
func NumPiecesFor(totalLength, pieceLength int64) int {
	panicif.LessThanOrEqual(pieceLength, 0)
	return int((totalLength + pieceLength - 1) / pieceLength)
}

func (m *Manifest) Piece(index int) Piece {
	panicif.True(index < 0 || index >= len(m.Pieces))
	return Piece{m, index}
}

type Piece struct {
	m *Manifest
	i int
}

func (p Piece) String() string {
	return fmt.Sprintf("metainfo.Piece(Name=%q, i=%v)", p.m.Name, p.i)
}

func (p Piece) Index() int {
	return p.i
}

func (p Piece) Offset() int64 {
	return int64(p.i) * p.m.PieceLength
}

// The length of the piece. Only the last piece can be shorter than the piece length.
func (p Piece) Length() int64 {
	return min(p.m.PieceLength, p.m.TotalLength()-p.Offset())
}

func (p Piece) Hash() Hash {
	return p.m.Pieces[p.i]
}
