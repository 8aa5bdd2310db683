// Pretty-prints a torrent's manifest and how its pieces map onto its files.
package main

import (
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/anacrolix/tagflag"
	"github.com/bradfitz/iter"
	"github.com/davecgh/go-spew/spew"

	"github.com/anacrolix/relink/bencode"
	"github.com/anacrolix/relink/metainfo"
	"github.com/anacrolix/relink/pieceindex"
)

var flags struct {
	JustName    bool
	PieceHashes bool
	Files       bool
	Segments    bool `help:"list the file segments of each piece"`
	Spew        bool `help:"dump the decoded bencode instead"`
	tagflag.StartPos
	Torrent string `help:"torrent file, otherwise stdin"`
}

type jsonFile struct {
	Path    string
	Length  int64
	Offset  int64
	Padding bool `json:",omitempty"`
	Pieces  [2]int
}

type jsonPiece struct {
	Hash   string `json:",omitempty"`
	Length int64
	// The file holding the first byte of the piece, and whether the piece ends in it too.
	FirstFile  int
	WithinFile bool
	Segments   []pieceindex.Segment `json:",omitempty"`
}

func processReader(r io.Reader) error {
	if flags.Spew {
		b, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		v, err := bencode.Decode(b)
		if err != nil {
			return err
		}
		spew.Dump(v)
		return nil
	}
	m, err := metainfo.LoadFromReader(r)
	if err != nil {
		return err
	}
	if flags.JustName {
		os.Stdout.WriteString(m.Name + "\n")
		return nil
	}
	idx := pieceindex.Build(m)
	d := map[string]interface{}{
		"Name":        m.Name,
		"NumPieces":   m.NumPieces(),
		"PieceLength": m.PieceLength,
		"InfoHash":    m.InfoHash.HexString(),
		"NumFiles":    idx.NumFiles(),
		"TotalLength": idx.TotalLength(),
	}
	if flags.Files {
		files := make([]jsonFile, 0, len(m.Files))
		for i, fe := range m.Files {
			pr := idx.FilePieces(i)
			extent := idx.FileExtent(i)
			files = append(files, jsonFile{
				Path:    fe.DisplayPath(m),
				Length:  extent.Length,
				Offset:  extent.Start,
				Padding: fe.Padding(),
				Pieces:  [2]int{pr.Begin, pr.End},
			})
		}
		d["Files"] = files
	}
	if flags.PieceHashes || flags.Segments {
		pieces := make([]jsonPiece, 0, m.NumPieces())
		for i := range iter.N(m.NumPieces()) {
			jp := jsonPiece{
				Length:     idx.PieceLength(i),
				FirstFile:  idx.FileAt(idx.PieceOffset(i)).Unwrap().Index,
				WithinFile: idx.PieceWithinFile(i),
			}
			if flags.PieceHashes {
				jp.Hash = m.Pieces[i].HexString()
			}
			if flags.Segments {
				jp.Segments = idx.Segments(i)
			}
			pieces = append(pieces, jp)
		}
		d["Pieces"] = pieces
	}
	b, _ := json.MarshalIndent(d, "", "  ")
	_, err = os.Stdout.Write(b)
	if err == nil {
		_, err = os.Stdout.WriteString("\n")
	}
	return err
}

func main() {
	tagflag.Parse(&flags)
	r := io.Reader(os.Stdin)
	if flags.Torrent != "" {
		f, err := os.Open(flags.Torrent)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		r = f
	}
	err := processReader(r)
	if err != nil {
		log.Fatal(err)
	}
}
