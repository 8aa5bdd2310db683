package testutil

import (
	"crypto/sha1"
	"strings"

	"github.com/anacrolix/missinggo/v2/panicif"

	"github.com/anacrolix/relink/bencode"
	"github.com/anacrolix/relink/metainfo"
)

type File struct {
	// Slash separated path within the torrent. Empty for the lone file of a single-file torrent.
	Name string
	Data string
	// BEP 47 attributes. Padding files should have Data of zeros.
	Attr string
}

// High-level description of a torrent for testing purposes.
type Torrent struct {
	Files []File
	Name  string
}

func (t *Torrent) IsDir() bool {
	return !(len(t.Files) == 1 && t.Files[0].Name == "")
}

func (t *Torrent) GetFile(name string) *File {
	if !t.IsDir() && t.Name == name {
		return &t.Files[0]
	}
	for i := range t.Files {
		if t.Files[i].Name == name {
			return &t.Files[i]
		}
	}
	return nil
}

func (t *Torrent) concatenated() string {
	var sb strings.Builder
	for _, f := range t.Files {
		sb.WriteString(f.Data)
	}
	return sb.String()
}

// The v1 piece hashes of the torrent's data.
func (t *Torrent) PieceHashes(pieceLength int64) (ret []byte) {
	data := t.concatenated()
	for off := int64(0); off < int64(len(data)); off += pieceLength {
		h := sha1.Sum([]byte(data[off:min(off+pieceLength, int64(len(data)))]))
		ret = append(ret, h[:]...)
	}
	return
}

func (t *Torrent) Info(pieceLength int64) bencode.Value {
	info := bencode.Dict(
		bencode.KV("name", bencode.String(t.Name)),
		bencode.KV("piece length", bencode.Int(pieceLength)),
		bencode.KV("pieces", bencode.Bytes(t.PieceHashes(pieceLength))),
	)
	if !t.IsDir() {
		info.Dict = append(info.Dict, bencode.KV("length", bencode.Int(int64(len(t.Files[0].Data)))))
		return info
	}
	files := bencode.List()
	for _, f := range t.Files {
		fd := bencode.Dict(
			bencode.KV("length", bencode.Int(int64(len(f.Data)))),
			bencode.KV("path", bencode.Strings(strings.Split(f.Name, "/")...)),
		)
		if f.Attr != "" {
			fd.Dict = append(fd.Dict, bencode.KV("attr", bencode.String(f.Attr)))
		}
		files.List = append(files.List, fd)
	}
	info.Dict = append(info.Dict, bencode.KV("files", files))
	return info
}

// The bencoded metainfo document.
func (t *Torrent) Metainfo(pieceLength int64) []byte {
	b, err := bencode.Marshal(bencode.Dict(
		bencode.KV("announce", bencode.String("http://localhost:6969/announce")),
		bencode.KV("info", t.Info(pieceLength)),
	))
	panicif.Err(err)
	return b
}

func (t *Torrent) Manifest(pieceLength int64) *metainfo.Manifest {
	m, err := metainfo.Load(t.Metainfo(pieceLength))
	panicif.Err(err)
	return m
}
