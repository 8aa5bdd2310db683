package metainfo

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/anacrolix/relink/bencode"
)

// Parses a bencoded metainfo (.torrent) document.
func Load(data []byte) (*Manifest, error) {
	top, err := bencode.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMetadata, err)
	}
	if top.Kind != bencode.KindDict {
		return nil, malformedf("top level is a %v, expected a dictionary", top.Kind)
	}
	info, ok := top.Get("info")
	if !ok {
		return nil, missingField("info")
	}
	m, err := manifestFromInfo(info)
	if err != nil {
		return nil, fmt.Errorf("info: %w", err)
	}
	m.InfoHash = HashBytes(data[info.Start:info.End])
	return m, nil
}

func LoadFromReader(r io.Reader) (*Manifest, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

// Convenience function for loading a Manifest from a file.
func LoadFromFile(filename string) (*Manifest, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

func requireKey(d bencode.Value, key string) (bencode.Value, error) {
	v, ok := d.Get(key)
	if !ok {
		return v, missingField(key)
	}
	return v, nil
}

func typed[T any](key string, v bencode.Value, as func(bencode.Value) (T, error)) (T, error) {
	t, err := as(v)
	if err != nil {
		return t, malformedf("%q: %v", key, err)
	}
	return t, nil
}

// Returns the utf-8 variant of a key if it's present and well-formed, otherwise the plain key.
func preferUtf8[T any](d bencode.Value, key string, as func(bencode.Value) (T, error)) (t T, err error) {
	if v, ok := d.Get(key + ".utf-8"); ok {
		if t, err = as(v); err == nil {
			return
		}
	}
	v, err := requireKey(d, key)
	if err != nil {
		return
	}
	return typed(key, v, as)
}

func manifestFromInfo(info bencode.Value) (m *Manifest, err error) {
	if info.Kind != bencode.KindDict {
		return nil, malformedf("info is a %v, expected a dictionary", info.Kind)
	}
	m = new(Manifest)
	plv, err := requireKey(info, "piece length")
	if err != nil {
		return
	}
	m.PieceLength, err = typed("piece length", plv, bencode.Value.AsInt)
	if err != nil {
		return
	}
	if m.PieceLength <= 0 {
		return nil, malformedf("piece length %d is not positive", m.PieceLength)
	}
	pv, err := requireKey(info, "pieces")
	if err != nil {
		return
	}
	pieces, err := typed("pieces", pv, bencode.Value.AsBytes)
	if err != nil {
		return
	}
	if len(pieces)%HashSize != 0 {
		return nil, errors.Wrapf(ErrInconsistentLengths, "pieces has length %d, not a multiple of %d", len(pieces), HashSize)
	}
	m.Pieces = make([]Hash, 0, len(pieces)/HashSize)
	for b := pieces; len(b) != 0; b = b[HashSize:] {
		m.Pieces = append(m.Pieces, Hash(b[:HashSize]))
	}
	m.Name, err = preferUtf8(info, "name", bencode.Value.AsString)
	if err != nil {
		return
	}
	if files, ok := info.Get("files"); ok {
		m.IsDir = true
		err = m.addFiles(files)
	} else if lv, ok := info.Get("length"); ok {
		var length int64
		length, err = typed("length", lv, bencode.Value.AsInt)
		if err == nil && length < 0 {
			err = malformedf("length %d is negative", length)
		}
		m.Files = []FileEntry{{Length: length}}
	} else {
		err = missingField("length or files")
	}
	if err != nil {
		return
	}
	total := m.TotalLength()
	m.totalLength.Set(total)
	if expected := NumPiecesFor(total, m.PieceLength); expected != len(m.Pieces) {
		return nil, errors.Wrapf(
			ErrInconsistentLengths,
			"%d piece hashes for %d bytes with piece length %d, expected %d",
			len(m.Pieces), total, m.PieceLength, expected)
	}
	return
}

func (m *Manifest) addFiles(files bencode.Value) error {
	list, err := typed("files", files, bencode.Value.AsList)
	if err != nil {
		return err
	}
	var offset int64
	for i, fv := range list {
		fe, err := fileEntryFromDict(fv)
		if err != nil {
			return fmt.Errorf("files[%d]: %w", i, err)
		}
		if fe.Length > math.MaxInt64-offset {
			return malformedf("files[%d]: total length overflows", i)
		}
		fe.Offset = offset
		offset += fe.Length
		m.Files = append(m.Files, fe)
	}
	return nil
}

func fileEntryFromDict(d bencode.Value) (fe FileEntry, err error) {
	if d.Kind != bencode.KindDict {
		err = malformedf("file is a %v, expected a dictionary", d.Kind)
		return
	}
	lv, err := requireKey(d, "length")
	if err != nil {
		return
	}
	fe.Length, err = typed("length", lv, bencode.Value.AsInt)
	if err != nil {
		return
	}
	if fe.Length < 0 {
		err = malformedf("length %d is negative", fe.Length)
		return
	}
	fe.Path, err = preferUtf8(d, "path", bencode.Value.AsStrings)
	if err != nil {
		return
	}
	if len(fe.Path) == 0 {
		err = malformedf("path is empty")
		return
	}
	if av, ok := d.Get("attr"); ok {
		fe.Attr, err = typed("attr", av, bencode.Value.AsString)
	}
	return
}
