package storage

import (
	"encoding/binary"
	"time"

	"github.com/cespare/xxhash"
)

// The expected piece hash followed by a fingerprint of the bytes that were hashed.
type VerdictKey [28]byte

// Where some of a piece's bytes were read from. Padding has an empty Path.
type VerdictSource struct {
	Path    string
	Size    int64
	ModTime time.Time
	Offset  int64
	Length  int64
}

func NewVerdictKey(expected [20]byte, sources ...VerdictSource) (ret VerdictKey) {
	copy(ret[:20], expected[:])
	h := xxhash.New()
	var b [8]byte
	putInt := func(i int64) {
		binary.BigEndian.PutUint64(b[:], uint64(i))
		h.Write(b[:])
	}
	for _, s := range sources {
		putInt(int64(len(s.Path)))
		h.Write([]byte(s.Path))
		putInt(s.Size)
		putInt(s.ModTime.UnixNano())
		putInt(s.Offset)
		putInt(s.Length)
	}
	binary.BigEndian.PutUint64(ret[20:], h.Sum64())
	return
}
