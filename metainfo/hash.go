package metainfo

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

const HashSize = sha1.Size

// A SHA-1 digest, as used for v1 piece hashes and info hashes.
type Hash [HashSize]byte

func (h Hash) HexString() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.HexString()
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func HashBytes(b []byte) Hash {
	return sha1.Sum(b)
}

func NewHashFromHex(s string) (h Hash, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return
	}
	if len(b) != HashSize {
		err = fmt.Errorf("hash has %d bytes, expected %d", len(b), HashSize)
		return
	}
	copy(h[:], b)
	return
}
