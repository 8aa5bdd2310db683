// Package bencode decodes bencoded documents into a tagged value tree. It exists to read torrent
// metainfo, and is deliberately not a general purpose reflective codec.
package bencode

import "strconv"

//----------------------------------------------------------------------------
// Errors
//----------------------------------------------------------------------------

type SyntaxError struct {
	Offset int64  // location of the error
	what   string // error description
}

func (e *SyntaxError) Error() string {
	return "bencode: syntax error (offset: " +
		strconv.FormatInt(e.Offset, 10) +
		"): " + e.what
}

// A Value was used as a kind it isn't, like reading an integer out of a list.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return "bencode: expected " + e.Want.String() + ", got " + e.Got.String()
}

// Marshal was handed a Value with no valid kind.
type MarshalKindError struct {
	Kind Kind
}

func (e *MarshalKindError) Error() string {
	return "bencode: cannot marshal value of kind " + e.Kind.String()
}

//----------------------------------------------------------------------------
// Stateless interface
//----------------------------------------------------------------------------

// Decodes exactly one value from data. Trailing bytes are an error. Byte strings in the returned
// tree alias data.
func Decode(data []byte) (Value, error) {
	d := decoder{data: data}
	v, err := d.value(0)
	if err != nil {
		return Value{}, err
	}
	if d.pos != len(data) {
		return Value{}, d.errorf("expected EOF")
	}
	return v, nil
}

// Decodes the first value in data, and returns the number of bytes it occupied.
func DecodePrefix(data []byte) (v Value, n int, err error) {
	d := decoder{data: data}
	v, err = d.value(0)
	n = d.pos
	return
}

func Marshal(v Value) ([]byte, error) {
	var e encoder
	if err := e.encode(v); err != nil {
		return nil, err
	}
	return e.buf, nil
}
