package bencode

import (
	"slices"
	"strconv"
	"strings"
)

type encoder struct {
	buf []byte
}

func (e *encoder) writeBytes(b []byte) {
	e.buf = strconv.AppendInt(e.buf, int64(len(b)), 10)
	e.buf = append(e.buf, ':')
	e.buf = append(e.buf, b...)
}

func (e *encoder) encode(v Value) error {
	switch v.Kind {
	case KindInt:
		e.buf = append(e.buf, 'i')
		e.buf = strconv.AppendInt(e.buf, v.Int, 10)
		e.buf = append(e.buf, 'e')
	case KindBytes:
		e.writeBytes(v.Bytes)
	case KindList:
		e.buf = append(e.buf, 'l')
		for _, elem := range v.List {
			if err := e.encode(elem); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, 'e')
	case KindDict:
		// Keys are written in sorted order, as required for the encoding to be canonical.
		items := slices.SortedStableFunc(slices.Values(v.Dict), func(a, b Item) int {
			return strings.Compare(a.Key, b.Key)
		})
		e.buf = append(e.buf, 'd')
		for _, item := range items {
			e.writeBytes([]byte(item.Key))
			if err := e.encode(item.Value); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, 'e')
	default:
		return &MarshalKindError{v.Kind}
	}
	return nil
}
