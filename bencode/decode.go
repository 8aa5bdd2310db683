package bencode

import (
	"fmt"
	"strconv"
)

// Nested lists and dicts beyond this depth are rejected rather than recursed into.
const maxDepth = 512

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Offset: int64(d.pos),
		what:   fmt.Sprintf(format, args...),
	}
}

func (d *decoder) peek() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, d.errorf("unexpected EOF")
	}
	return d.data[d.pos], nil
}

func (d *decoder) value(depth int) (v Value, err error) {
	if depth > maxDepth {
		err = d.errorf("nesting too deep")
		return
	}
	c, err := d.peek()
	if err != nil {
		return
	}
	v.Start = d.pos
	switch {
	case c == 'i':
		v.Kind = KindInt
		v.Int, err = d.integer()
	case c >= '0' && c <= '9':
		v.Kind = KindBytes
		v.Bytes, err = d.bytes()
	case c == 'l':
		v.Kind = KindList
		v.List, err = d.list(depth)
	case c == 'd':
		v.Kind = KindDict
		v.Dict, err = d.dict(depth)
	default:
		err = d.errorf("unexpected value marker %q", c)
	}
	v.End = d.pos
	return
}

// Parses the digits of an integer between start and the current position. Leading zeros and
// negative zero are rejected.
func (d *decoder) parseDecimal(start int, allowNegative bool) (int64, error) {
	s := d.data[start:d.pos]
	digits := s
	if allowNegative && len(s) > 0 && s[0] == '-' {
		digits = s[1:]
	}
	if len(digits) == 0 {
		return 0, &SyntaxError{int64(start), "empty integer"}
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, &SyntaxError{int64(start), fmt.Sprintf("invalid integer %q", s)}
		}
	}
	if digits[0] == '0' && (len(digits) > 1 || len(s) != len(digits)) {
		return 0, &SyntaxError{int64(start), fmt.Sprintf("non-canonical integer %q", s)}
	}
	i, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return 0, &SyntaxError{int64(start), fmt.Sprintf("integer %q out of range", s)}
	}
	return i, nil
}

func (d *decoder) integer() (int64, error) {
	// Skip 'i'.
	d.pos++
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != 'e' {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return 0, d.errorf("unterminated integer")
	}
	i, err := d.parseDecimal(start, true)
	if err != nil {
		return 0, err
	}
	// Skip 'e'.
	d.pos++
	return i, nil
}

func (d *decoder) bytes() ([]byte, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != ':' {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return nil, d.errorf("unterminated string length")
	}
	length, err := d.parseDecimal(start, false)
	if err != nil {
		return nil, err
	}
	// Skip ':'.
	d.pos++
	if length > int64(len(d.data)-d.pos) {
		return nil, d.errorf("string length %d exceeds remaining %d bytes", length, len(d.data)-d.pos)
	}
	b := d.data[d.pos : d.pos+int(length) : d.pos+int(length)]
	d.pos += int(length)
	return b, nil
}

func (d *decoder) list(depth int) (ret []Value, err error) {
	// Skip 'l'.
	d.pos++
	for {
		var c byte
		c, err = d.peek()
		if err != nil {
			return
		}
		if c == 'e' {
			d.pos++
			return
		}
		var v Value
		v, err = d.value(depth + 1)
		if err != nil {
			return
		}
		ret = append(ret, v)
	}
}

func (d *decoder) dict(depth int) (ret []Item, err error) {
	// Skip 'd'.
	d.pos++
	seen := make(map[string]struct{})
	for {
		var c byte
		c, err = d.peek()
		if err != nil {
			return
		}
		if c == 'e' {
			d.pos++
			return
		}
		if c < '0' || c > '9' {
			err = d.errorf("dictionary key must be a byte string, got marker %q", c)
			return
		}
		keyPos := d.pos
		var key []byte
		key, err = d.bytes()
		if err != nil {
			return
		}
		if _, dup := seen[string(key)]; dup {
			err = &SyntaxError{int64(keyPos), fmt.Sprintf("duplicate dictionary key %q", key)}
			return
		}
		seen[string(key)] = struct{}{}
		var v Value
		v, err = d.value(depth + 1)
		if err != nil {
			return
		}
		ret = append(ret, Item{Key: string(key), Value: v})
	}
}
