package bencode

import "fmt"

type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindBytes
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindBytes:
		return "byte string"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return "invalid"
	}
}

// A decoded bencode value. Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Int   int64
	Bytes []byte
	List  []Value
	// In the order the keys appeared in the input.
	Dict []Item
	// The span of the encoded value in the input it was decoded from. Zero for constructed values.
	Start, End int
}

type Item struct {
	Key   string
	Value Value
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("i%d", v.Int)
	case KindBytes:
		return fmt.Sprintf("%q", v.Bytes)
	case KindList:
		return fmt.Sprintf("list[%d]", len(v.List))
	case KindDict:
		return fmt.Sprintf("dict[%d]", len(v.Dict))
	default:
		return "invalid"
	}
}

// Looks up a key in a dictionary value. Returns false if v isn't a dictionary or doesn't have the
// key.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindDict {
		return Value{}, false
	}
	for _, item := range v.Dict {
		if item.Key == key {
			return item.Value, true
		}
	}
	return Value{}, false
}

func (v Value) AsInt() (int64, error) {
	if v.Kind != KindInt {
		return 0, &TypeError{Want: KindInt, Got: v.Kind}
	}
	return v.Int, nil
}

func (v Value) AsBytes() ([]byte, error) {
	if v.Kind != KindBytes {
		return nil, &TypeError{Want: KindBytes, Got: v.Kind}
	}
	return v.Bytes, nil
}

func (v Value) AsString() (string, error) {
	b, err := v.AsBytes()
	return string(b), err
}

func (v Value) AsList() ([]Value, error) {
	if v.Kind != KindList {
		return nil, &TypeError{Want: KindList, Got: v.Kind}
	}
	return v.List, nil
}

// Returns the elements of a list of byte strings.
func (v Value) AsStrings() (ret []string, err error) {
	l, err := v.AsList()
	if err != nil {
		return
	}
	for _, e := range l {
		var s string
		s, err = e.AsString()
		if err != nil {
			return nil, err
		}
		ret = append(ret, s)
	}
	return
}

func Int(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

func Bytes(b []byte) Value {
	return Value{Kind: KindBytes, Bytes: b}
}

func String(s string) Value {
	return Bytes([]byte(s))
}

func Strings(ss ...string) Value {
	l := List()
	for _, s := range ss {
		l.List = append(l.List, String(s))
	}
	return l
}

func List(vs ...Value) Value {
	return Value{Kind: KindList, List: vs}
}

func Dict(items ...Item) Value {
	return Value{Kind: KindDict, Dict: items}
}

func KV(key string, v Value) Item {
	return Item{Key: key, Value: v}
}
