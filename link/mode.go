package link

import (
	"fmt"
)

type Mode int

const (
	Symlink Mode = iota
	Hardlink
)

func (m Mode) String() string {
	switch m {
	case Symlink:
		return "symlink"
	case Hardlink:
		return "hardlink"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (m Mode, err error) {
	switch s {
	case "symlink", "sym", "s":
		m = Symlink
	case "hardlink", "hard", "h":
		m = Hardlink
	default:
		err = fmt.Errorf("unknown link mode %q", s)
	}
	return
}

func (m *Mode) UnmarshalText(b []byte) (err error) {
	*m, err = ParseMode(string(b))
	return
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
