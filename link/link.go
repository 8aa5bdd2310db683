// Package link materializes a torrent's layout with links to the files resolved for its entries.
package link

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anacrolix/log"

	"github.com/anacrolix/relink/match"
)

const dirPerm os.FileMode = 0o755

var ErrDestinationExists = errors.New("destination exists and is a different file")

type Linker struct {
	// The torrent's layout is created under here.
	Root   string
	Mode   Mode
	DryRun bool
	Logger log.Logger
}

// Links dest to source. A dest that's already the same link or file is left alone.
func (me *Linker) Link(dest, source string) (existed bool, err error) {
	if me.DryRun {
		me.Logger.Levelf(log.Info, "would %v %q -> %q", me.Mode, dest, source)
		return
	}
	err = os.MkdirAll(filepath.Dir(dest), dirPerm)
	if err != nil {
		return
	}
	switch me.Mode {
	case Symlink:
		existed, err = symlink(dest, source)
	case Hardlink:
		existed, err = hardlink(dest, source)
	default:
		err = fmt.Errorf("unhandled link mode %v", me.Mode)
	}
	if err == nil && !existed {
		me.Logger.Levelf(log.Debug, "%v %q -> %q", me.Mode, dest, source)
	}
	return
}

func symlink(dest, source string) (existed bool, err error) {
	source, err = filepath.Abs(source)
	if err != nil {
		return
	}
	err = os.Symlink(source, dest)
	if !os.IsExist(err) {
		return
	}
	target, readErr := os.Readlink(dest)
	if readErr == nil && target == source {
		return true, nil
	}
	return false, fmt.Errorf("%w: %q", ErrDestinationExists, dest)
}

func hardlink(dest, source string) (existed bool, err error) {
	// os.Link doesn't follow symlinks on all platforms.
	source, err = filepath.EvalSymlinks(source)
	if err != nil {
		return
	}
	err = os.Link(source, dest)
	if !os.IsExist(err) {
		return
	}
	destInfo, destErr := os.Stat(dest)
	sourceInfo, sourceErr := os.Stat(source)
	if destErr == nil && sourceErr == nil && os.SameFile(sourceInfo, destInfo) {
		return true, nil
	}
	return false, fmt.Errorf("%w: %q", ErrDestinationExists, dest)
}

type Outcome struct {
	Entry  int
	Dest   string
	Source string
	// The destination was already linked to the source.
	Existed bool
	Err     error
}

// Links every resolved entry into place, in manifest order. Failures are logged and returned in
// the outcomes, and don't stop later entries being linked.
func (me *Linker) LinkAll(res *match.Result) (ret []Outcome) {
	m := res.Manifest
	for i := range m.Files {
		r, ok := res.Resolution(i)
		if !ok {
			continue
		}
		o := Outcome{Entry: i, Source: r.Candidate.Path}
		o.Dest, o.Err = Destination(me.Root, m, i)
		if o.Err == nil {
			o.Existed, o.Err = me.Link(o.Dest, o.Source)
		}
		if o.Err != nil {
			me.Logger.Levelf(log.Warning, "linking %q: %v", m.Files[i].DisplayPath(m), o.Err)
		}
		ret = append(ret, o)
	}
	return
}
