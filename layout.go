package relink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/anacrolix/log"

	"github.com/anacrolix/relink/link"
	"github.com/anacrolix/relink/metainfo"
	"github.com/anacrolix/relink/pieceindex"
	"github.com/anacrolix/relink/verify"
)

type LayoutState int

const (
	LayoutPadding LayoutState = iota
	LayoutMissing
	LayoutWrongSize
	// Nothing in the sample could be checked.
	LayoutUnchecked
	LayoutValid
	LayoutInvalid
	// The file couldn't be read. The error is on the LayoutEntry.
	LayoutUnreadable
)

func (s LayoutState) String() string {
	switch s {
	case LayoutPadding:
		return "padding"
	case LayoutMissing:
		return "missing"
	case LayoutWrongSize:
		return "wrong size"
	case LayoutUnchecked:
		return "unchecked"
	case LayoutValid:
		return "valid"
	case LayoutInvalid:
		return "invalid"
	case LayoutUnreadable:
		return "unreadable"
	default:
		return fmt.Sprintf("LayoutState(%d)", int(s))
	}
}

type LayoutEntry struct {
	Path    string
	State   LayoutState
	Outcome verify.Outcome
	// Why the entry is LayoutUnreadable.
	Err error
}

func (le *LayoutEntry) setUnreadable(logger log.Logger, err error) {
	le.State = LayoutUnreadable
	le.Err = err
	logger.Levelf(log.Warning, "reading %q: %v", le.Path, err)
}

// Verifies the files already laid out for the torrent under the output root. Every entry that
// is present with the right size stands in for its neighbours in shared pieces. Files that can't
// be read are reported per entry, only cancellation stops the check.
func CheckLayout(ctx context.Context, cfg *Config) (m *metainfo.Manifest, ret []LayoutEntry, err error) {
	logger := cfg.logger()
	m, err = metainfo.LoadFromFile(cfg.Torrent)
	if err != nil {
		err = fmt.Errorf("loading torrent %q: %w", cfg.Torrent, err)
		return
	}
	files, closeFiles := cfg.fileCache()
	defer closeFiles()
	v := &verify.Verifier{
		Manifest: m,
		Index:    pieceindex.Build(m),
		Files:    files,
		Logger:   logger.WithNames("verify"),
	}
	ret = make([]LayoutEntry, len(m.Files))
	present := make(verify.SettledMap)
	for i, fe := range m.Files {
		le := &ret[i]
		if fe.Padding() {
			le.State = LayoutPadding
			continue
		}
		le.Path, err = link.Destination(cfg.OutputRoot, m, i)
		if err != nil {
			return
		}
		fi, statErr := os.Stat(le.Path)
		if errors.Is(statErr, fs.ErrNotExist) {
			le.State = LayoutMissing
			continue
		}
		if statErr != nil {
			le.setUnreadable(logger, statErr)
			continue
		}
		if fi.Size() != fe.Length {
			le.State = LayoutWrongSize
			continue
		}
		present[i] = verify.Candidate{Path: le.Path, Size: fi.Size(), ModTime: fi.ModTime()}
	}
	for i := range ret {
		cand, ok := present[i]
		if !ok {
			continue
		}
		le := &ret[i]
		var scoreErr error
		le.Outcome, scoreErr = v.Score(ctx, cand, i, cfg.fraction(), present)
		if err = ctx.Err(); err != nil {
			return
		}
		if scoreErr != nil {
			le.setUnreadable(logger, scoreErr)
			continue
		}
		switch {
		case le.Outcome.Accepted():
			le.State = LayoutValid
		case le.Outcome.Checked == 0:
			le.State = LayoutUnchecked
		default:
			le.State = LayoutInvalid
		}
		logger.Levelf(log.Debug, "%q: %v", cand.Path, &le.Outcome)
	}
	return
}
