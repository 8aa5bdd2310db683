package storage

import (
	"errors"
	"os"

	g "github.com/anacrolix/generics"
	"github.com/anacrolix/log"
)

// Remembers whether the bytes for a piece matched its expected hash. Implementations must be
// safe for concurrent use.
type PieceVerdicts interface {
	// Returns None if there's no verdict for the key.
	Get(VerdictKey) (g.Option[bool], error)
	Set(_ VerdictKey, matched bool) error
	Close() error
}

// Opens the persistent verdict store in dir, falling back to memory if it can't be opened.
func PieceVerdictsForDir(dir string, logger log.Logger) (ret PieceVerdicts) {
	mkdirErr := os.MkdirAll(dir, dirPerm)
	ret, err := NewBoltPieceVerdicts(dir)
	if err != nil {
		logger.Levelf(log.Warning, "couldn't open piece verdict db in %q: %s", dir, errors.Join(mkdirErr, err))
		ret = NewMapPieceVerdicts()
	}
	return
}
