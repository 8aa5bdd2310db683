package storage

import (
	g "github.com/anacrolix/generics"
	"github.com/anacrolix/sync"
)

type mapPieceVerdicts struct {
	mu sync.RWMutex
	m  map[VerdictKey]bool
}

func NewMapPieceVerdicts() PieceVerdicts {
	return &mapPieceVerdicts{}
}

func (me *mapPieceVerdicts) Get(k VerdictKey) (ret g.Option[bool], err error) {
	me.mu.RLock()
	defer me.mu.RUnlock()
	ret.Value, ret.Ok = me.m[k]
	return
}

func (me *mapPieceVerdicts) Set(k VerdictKey, matched bool) error {
	me.mu.Lock()
	defer me.mu.Unlock()
	g.MakeMapIfNil(&me.m)
	me.m[k] = matched
	return nil
}

func (me *mapPieceVerdicts) Close() error {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.m = nil
	return nil
}
