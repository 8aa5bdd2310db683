package storage

import (
	"path/filepath"
	"time"

	g "github.com/anacrolix/generics"
	"go.etcd.io/bbolt"
)

var verdictsBucketKey = []byte("verdicts")

type boltPieceVerdicts struct {
	db *bbolt.DB
}

func NewBoltPieceVerdicts(dir string) (PieceVerdicts, error) {
	db, err := bbolt.Open(filepath.Join(dir, "verdicts.db"), 0o600, &bbolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, err
	}
	db.NoSync = true
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(verdictsBucketKey)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltPieceVerdicts{db}, nil
}

func (me *boltPieceVerdicts) Get(k VerdictKey) (ret g.Option[bool], err error) {
	err = me.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(verdictsBucketKey).Get(k[:])
		if len(v) == 1 {
			ret.Set(v[0] != 0)
		}
		return nil
	})
	return
}

func (me *boltPieceVerdicts) Set(k VerdictKey, matched bool) error {
	v := []byte{0}
	if matched {
		v[0] = 1
	}
	return me.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(verdictsBucketKey).Put(k[:], v)
	})
}

func (me *boltPieceVerdicts) Close() error {
	return me.db.Close()
}
