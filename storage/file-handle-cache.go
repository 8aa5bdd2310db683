package storage

import (
	"cmp"
	"errors"
	"expvar"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/anacrolix/missinggo/v2/panicif"
	"github.com/anacrolix/sync"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var (
	fileCacheOpens = expvar.NewInt("relinkFileCacheOpens")
	// Opens that raced with the removal of a handle whose last ref was closed.
	fileCacheReopens = expvar.NewInt("relinkFileCacheReopens")
	// Handles opened after another flight for the same name had already inserted one.
	fileCacheWastedOpens = expvar.NewInt("relinkFileCacheWastedOpens")
)

type FileCacheOpts struct {
	// Map files into memory instead of reading through file descriptors.
	Mmap bool
	// Bytes per second across all reads through the cache. Zero means unlimited.
	ReadRate int64
}

// Shares read-only handles to files between everything verifying candidates in a run. Handles
// are ref counted and closed when the last ref is closed. Only the creation of a handle is
// serialized per path, reads never take a lock.
type FileCache struct {
	io      FileIO
	limiter *rate.Limiter
	group   singleflight.Group

	mu sync.Mutex
	m  map[string]*sharedFile
}

func NewFileCache(opts FileCacheOpts) *FileCache {
	ret := &FileCache{
		io: ClassicFileIO{},
		m:  make(map[string]*sharedFile),
	}
	if opts.Mmap {
		ret.io = MmapFileIO{}
	}
	if opts.ReadRate > 0 {
		ret.limiter = newReadLimiter(opts.ReadRate)
	}
	return ret
}

func (me *FileCache) WriteDebug(w io.Writer) {
	me.mu.Lock()
	defer me.mu.Unlock()
	byRefs := slices.SortedFunc(maps.Keys(me.m), func(a, b string) int {
		return cmp.Or(
			me.m[b].refs-me.m[a].refs,
			cmp.Compare(a, b))
	})
	for _, key := range byRefs {
		fmt.Fprintf(w, "%v: refs=%v\n", key, me.m[key].refs)
	}
}

// Returns a new ref to a shared handle for the named file. The ref must be closed.
func (me *FileCache) Open(name string) (*FileRef, error) {
	for {
		me.mu.Lock()
		sf, ok := me.m[name]
		if ok {
			ret := sf.newRef()
			me.mu.Unlock()
			return ret, nil
		}
		me.mu.Unlock()
		v, err, _ := me.group.Do(name, func() (any, error) {
			f, err := me.io.OpenShared(name)
			if err != nil {
				return nil, err
			}
			fileCacheOpens.Add(1)
			me.mu.Lock()
			if existing, ok := me.m[name]; ok {
				me.mu.Unlock()
				fileCacheWastedOpens.Add(1)
				f.Close()
				return existing, nil
			}
			sf := &sharedFile{cache: me, name: name, f: f}
			me.m[name] = sf
			me.mu.Unlock()
			return sf, nil
		})
		if err != nil {
			return nil, err
		}
		sf = v.(*sharedFile)
		me.mu.Lock()
		// Another ref may have been opened and closed on the new handle before we got here.
		if me.m[name] == sf {
			ret := sf.newRef()
			me.mu.Unlock()
			return ret, nil
		}
		me.mu.Unlock()
		fileCacheReopens.Add(1)
	}
}

// The number of open handles.
func (me *FileCache) Len() int {
	me.mu.Lock()
	defer me.mu.Unlock()
	return len(me.m)
}

// Closes any handles that still have refs. Refs closed afterwards do nothing.
func (me *FileCache) Close() error {
	me.mu.Lock()
	m := me.m
	me.m = make(map[string]*sharedFile)
	me.mu.Unlock()
	var errs []error
	for _, sf := range m {
		errs = append(errs, sf.f.Close())
	}
	return errors.Join(errs...)
}

type sharedFile struct {
	cache *FileCache
	name  string
	f     SharedFile
	refs  int
}

func (me *sharedFile) newRef() *FileRef {
	me.refs++
	ret := &FileRef{sf: me}
	if me.cache.limiter != nil {
		ret.r = rateLimitedReaderAt{me.cache.limiter, me.f}
	} else {
		ret.r = me.f
	}
	return ret
}

// A ref to a shared handle. ReadAt is safe for concurrent use.
type FileRef struct {
	r      io.ReaderAt
	sf     *sharedFile
	closed atomic.Bool
}

func (me *FileRef) ReadAt(b []byte, off int64) (int, error) {
	return me.r.ReadAt(b, off)
}

func (me *FileRef) Close() (err error) {
	if !me.closed.CompareAndSwap(false, true) {
		return
	}
	sf := me.sf
	c := sf.cache
	c.mu.Lock()
	sf.refs--
	panicif.LessThan(sf.refs, 0)
	if sf.refs != 0 || c.m[sf.name] != sf {
		c.mu.Unlock()
		return
	}
	delete(c.m, sf.name)
	c.mu.Unlock()
	return sf.f.Close()
}
