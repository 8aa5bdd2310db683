package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

type MmapFileIO struct{}

func (MmapFileIO) OpenShared(name string) (_ SharedFile, err error) {
	f, err := os.Open(name)
	if err != nil {
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return
	}
	// Zero-length files can't be mapped.
	if fi.Size() == 0 {
		return &mmapSharedFile{}, nil
	}
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		err = fmt.Errorf("mapping file: %w", err)
		return
	}
	return &mmapSharedFile{m: mm}, nil
}

type mmapSharedFile struct {
	m     mmap.MMap
	close sync.Once
}

func (m *mmapSharedFile) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		err = fs.ErrInvalid
		return
	}
	if off >= int64(len(m.m)) {
		err = io.EOF
		return
	}
	n = copy(p, m.m[off:])
	if n < len(p) {
		err = io.EOF
	}
	return
}

func (m *mmapSharedFile) Close() (err error) {
	m.close.Do(func() {
		if m.m != nil {
			err = m.m.Unmap()
		}
	})
	return
}
