package storage

import (
	"io"
)

// A read-only handle that's safe for concurrent ReadAt.
type SharedFile interface {
	io.ReaderAt
	io.Closer
}

type FileIO interface {
	OpenShared(name string) (SharedFile, error)
}
