package storage

import (
	"os"
)

type ClassicFileIO struct{}

func (ClassicFileIO) OpenShared(name string) (SharedFile, error) {
	return os.Open(name)
}
