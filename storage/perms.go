package storage

import (
	"os"
)

// Permissions for anything created for the verdict cache.
const (
	filePerm os.FileMode = 0o644
	dirPerm  os.FileMode = 0o755
)
