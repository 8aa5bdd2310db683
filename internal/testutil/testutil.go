package testutil

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/anacrolix/missinggo/v2/panicif"
)

// Deterministic pseudo-random file contents.
func RandomData(seed int64, n int) string {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return string(b)
}

func Zeros(n int) string {
	return strings.Repeat("\x00", n)
}

// Writes each non-padding file of the torrent under dir, as the torrent would lay it out. Returns
// the written paths in file order, with empty strings for padding files.
func (t *Torrent) WriteFiles(dir string) (paths []string) {
	for _, f := range t.Files {
		if strings.ContainsRune(f.Attr, 'p') {
			paths = append(paths, "")
			continue
		}
		var p string
		if t.IsDir() {
			p = filepath.Join(dir, t.Name, filepath.FromSlash(f.Name))
		} else {
			p = filepath.Join(dir, t.Name)
		}
		panicif.Err(os.MkdirAll(filepath.Dir(p), 0o755))
		panicif.Err(os.WriteFile(p, []byte(f.Data), 0o644))
		paths = append(paths, p)
	}
	return
}

// Writes the metainfo document to path.
func (t *Torrent) WriteMetainfo(path string, pieceLength int64) string {
	panicif.Err(os.WriteFile(path, t.Metainfo(pieceLength), 0o644))
	return path
}
