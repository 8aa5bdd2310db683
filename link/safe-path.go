package link

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anacrolix/relink/metainfo"
)

var ErrUnsafePath = errors.New("unsafe path")

// Joins the path components, which must not escape the directory they're relative to.
func ToSafeFilePath(parts ...string) (string, error) {
	ret := filepath.Join(parts...)
	if !filepath.IsLocal(ret) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, strings.Join(parts, "/"))
	}
	return ret, nil
}

// Where the entry goes under root in the torrent's layout.
func Destination(root string, m *metainfo.Manifest, entry int) (string, error) {
	parts := []string{m.Name}
	if m.IsDir {
		parts = append(parts, m.Files[entry].Path...)
	}
	rel, err := ToSafeFilePath(parts...)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}
