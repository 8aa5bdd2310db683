// Package testutil contains stuff for testing relink behaviour.
//
// "greeting" is a single-file torrent of a file called "greeting" that
// "contains "hello, world\n".
package testutil

import (
	"os"
	"path/filepath"

	"github.com/anacrolix/missinggo/v2/panicif"
)

// Greeting torrent
var Greeting = Torrent{
	Files: []File{{
		Data: GreetingFileContents,
	}},
	Name: GreetingFileName,
}

// various constants.
const (
	GreetingFileContents = "hello, world\n"
	GreetingFileName     = "greeting"
)

// Writes the greeting file to the given path.
func CreateDummyTorrentData(path string) string {
	panicif.Err(os.WriteFile(path, []byte(GreetingFileContents), 0o644))
	return path
}

// Writes the greeting torrent's data under dir, and returns the metainfo document.
func GreetingTestTorrent(dir string) (metainfo []byte) {
	CreateDummyTorrentData(filepath.Join(dir, GreetingFileName))
	return Greeting.Metainfo(5)
}
