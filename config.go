package relink

import (
	"github.com/anacrolix/log"

	"github.com/anacrolix/relink/link"
	"github.com/anacrolix/relink/storage"
)

// Probably not safe to modify this after it's given to Run.
type Config struct {
	// Path to the .torrent file.
	Torrent string
	// Directories and files searched for candidates, in order.
	SearchRoots []string
	// The torrent's layout is created under here.
	OutputRoot string
	LinkMode   link.Mode
	// The proportion of each candidate's pieces that are hashed. Clamped to [0, 1].
	Fraction       float64
	FollowSymlinks bool
	// Candidates of the same size verified concurrently.
	Workers int
	// Map candidates into memory instead of reading them.
	Mmap bool
	// Bytes per second read from candidates. Zero is unlimited.
	ReadRate int64
	// Shared handles to candidates. If nil, a cache using Mmap and ReadRate is created for each
	// run. A cache given here isn't closed.
	Files *storage.FileCache
	// Where piece verdicts are kept between runs. Empty disables the cache.
	VerdictCacheDir string
	// Report what would be linked without touching the output root.
	DryRun bool
	Logger log.Logger
	Debug  bool
	Quiet  bool
}

func NewDefaultConfig() *Config {
	return &Config{
		OutputRoot: ".",
		LinkMode:   link.Symlink,
		Fraction:   initFloatFromEnv("RELINK_FRACTION", 1.0),
		Workers:    initIntFromEnv("RELINK_WORKERS", 1, 0),
		Logger:     log.Default.WithNames("relink"),
	}
}

func (cfg *Config) fraction() float64 {
	return min(max(cfg.Fraction, 0), 1)
}

func (cfg *Config) logger() log.Logger {
	switch {
	case cfg.Quiet:
		return log.Discard
	case cfg.Debug:
		return cfg.Logger.FilterLevel(log.Debug)
	default:
		return cfg.Logger
	}
}

func (cfg *Config) fileCache() (_ *storage.FileCache, close func() error) {
	if cfg.Files != nil {
		return cfg.Files, func() error { return nil }
	}
	files := storage.NewFileCache(storage.FileCacheOpts{
		Mmap:     cfg.Mmap,
		ReadRate: cfg.ReadRate,
	})
	return files, files.Close
}
