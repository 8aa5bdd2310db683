// Recreates a torrent's layout from files found under search roots, linking to the files that
// verify against the torrent's piece hashes.
//
// Hard links are made unless -s is given. Example run:
// $ relink -s -i /mnt/music -i /mnt/old-disk -o /srv/seed -f 0.2 album.torrent
// album/cd1/01.flac <= /mnt/old-disk/rips/track01.flac
// album/cover.jpg <= /mnt/music/album/folder.jpg
// 2/3 entries resolved (48 MB of 52 MB) in 1 passes, 1 unresolved, 0 padding, 0 duplicates, 2 linked, 0 link failures
package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/anacrolix/envpprof"
	"github.com/anacrolix/log"
	"github.com/anacrolix/tagflag"

	"github.com/anacrolix/relink"
	"github.com/anacrolix/relink/link"
	"github.com/anacrolix/relink/storage"
)

var logger = log.Default.WithNames("main")

type args struct {
	SearchRoots    []string       `arg:"-i,--input,separate" help:"directory or file to search for candidates, may be repeated"`
	Output         string         `arg:"-o,--output" default:"." help:"directory to create the torrent's layout in"`
	Symlinks       bool           `arg:"-s,--symlinks" help:"create symbolic links instead of hard links"`
	Mode           *link.Mode     `help:"link mode: hardlink (default) or symlink, overrides -s"`
	FollowSymlinks bool           `help:"follow symlinks below the search roots"`
	Fraction       *float64       `arg:"-f,--fraction" help:"proportion of each candidate's pieces to verify, from 0 to 1"`
	Workers        *int           `help:"candidates to verify concurrently"`
	Mmap           bool           `help:"memory-map candidates"`
	ReadRate       *tagflag.Bytes `help:"max bytes per second read from candidates"`
	Cache          string         `help:"directory to keep piece verdicts in between runs"`
	DryRun         bool           `help:"print what would be linked without linking"`
	Debug          bool           `help:"log verification details"`
	Quiet          bool           `help:"discard logging"`
	Stats          bool           `help:"print counters at termination"`
	Torrent        string         `arg:"positional,required" help:"torrent file path"`
}

// Some entries weren't resolved or linked.
var errIncomplete = errors.New("incomplete")

func main() {
	defer envpprof.Stop()
	err := mainErr()
	switch {
	case err == nil:
	case errors.Is(err, errIncomplete):
		os.Exit(2)
	default:
		logger.Levelf(log.Error, "error in main: %v", err)
		os.Exit(1)
	}
}

func (flags *args) config() *relink.Config {
	cfg := relink.NewDefaultConfig()
	cfg.Torrent = flags.Torrent
	cfg.SearchRoots = flags.SearchRoots
	cfg.OutputRoot = flags.Output
	cfg.LinkMode = link.Hardlink
	if flags.Symlinks {
		cfg.LinkMode = link.Symlink
	}
	if flags.Mode != nil {
		cfg.LinkMode = *flags.Mode
	}
	cfg.FollowSymlinks = flags.FollowSymlinks
	if flags.Fraction != nil {
		cfg.Fraction = *flags.Fraction
	}
	if flags.Workers != nil {
		cfg.Workers = *flags.Workers
	}
	cfg.Mmap = flags.Mmap
	if flags.ReadRate != nil {
		cfg.ReadRate = flags.ReadRate.Int64()
	}
	cfg.VerdictCacheDir = flags.Cache
	cfg.DryRun = flags.DryRun
	cfg.Debug = flags.Debug
	cfg.Quiet = flags.Quiet
	if len(cfg.SearchRoots) == 0 {
		cfg.SearchRoots = []string{"."}
	}
	return cfg
}

func mainErr() error {
	var flags args
	arg.MustParse(&flags)
	cfg := flags.config()
	cfg.Files = storage.NewFileCache(storage.FileCacheOpts{
		Mmap:     cfg.Mmap,
		ReadRate: cfg.ReadRate,
	})
	defer cfg.Files.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// Served on the default HTTP muxer, bound to localhost if GOPPROF is set.
	http.HandleFunc("/debug/relink/counters", func(w http.ResponseWriter, r *http.Request) {
		writeCounters(w)
	})
	http.HandleFunc("/debug/shared-files", func(w http.ResponseWriter, r *http.Request) {
		cfg.Files.WriteDebug(w)
	})
	report, err := relink.Run(ctx, cfg)
	if flags.Stats {
		defer writeCounters(os.Stdout)
	}
	if report == nil {
		return err
	}
	m := report.Manifest
	for i, fe := range m.Files {
		if r, ok := report.Result.Resolution(i); ok {
			fmt.Printf("%s <= %s\n", fe.DisplayPath(m), r.Candidate.Path)
		}
	}
	s := report.Summary()
	fmt.Println(s)
	if err != nil {
		return err
	}
	if !s.Complete() {
		return errIncomplete
	}
	return nil
}

func writeCounters(w io.Writer) {
	expvar.Do(func(kv expvar.KeyValue) {
		fmt.Fprintf(w, "%s: %s\n", kv.Key, kv.Value)
	})
}
