package relink

import (
	"context"
	"fmt"

	"github.com/anacrolix/log"

	"github.com/anacrolix/relink/link"
	"github.com/anacrolix/relink/match"
	"github.com/anacrolix/relink/metainfo"
	"github.com/anacrolix/relink/pieceindex"
	"github.com/anacrolix/relink/scan"
	"github.com/anacrolix/relink/storage"
	"github.com/anacrolix/relink/verify"
)

type Report struct {
	Manifest *metainfo.Manifest
	Result   *match.Result
	// One for each resolved entry, in manifest order.
	Links []link.Outcome
	Scan  scan.Stats
}

// Loads the torrent, matches files under the search roots to its entries, and links the
// resolved entries into the output root. Problems with individual candidates or links are
// logged and reflected in the report. If ctx is cancelled while matching, the partial report is
// returned with the error, and nothing is linked.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	logger := cfg.logger()
	m, err := metainfo.LoadFromFile(cfg.Torrent)
	if err != nil {
		return nil, fmt.Errorf("loading torrent %q: %w", cfg.Torrent, err)
	}
	logger.Levelf(log.Info,
		"loaded %q (%v): %v files, %v pieces of %v bytes",
		m.Name, m.InfoHash, len(m.Files), m.NumPieces(), m.PieceLength)
	files, closeFiles := cfg.fileCache()
	defer closeFiles()
	verifier := &verify.Verifier{
		Manifest: m,
		Index:    pieceindex.Build(m),
		Files:    files,
		Logger:   logger.WithNames("verify"),
	}
	if cfg.VerdictCacheDir != "" {
		verifier.Verdicts = storage.PieceVerdictsForDir(cfg.VerdictCacheDir, logger)
		defer verifier.Verdicts.Close()
	}
	scanner := scan.Scanner{
		FollowSymlinks: cfg.FollowSymlinks,
		Logger:         logger.WithNames("scan"),
	}
	matcher := match.Matcher{
		Verifier: verifier,
		Fraction: cfg.fraction(),
		Workers:  max(cfg.Workers, 1),
		Logger:   logger.WithNames("match"),
	}
	report := &Report{Manifest: m}
	report.Result, err = matcher.Resolve(ctx, scanner.Candidates(ctx, cfg.SearchRoots...))
	report.Scan = scanner.Stats
	if err != nil {
		return report, err
	}
	linker := link.Linker{
		Root:   cfg.OutputRoot,
		Mode:   cfg.LinkMode,
		DryRun: cfg.DryRun,
		Logger: logger.WithNames("link"),
	}
	report.Links = linker.LinkAll(report.Result)
	return report, nil
}
