// Checks the files laid out for a torrent under a directory against the torrent's piece hashes.
//
// $ relink-verify --path /srv/seed album.torrent
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/anacrolix/bargle/v2"
	app "github.com/anacrolix/gostdapp"

	"github.com/anacrolix/relink"
)

func main() {
	app.RunContext(mainErr)
}

func printSummary(counts map[relink.LayoutState]int) {
	fmt.Println("----------------")
	fmt.Println(" RELINK-VERIFY ")
	fmt.Println("----------------")
	for _, s := range []relink.LayoutState{
		relink.LayoutValid,
		relink.LayoutInvalid,
		relink.LayoutUnchecked,
		relink.LayoutWrongSize,
		relink.LayoutMissing,
		relink.LayoutUnreadable,
	} {
		fmt.Printf("Number of %s files: %d\n", s, counts[s])
	}
}

// The number of entries that aren't laid out as the torrent describes.
func layoutProblems(counts map[relink.LayoutState]int) int {
	return counts[relink.LayoutInvalid] +
		counts[relink.LayoutWrongSize] +
		counts[relink.LayoutMissing] +
		counts[relink.LayoutUnreadable]
}

func mainErr(ctx context.Context) error {
	cfg := relink.NewDefaultConfig()
	cfg.Fraction = 1
	p := bargle.NewParser()
	defer p.DoHelpIfHelping()
	bargle.ParseAll(
		p,
		bargle.Long("path", bargle.BuiltinUnmarshaler(&cfg.OutputRoot)),
		bargle.Long("fraction", bargle.BuiltinUnmarshaler(&cfg.Fraction)),
		bargle.Positional("torrent", bargle.BuiltinUnmarshaler(&cfg.Torrent)),
	)
	p.FailIfArgsRemain()
	if !p.Ok() {
		return p.Err()
	}
	m, entries, err := relink.CheckLayout(ctx, cfg)
	if err != nil {
		return err
	}
	counts := make(map[relink.LayoutState]int)
	for i, le := range entries {
		counts[le.State]++
		if le.State == relink.LayoutPadding {
			continue
		}
		if le.Err != nil {
			fmt.Printf("%s: %s: %v\n", m.Files[i].DisplayPath(m), le.State, le.Err)
			continue
		}
		fmt.Printf("%s: %s\n", m.Files[i].DisplayPath(m), le.State)
	}
	printSummary(counts)
	if layoutProblems(counts) != 0 {
		// Same status as relink leaves for an incomplete layout.
		os.Exit(2)
	}
	return nil
}
