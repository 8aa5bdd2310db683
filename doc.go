/*
Package relink finds the files of a torrent on local storage and recreates the torrent's layout
with links to them, so the data can be seeded without copying it.

Files are matched to the torrent's entries by size, then accepted by hashing some or all of the
pieces that overlap them:

	cfg := relink.NewDefaultConfig()
	cfg.Torrent = "album.torrent"
	cfg.SearchRoots = []string{"/mnt/music"}
	cfg.OutputRoot = "/srv/seed"
	report, err := relink.Run(context.Background(), cfg)
*/
package relink
