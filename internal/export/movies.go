package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/selection"
)

var errEmptyName = errors.New("name is empty after sanitizing")

// ExportMovies writes {root}/{group}/{folder}/{title}.{ext} for every selected movie.
func (e *Exporter) ExportMovies(ctx context.Context, snap catalog.Snapshot, sel *selection.State, root string) Report {
	r := e.start(catalog.KindMovie, sel, root)
	if r.State == StateRejected {
		return r
	}
	e.progress(Progress{Kind: catalog.KindMovie, Message: "Exporting movies..."})
	for _, m := range snap.Movies {
		if !sel.Contains(catalog.KindMovie, m.Group) {
			continue
		}
		r.Considered++
		if err := e.writeMovie(root, m); err != nil {
			r.Failed++
			e.logger().Debug("movie skipped", zap.String("movie", m.Name), zap.Error(err))
			continue
		}
		r.Written++
	}
	e.finish(&r)
	e.progress(Progress{Kind: catalog.KindMovie, Done: r.Written, Total: r.Considered, Message: r.Summary()})
	return r
}

func (e *Exporter) writeMovie(root string, m catalog.MovieStream) error {
	title := SanitizeName(m.Name)
	if title == "" {
		return errEmptyName
	}
	dir := filepath.Join(root, GroupDirName(m.Group), MovieFolderName(title))
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return writeLink(filepath.Join(dir, title+"."+e.linkExt()), m.PlaybackURL)
}
