package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/selection"
)

// ExportLive writes the selected live channels to the playlist at path,
// replacing it atomically.
func (e *Exporter) ExportLive(ctx context.Context, snap catalog.Snapshot, sel *selection.State, path string) Report {
	r := e.start(catalog.KindLive, sel, path)
	if r.State == StateRejected {
		return r
	}
	e.progress(Progress{Kind: catalog.KindLive, Message: "Generating live playlist..."})
	data, n := Playlist(snap.EPGURL, snap.Live, func(g string) bool {
		return sel.Contains(catalog.KindLive, g)
	})
	r.Considered = n
	if err := writeFileAtomic(path, data, filePerm); err != nil {
		r.Failed = n
		r.Err = fmt.Errorf("write playlist: %w", err)
		e.logger().Warn("playlist write failed", zap.String("path", path), zap.Error(err))
	} else {
		r.Written = n
	}
	e.finish(&r)
	e.progress(Progress{Kind: catalog.KindLive, Done: r.Written, Total: r.Considered, Message: r.Summary()})
	return r
}
