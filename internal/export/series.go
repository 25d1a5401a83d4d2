package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/indexer"
	"github.com/snapetech/strmsync/internal/selection"
	"github.com/snapetech/strmsync/internal/tmdb"
)

var errNoEpisodeID = errors.New("episode has no id")

// ExportSeries fetches each selected series in catalog order and writes its show
// NFO, season folders and episode link/NFO pairs. Series are processed one at a time.
func (e *Exporter) ExportSeries(ctx context.Context, snap catalog.Snapshot, sel *selection.State, root string) Report {
	r := e.start(catalog.KindSeries, sel, root)
	if r.State == StateRejected {
		return r
	}
	var todo []catalog.SeriesSummary
	for _, s := range snap.Series {
		if sel.Contains(catalog.KindSeries, s.Group) {
			todo = append(todo, s)
		}
	}
	r.Considered = len(todo)
	e.progress(Progress{Kind: catalog.KindSeries, Total: len(todo),
		Message: fmt.Sprintf("Processing %d series...", len(todo))})

	for i, s := range todo {
		e.progress(Progress{Kind: catalog.KindSeries, Done: i, Total: len(todo),
			Message: fmt.Sprintf("Series %d/%d: %s", i+1, len(todo), s.Name)})
		written, failed, err := e.exportOneSeries(ctx, root, s)
		r.Written += written
		r.Failed += failed
		if err != nil {
			r.Failed++
			e.logger().Warn("series export failed", zap.String("series", s.Name), zap.Error(err))
		}
	}
	e.finish(&r)
	e.progress(Progress{Kind: catalog.KindSeries, Done: len(todo), Total: len(todo), Message: r.Summary()})
	return r
}

// exportOneSeries returns the episodes written and failed. A non-nil error is a
// series-level failure; panics are converted into one.
func (e *Exporter) exportOneSeries(ctx context.Context, root string, s catalog.SeriesSummary) (written, failed int, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	res := e.Series.FetchSeriesDetail(ctx, s.SeriesID)
	if errors.Is(res.Unavailable, indexer.ErrNoEpisodes) || (res.OK() && res.Data == nil) {
		e.logger().Debug("series has no episodes", zap.String("series", s.Name))
		return 0, 0, nil
	}
	if res.Unavailable != nil {
		e.logger().Warn("series detail unavailable", zap.String("series", s.Name), zap.Error(res.Unavailable))
		return 0, 0, nil
	}
	detail := res.Data

	name := SanitizeName(s.Name)
	if name == "" {
		return 0, 0, errEmptyName
	}
	seriesDir := filepath.Join(root, GroupDirName(s.Group), name)
	if err := os.MkdirAll(seriesDir, dirPerm); err != nil {
		return 0, 0, fmt.Errorf("mkdir: %w", err)
	}
	e.writeShowNFO(ctx, seriesDir, name, s, detail.Info)

	for _, season := range detail.Seasons {
		for _, ep := range season.Episodes {
			if err := e.writeEpisode(seriesDir, name, season.Number, ep); err != nil {
				failed++
				e.logger().Debug("episode skipped",
					zap.String("series", s.Name),
					zap.String("season", season.Number),
					zap.String("episode", ep.EpisodeNumber),
					zap.Error(err))
				continue
			}
			written++
		}
	}
	return written, failed, nil
}

// writeShowNFO writes tvshow.nfo. A write failure leaves no file and is not counted.
func (e *Exporter) writeShowNFO(ctx context.Context, dir, sanitized string, s catalog.SeriesSummary, info catalog.ProviderInfo) {
	var meta *tmdb.SeriesMetadata
	if e.Enricher != nil {
		if lk := e.Enricher.LookupSeries(ctx, sanitized); lk.Unavailable == nil {
			meta = lk.Metadata
		}
	}
	data, err := showNFO(s, info, meta)
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, "tvshow.nfo"), data, filePerm)
	}
	if err != nil {
		e.logger().Debug("tvshow.nfo not written", zap.String("series", s.Name), zap.Error(err))
	}
}

func (e *Exporter) writeEpisode(seriesDir, series, seasonKey string, ep catalog.Episode) error {
	seasonNum, err := strconv.Atoi(strings.TrimSpace(seasonKey))
	if err != nil {
		return fmt.Errorf("season %q: %w", seasonKey, err)
	}
	epNum, err := strconv.Atoi(strings.TrimSpace(ep.EpisodeNumber))
	if err != nil {
		return fmt.Errorf("episode %q: %w", ep.EpisodeNumber, err)
	}
	if ep.RemoteID == "" {
		return errNoEpisodeID
	}
	dir := filepath.Join(seriesDir, SeasonDirName(seasonNum))
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	base := filepath.Join(dir, EpisodeBaseName(series, seasonNum, epNum))
	if err := writeLink(base+"."+e.linkExt(), e.Series.EpisodeURL(ep.RemoteID, ep.ContainerExtension)); err != nil {
		return err
	}
	nfo, err := episodeNFOBytes(seasonKey, ep)
	if err != nil {
		return err
	}
	return os.WriteFile(base+".nfo", nfo, filePerm)
}
