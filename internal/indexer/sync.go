package indexer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
)

// Sync fetches the provider's full catalog: all category maps first, then the
// three item lists. A failed call contributes nothing; Sync never fails as a whole.
// progress, when non-nil, receives one line per step.
func (c *Client) Sync(ctx context.Context, progress func(string)) catalog.Snapshot {
	report := func(format string, args ...interface{}) {
		if progress != nil {
			progress(fmt.Sprintf(format, args...))
		}
	}
	snap := catalog.Snapshot{
		Provider:  c.creds.Name,
		EPGURL:    c.EPGURL(),
		FetchedAt: time.Now().UTC(),
	}

	cats := make(map[catalog.Kind]catalog.Categories, len(catalog.Kinds))
	for _, kind := range catalog.Kinds {
		report("Fetching %s categories...", kind)
		cats[kind] = c.FetchCategories(ctx, kind).Data
	}

	for _, kind := range catalog.Kinds {
		report("Fetching %s list...", kind)
		items := c.FetchItems(ctx, kind).Data
		groups := cats[kind]
		switch kind {
		case catalog.KindLive:
			snap.Live = make([]catalog.LiveStream, 0, len(items))
			for _, it := range items {
				snap.Live = append(snap.Live, catalog.LiveStream{
					Name:         strings.TrimSpace(it.Name),
					Group:        groups.Resolve(string(it.CategoryID)),
					PlaybackURL:  c.LiveURL(string(it.StreamID)),
					LogoURL:      it.StreamIcon,
					EPGChannelID: string(it.EPGChannelID),
				})
			}
		case catalog.KindMovie:
			snap.Movies = make([]catalog.MovieStream, 0, len(items))
			for _, it := range items {
				snap.Movies = append(snap.Movies, catalog.MovieStream{
					Name:        strings.TrimSpace(it.Name),
					Group:       groups.Resolve(string(it.CategoryID)),
					PlaybackURL: c.MovieURL(string(it.StreamID), it.ContainerExtension),
				})
			}
		case catalog.KindSeries:
			snap.Series = make([]catalog.SeriesSummary, 0, len(items))
			for _, it := range items {
				snap.Series = append(snap.Series, catalog.SeriesSummary{
					Name:     strings.TrimSpace(it.Name),
					Group:    groups.Resolve(string(it.CategoryID)),
					SeriesID: string(it.SeriesID),
					CoverURL: it.Cover,
					Plot:     it.Plot,
				})
			}
		}
	}
	c.logger.Info("catalog synced",
		zap.String("provider", snap.Provider),
		zap.Int("live", len(snap.Live)),
		zap.Int("movies", len(snap.Movies)),
		zap.Int("series", len(snap.Series)),
	)
	report("Fetched %d live, %d movies, %d series", len(snap.Live), len(snap.Movies), len(snap.Series))
	return snap
}
