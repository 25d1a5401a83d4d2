// Package export turns a catalog snapshot and a group selection into files a
// media server can index: an M3U playlist for live channels and trees of link
// (.strm) and .nfo files for movies and series.
//
// Every batch isolates failures per item. A batch is only refused up front, when
// no provider is active or nothing is selected for its kind.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/indexer"
	"github.com/snapetech/strmsync/internal/selection"
	"github.com/snapetech/strmsync/internal/tmdb"
)

// DefaultLinkExt is the extension of link files.
const DefaultLinkExt = "strm"

const unknownGroupDir = catalog.UnknownGroup

var (
	// ErrNoProvider rejects a batch when no provider is active.
	ErrNoProvider = errors.New("export: no provider selected")
	// ErrEmptySelection rejects a batch when no group is selected for its kind.
	ErrEmptySelection = errors.New("export: no groups selected")
)

// State is the lifecycle state of one batch.
type State string

const (
	StateIdle            State = "idle"
	StateRunning         State = "running"
	StateSucceeded       State = "succeeded"
	StatePartiallyFailed State = "partially_failed"
	StateRejected        State = "rejected"
)

// Report summarises one batch.
type Report struct {
	BatchID    uuid.UUID
	Kind       catalog.Kind
	Provider   string
	Dest       string
	State      State
	Written    int // playlist entries, movie links or episodes
	Considered int // selected items; series count for series batches
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error // rejection reason, or the playlist write error
}

// Summary is the one-line status message shown when the batch ends.
func (r Report) Summary() string {
	if r.State == StateRejected {
		return fmt.Sprintf("%s export not started: %v", r.Kind, r.Err)
	}
	var s string
	switch r.Kind {
	case catalog.KindLive:
		s = fmt.Sprintf("%d channels written to playlist", r.Written)
	case catalog.KindMovie:
		s = fmt.Sprintf("%d movies exported", r.Written)
	case catalog.KindSeries:
		s = fmt.Sprintf("%d episodes exported from %d series", r.Written, r.Considered)
	}
	if r.Failed > 0 {
		s += fmt.Sprintf(" (%d failed)", r.Failed)
	}
	return s
}

// Progress is emitted while a batch runs.
type Progress struct {
	Kind    catalog.Kind
	Done    int
	Total   int
	Message string
}

// SeriesSource fetches episode lists and builds episode playback URLs.
type SeriesSource interface {
	FetchSeriesDetail(ctx context.Context, seriesID string) indexer.Response[*catalog.SeriesDetail]
	EpisodeURL(episodeID, ext string) string
}

// Enricher looks up show-level metadata from a secondary source.
type Enricher interface {
	LookupSeries(ctx context.Context, title string) tmdb.Lookup
}

// Exporter runs export batches for one provider.
type Exporter struct {
	Provider string
	Series   SeriesSource
	Enricher Enricher // optional
	LinkExt  string
	Logger   *zap.Logger
	Progress func(Progress)

	now func() time.Time
}

// Request describes one batch. Dest is the playlist file for live batches and
// the output root directory otherwise.
type Request struct {
	Kind      catalog.Kind
	Snapshot  catalog.Snapshot
	Selection *selection.State
	Dest      string
}

// Preflight checks the pre-conditions of a batch without touching the filesystem.
func (e *Exporter) Preflight(kind catalog.Kind, sel *selection.State) error {
	if e.Provider == "" || (kind == catalog.KindSeries && e.Series == nil) {
		return ErrNoProvider
	}
	if sel == nil || sel.Len(kind) == 0 {
		return fmt.Errorf("%w for %s", ErrEmptySelection, kind)
	}
	return nil
}

// Run dispatches req to the exporter for its kind.
func (e *Exporter) Run(ctx context.Context, req Request) Report {
	switch req.Kind {
	case catalog.KindLive:
		return e.ExportLive(ctx, req.Snapshot, req.Selection, req.Dest)
	case catalog.KindMovie:
		return e.ExportMovies(ctx, req.Snapshot, req.Selection, req.Dest)
	case catalog.KindSeries:
		return e.ExportSeries(ctx, req.Snapshot, req.Selection, req.Dest)
	default:
		panic(fmt.Sprintf("export: unknown kind %d", int(req.Kind)))
	}
}

// start runs preflight and returns the report in Running or Rejected state.
func (e *Exporter) start(kind catalog.Kind, sel *selection.State, dest string) Report {
	r := Report{
		BatchID:   uuid.New(),
		Kind:      kind,
		Provider:  e.Provider,
		Dest:      dest,
		State:     StateRunning,
		StartedAt: e.clock(),
	}
	if err := e.Preflight(kind, sel); err != nil {
		r.State = StateRejected
		r.Err = err
		r.FinishedAt = r.StartedAt
		e.logger().Warn("export rejected", zap.Stringer("kind", kind), zap.Error(err))
	}
	return r
}

func (e *Exporter) finish(r *Report) {
	r.FinishedAt = e.clock()
	if r.Err != nil {
		r.State = StatePartiallyFailed
	} else {
		r.State = StateSucceeded
	}
	e.logger().Info("export finished",
		zap.String("batch", r.BatchID.String()),
		zap.Stringer("kind", r.Kind),
		zap.String("state", string(r.State)),
		zap.Int("written", r.Written),
		zap.Int("considered", r.Considered),
		zap.Int("failed", r.Failed),
		zap.Duration("elapsed", r.FinishedAt.Sub(r.StartedAt)),
	)
}

func (e *Exporter) progress(p Progress) {
	if e.Progress != nil {
		e.Progress(p)
	}
}

func (e *Exporter) linkExt() string {
	if e.LinkExt == "" {
		return DefaultLinkExt
	}
	return e.LinkExt
}

func (e *Exporter) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Exporter) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now().UTC()
}
