// Package session owns the in-memory state of one run (catalog, selection and
// active provider) and the background batches that read and replace it.
//
// Batches never mutate the session directly. They send Events; the foreground
// applies them with Apply.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/export"
	"github.com/snapetech/strmsync/internal/provider"
	"github.com/snapetech/strmsync/internal/selection"
)

// ErrNoActiveProvider is returned when an operation needs a provider and none is active.
var ErrNoActiveProvider = errors.New("session: no active provider")

// Syncer fetches a full catalog snapshot.
type Syncer interface {
	Sync(ctx context.Context, progress func(string)) catalog.Snapshot
}

// BatchRecorder is told about every finished export batch (history, metrics).
type BatchRecorder interface {
	RecordBatch(ctx context.Context, r export.Report) error
}

// Session is passed explicitly to every operation; there is no package state.
type Session struct {
	Catalog   *catalog.Catalog
	Selection *selection.State
	Registry  *provider.Registry
	Active    string
	Runner    *Runner
	Recorders []BatchRecorder
	Logger    *zap.Logger
}

// New returns a session with an empty catalog.
func New(reg *provider.Registry, sel *selection.State, active string, runner *Runner, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sel == nil {
		sel = selection.New()
	}
	return &Session{
		Catalog:   catalog.New(),
		Selection: sel,
		Registry:  reg,
		Active:    active,
		Runner:    runner,
		Logger:    logger,
	}
}

// ActiveCredentials resolves the active provider.
func (s *Session) ActiveCredentials() (provider.Credentials, error) {
	if s.Active == "" || s.Registry == nil {
		return provider.Credentials{}, ErrNoActiveProvider
	}
	creds, err := s.Registry.Credentials(s.Active)
	if err != nil {
		return provider.Credentials{}, fmt.Errorf("%w: %v", ErrNoActiveProvider, err)
	}
	return creds, nil
}

// StartFetch runs src.Sync in the background. The snapshot arrives as EventFetched.
func (s *Session) StartFetch(ctx context.Context, src Syncer) error {
	return s.Runner.Go(ClassFetch, func(emit func(Event)) {
		snap := src.Sync(ctx, func(msg string) {
			emit(Event{Type: EventProgress, Message: msg})
		})
		emit(Event{Type: EventFetched, Snapshot: &snap,
			Message: fmt.Sprintf("Live: %d | Movies: %d | Series: %d", len(snap.Live), len(snap.Movies), len(snap.Series))})
	})
}

// StartExport runs one export batch in the background against the current
// snapshot and a copy of the selection. Rejections are reported synchronously.
func (s *Session) StartExport(ctx context.Context, e *export.Exporter, kind catalog.Kind, dest string) error {
	sel := s.selectionCopy()
	if err := e.Preflight(kind, sel); err != nil {
		return err
	}
	req := export.Request{Kind: kind, Snapshot: s.Catalog.Snapshot(), Selection: sel, Dest: dest}
	return s.Runner.Go(ExportClass(kind), func(emit func(Event)) {
		prev := e.Progress
		// A copy keeps the caller's Exporter untouched while its Progress is redirected.
		ex := *e
		ex.Progress = func(p export.Progress) {
			if prev != nil {
				prev(p)
			}
			emit(Event{Type: EventProgress, Message: p.Message})
		}
		report := ex.Run(ctx, req)
		for _, rec := range s.Recorders {
			if err := rec.RecordBatch(ctx, report); err != nil {
				s.Logger.Warn("batch record failed", zap.String("batch", report.BatchID.String()), zap.Error(err))
			}
		}
		emit(Event{Type: EventExported, Report: &report, Message: report.Summary()})
	})
}

// Apply folds a background event into the session. Only the foreground calls it.
func (s *Session) Apply(ev Event) {
	if ev.Type == EventFetched && ev.Snapshot != nil {
		s.Catalog.Replace(*ev.Snapshot)
	}
}

func (s *Session) selectionCopy() *selection.State {
	return selection.FromLists(
		s.Selection.Set(catalog.KindLive),
		s.Selection.Set(catalog.KindMovie),
		s.Selection.Set(catalog.KindSeries),
	)
}

// Await consumes events, applying each and passing it to handle, until the batch
// of class c is done.
func (s *Session) Await(c Class, handle func(Event)) {
	for ev := range s.Runner.Events() {
		s.Apply(ev)
		if handle != nil {
			handle(ev)
		}
		if ev.Type == EventDone && ev.Class == c {
			return
		}
	}
}
