package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/export"
	"github.com/snapetech/strmsync/internal/httpclient"
	"github.com/snapetech/strmsync/internal/libraryfs"
	"github.com/snapetech/strmsync/internal/session"
	"github.com/snapetech/strmsync/internal/tmdb"
)

// seriesDir is the default series root under output_dir.
const seriesDir = "Series"

func newExportCommand(a *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the playlist or the link tree for one kind",
	}
	for _, kind := range catalog.Kinds {
		cmd.AddCommand(newExportKindCommand(a, kind))
	}
	return cmd
}

func newExportKindCommand(a *appContext, kind catalog.Kind) *cobra.Command {
	var dest string
	use, short := "live", "Write the selected live channels to an M3U playlist"
	switch kind {
	case catalog.KindMovie:
		use, short = "movies", "Write .strm links for the selected movie groups"
	case catalog.KindSeries:
		use, short = "series", "Write .strm links and .nfo files for the selected series groups"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(dest) == "" {
				dest = a.defaultDest(kind)
			}
			return a.runExport(cmd, kind, dest)
		},
	}
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Playlist file (live) or output root (movies, series)")
	return cmd
}

func (a *appContext) defaultDest(kind catalog.Kind) string {
	switch kind {
	case catalog.KindLive:
		return a.cfg.PlaylistPath()
	case catalog.KindMovie:
		return filepath.Join(a.cfg.OutputDir, libraryfs.MoviesDir)
	case catalog.KindSeries:
		return filepath.Join(a.cfg.OutputDir, seriesDir)
	default:
		panic(fmt.Sprintf("unknown kind %d", int(kind)))
	}
}

func (a *appContext) runExport(cmd *cobra.Command, kind catalog.Kind, dest string) error {
	ctx := cmd.Context()
	snap, err := a.loadCatalog()
	if err != nil {
		return err
	}
	sess := a.newSession()
	sess.Catalog.Replace(snap)

	ex := &export.Exporter{
		LinkExt: a.cfg.LinkExt,
		Logger:  a.logger.Named("export"),
	}
	if creds, err := sess.ActiveCredentials(); err == nil {
		ex.Provider = creds.Name
		if snap.Provider != "" && snap.Provider != creds.Name {
			a.logger.Warn("cached catalog was fetched from another provider",
				zap.String("catalog", snap.Provider), zap.String("active", creds.Name))
		}
		if kind == catalog.KindSeries {
			client, err := a.catalogClient(creds)
			if err != nil {
				return err
			}
			ex.Series = client
			if key := a.state.TMDBAPIKey; key != "" {
				ex.Enricher = tmdb.FromKey(key, a.cfg.TMDBBaseURL, a.state.Language, a.logger.Named("tmdb"),
					tmdb.WithHTTPClient(httpclient.WithTimeout(a.cfg.MetadataTimeoutDuration())))
			}
		}
	}

	recs, closeRecs := a.recorders(ctx)
	defer closeRecs()
	sess.Recorders = recs

	if err := sess.StartExport(ctx, ex, kind, dest); err != nil {
		return fmt.Errorf("%s export not started: %w", kind, err)
	}
	out := cmd.OutOrStdout()
	var report *export.Report
	sess.Await(session.ExportClass(kind), func(ev session.Event) {
		printEvent(out, ev)
		if ev.Report != nil {
			report = ev.Report
		}
	})
	if report == nil {
		return fmt.Errorf("%s export did not finish", kind)
	}
	if report.State == export.StatePartiallyFailed {
		return fmt.Errorf("%s export: %w", kind, report.Err)
	}
	return nil
}
