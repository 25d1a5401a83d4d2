package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/metrics"
	"github.com/snapetech/strmsync/internal/session"
)

func newFetchCommand(a *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the active provider's catalog",
		Long: "Download the active provider's categories, live channels, movies and series and\n" +
			"replace the cached catalog with them. Episodes are fetched later, per series, on export.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := a.newSession()
			creds, err := sess.ActiveCredentials()
			if err != nil {
				return err
			}
			client, err := a.catalogClient(creds)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := sess.StartFetch(cmd.Context(), client); err != nil {
				return err
			}
			sess.Await(session.ClassFetch, func(ev session.Event) { printEvent(out, ev) })

			snap := sess.Catalog.Snapshot()
			if err := sess.Catalog.Save(a.cfg.CatalogCachePath); err != nil {
				return err
			}
			if err := metrics.New(a.cfg.MetricsTextfile).ObserveSnapshot(snap); err != nil {
				a.logger.Warn("metrics textfile not written", zap.Error(err))
			}
			for _, kind := range catalog.Kinds {
				if stale := a.selection.Stale(kind, snap.Groups(kind)); len(stale) > 0 {
					fmt.Fprintf(out, "%d selected %s groups are not in this catalog (see `strm-sync select prune %s`)\n",
						len(stale), kind, kind)
				}
			}
			a.state.LastProvider = creds.Name
			return a.save()
		},
	}
}

// printEvent renders a background event for the operator.
func printEvent(out io.Writer, ev session.Event) {
	switch ev.Type {
	case session.EventProgress, session.EventFetched, session.EventExported:
		if ev.Message != "" {
			fmt.Fprintln(out, ev.Message)
		}
	case session.EventAlert:
		fmt.Fprintf(out, "Error: %s\n", ev.Message)
	}
}
