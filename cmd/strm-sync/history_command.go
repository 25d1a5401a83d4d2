package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapetech/strmsync/internal/history"
)

func newHistoryCommand(a *appContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent export batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.HistoryDB == "" {
				return errors.New("history_db is not configured")
			}
			store, err := history.Open(cmd.Context(), a.cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()
			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No export batches recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, historyRow(e))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Batch", "Kind", "Provider", "State", "Written", "Considered", "Failed", "Started", "Took"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of batches to show")
	return cmd
}

func historyRow(e history.Entry) []string {
	id := e.BatchID
	if len(id) > 8 {
		id = id[:8]
	}
	state := e.State
	if e.Error != "" {
		state += ": " + e.Error
	}
	return []string{
		id,
		e.Kind,
		e.Provider,
		state,
		strconv.Itoa(e.Written),
		strconv.Itoa(e.Considered),
		strconv.Itoa(e.Failed),
		e.StartedAt.Local().Format(time.DateTime),
		e.FinishedAt.Sub(e.StartedAt).Round(time.Millisecond).String(),
	}
}
