package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/snapetech/strmsync/internal/catalog"
)

func newGroupsCommand(a *appContext) *cobra.Command {
	var selectedOnly bool
	cmd := &cobra.Command{
		Use:   "groups <live|movies|series>",
		Short: "List the groups of one kind in the cached catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			snap, err := a.loadCatalog()
			if err != nil {
				return err
			}
			counts := groupCounts(snap, kind)
			rows := make([][]string, 0, len(counts))
			for _, g := range snap.Groups(kind) {
				selected := a.selection.Contains(kind, g)
				if selectedOnly && !selected {
					continue
				}
				rows = append(rows, []string{mark(selected), g, strconv.Itoa(counts[g])})
			}
			for _, g := range a.selection.Stale(kind, snap.Groups(kind)) {
				rows = append(rows, []string{"!", g, "-"})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"", "Group", "Items"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
			fmt.Fprintf(out, "%d of %d %s groups selected\n", a.selection.Len(kind), len(counts), kind)
			return nil
		},
	}
	cmd.Flags().BoolVar(&selectedOnly, "selected", false, "Only show selected groups")
	return cmd
}

func mark(selected bool) string {
	if selected {
		return "*"
	}
	return ""
}

func groupCounts(snap catalog.Snapshot, kind catalog.Kind) map[string]int {
	counts := make(map[string]int)
	switch kind {
	case catalog.KindLive:
		for _, it := range snap.Live {
			counts[it.Group]++
		}
	case catalog.KindMovie:
		for _, it := range snap.Movies {
			counts[it.Group]++
		}
	case catalog.KindSeries:
		for _, it := range snap.Series {
			counts[it.Group]++
		}
	default:
		panic(fmt.Sprintf("unknown kind %d", int(kind)))
	}
	return counts
}
