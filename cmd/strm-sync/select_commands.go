package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snapetech/strmsync/internal/catalog"
)

func newSelectCommand(a *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Edit the selected groups",
	}
	cmd.AddCommand(newSelectAddCommand(a))
	cmd.AddCommand(newSelectRemoveCommand(a))
	cmd.AddCommand(newSelectClearCommand(a))
	cmd.AddCommand(newSelectListCommand(a))
	cmd.AddCommand(newSelectPruneCommand(a))
	return cmd
}

func newSelectAddCommand(a *appContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "add <kind> [group...]",
		Short: "Select groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			groups := args[1:]
			out := cmd.OutOrStdout()
			if all {
				snap, err := a.loadCatalog()
				if err != nil {
					return err
				}
				groups = snap.Groups(kind)
			} else if len(groups) == 0 {
				return errors.New("name at least one group, or pass --all")
			} else if snap, err := a.loadCatalog(); err == nil {
				known := make(map[string]bool)
				for _, g := range snap.Groups(kind) {
					known[g] = true
				}
				for _, g := range groups {
					if !known[strings.TrimSpace(g)] {
						fmt.Fprintf(out, "Warning: %q is not a %s group in the cached catalog\n", g, kind)
					}
				}
			}
			a.selection.Select(kind, groups...)
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d %s groups selected\n", a.selection.Len(kind), kind)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Select every group of the kind in the cached catalog")
	return cmd
}

func newSelectRemoveCommand(a *appContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <kind> <group...>",
		Aliases: []string{"rm"},
		Short:   "Deselect groups",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			a.selection.Deselect(kind, args[1:]...)
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s groups selected\n", a.selection.Len(kind), kind)
			return nil
		},
	}
}

func newSelectClearCommand(a *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <kind>",
		Short: "Deselect every group of a kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			a.selection.Clear(kind)
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s selection\n", kind)
			return nil
		},
	}
}

func newSelectListCommand(a *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list [kind]",
		Short: "Show the selected groups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := kindsFromArgs(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, kind := range kinds {
				groups := a.selection.Set(kind)
				fmt.Fprintf(out, "%s (%d)\n", kind, len(groups))
				for _, g := range groups {
					fmt.Fprintf(out, "  %s\n", g)
				}
			}
			return nil
		},
	}
}

func newSelectPruneCommand(a *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune [kind]",
		Short: "Drop selected groups that the cached catalog no longer has",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := kindsFromArgs(args)
			if err != nil {
				return err
			}
			snap, err := a.loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			total := 0
			for _, kind := range kinds {
				for _, g := range a.selection.Prune(kind, snap.Groups(kind)) {
					fmt.Fprintf(out, "Dropped %s group %q\n", kind, g)
					total++
				}
			}
			if total == 0 {
				fmt.Fprintln(out, "Nothing to prune")
				return nil
			}
			return a.save()
		},
	}
}

func kindsFromArgs(args []string) ([]catalog.Kind, error) {
	if len(args) == 0 {
		return catalog.Kinds, nil
	}
	kind, err := catalog.ParseKind(args[0])
	if err != nil {
		return nil, err
	}
	return []catalog.Kind{kind}, nil
}
