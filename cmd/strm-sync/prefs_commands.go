package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/snapetech/strmsync/internal/state"
)

func newPrefsCommand(a *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the metadata key and language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := "not set"
			if a.state.TMDBAPIKey != "" {
				key = "set"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "TMDB API key: %s\n", key)
			fmt.Fprintf(out, "Language:     %s\n", a.state.Language)
			fmt.Fprintf(out, "Provider:     %s\n", a.activeProvider())
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "tmdb-key <key>",
		Short: `Set the TMDB API key used to enrich series ("" disables enrichment)`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.state.TMDBAPIKey = strings.TrimSpace(args[0])
			return a.save()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "language <tag>",
		Short: "Set the metadata language (BCP 47, e.g. nl-NL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := language.Parse(args[0]); err != nil {
				return fmt.Errorf("language %q: %w", args[0], err)
			}
			a.state.Language = state.CanonicalLanguage(args[0])
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Language: %s\n", a.state.Language)
			return nil
		},
	})
	return cmd
}
