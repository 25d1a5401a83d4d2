package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags globalFlags
	app := newAppContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "strm-sync",
		Short:         "Sync an IPTV provider catalog into a playlist and .strm library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			return app.load(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Optional KEY=value file loaded before the environment is read")
	pf.StringVarP(&flags.provider, "provider", "p", "", "Provider to use instead of the last used one")

	rootCmd.AddCommand(newProviderCommand(app))
	rootCmd.AddCommand(newFetchCommand(app))
	rootCmd.AddCommand(newGroupsCommand(app))
	rootCmd.AddCommand(newSelectCommand(app))
	rootCmd.AddCommand(newExportCommand(app))
	rootCmd.AddCommand(newHistoryCommand(app))
	rootCmd.AddCommand(newMountCommand(app))
	rootCmd.AddCommand(newPrefsCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
