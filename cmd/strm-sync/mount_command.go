package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/libraryfs"
)

func newMountCommand(a *appContext) *cobra.Command {
	var opts libraryfs.MountOptions
	cmd := &cobra.Command{
		Use:   "mount <dir>",
		Short: "Serve the selected playlist and movie links read-only over FUSE",
		Long: "Serve the selected live playlist and movie link tree from the cached catalog as a\n" +
			"read-only FUSE filesystem, without writing anything to disk. Runs until interrupted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.loadCatalog()
			if err != nil {
				return err
			}
			tree := libraryfs.Build(snap, a.selection, libraryfs.BuildOptions{
				LinkExt:      a.cfg.LinkExt,
				PlaylistName: a.cfg.PlaylistName,
			})
			srv, err := libraryfs.Mount(args[0], tree, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mounted %d files at %s; interrupt to unmount\n", tree.Files, args[0])
			go func() {
				<-cmd.Context().Done()
				if err := srv.Unmount(); err != nil {
					a.logger.Warn("unmount failed", zap.String("dir", args[0]), zap.Error(err))
				}
			}()
			srv.Wait()
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.AllowOther, "allow-other", false, "Let other users (e.g. a media server) read the mount")
	cmd.Flags().BoolVar(&opts.Debug, "fuse-debug", false, "Log FUSE requests")
	return cmd
}
