// Command strm-sync exports an Xtream provider catalog as a live playlist and a
// .strm link tree for media servers.
//
//	provider  Manage provider accounts (list, add, remove, check, use)
//	fetch     Download the active provider's catalog into the local cache
//	groups    List the groups of one kind with item counts and selection marks
//	select    Edit the selected groups per kind
//	export    Write the playlist (live) or the link tree (movies, series)
//	history   Show recent export batches
//	mount     Serve the selected library read-only over FUSE (linux)
//	prefs     Metadata key and language
//	config    Show or create the configuration file
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
