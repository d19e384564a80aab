package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcdocs/docsearch/internal/dispatcher"
)

var (
	forceCrawler bool
	forceFull    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync <codename>",
	Short: "Trigger a sync for one tenant and report the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatcher(func(d *dispatcher.Dispatcher) error {
			result, err := d.TriggerSync(context.Background(), args[0], forceCrawler, forceFull)
			if err != nil {
				return err
			}
			fmt.Printf("status: %s\n", result.Status)
			if result.LockStatus != "" {
				fmt.Printf("lock_status: %s\n", result.LockStatus)
			}
			return nil
		})
	},
}

func init() {
	syncCmd.Flags().BoolVar(&forceCrawler, "force-crawler", false, "passed through to the tenant's sync runtime; none of the bundled runtimes acts on it")
	syncCmd.Flags().BoolVar(&forceFull, "force-full", false, "rebuild even if the last sync is within the refresh interval")
}
