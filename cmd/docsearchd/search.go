package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcdocs/docsearch/internal/dispatcher"
)

var searchSize int

var searchCmd = &cobra.Command{
	Use:   "search <codename> <query>",
	Short: "Run root_search against one tenant directly, without a running server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatcher(func(d *dispatcher.Dispatcher) error {
			resp, err := d.RootSearch(context.Background(), "", args[0], args[1], searchSize)
			if err != nil {
				return err
			}
			for _, hit := range resp.Results {
				fmt.Printf("%.4f\t%s\t%s\n", hit.Score, hit.URI, hit.Title)
				if hit.Snippet != "" {
					fmt.Printf("\t%s\n", hit.Snippet)
				}
			}
			return nil
		})
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchSize, "size", 10, "maximum number of results")
}
