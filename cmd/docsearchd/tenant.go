package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcdocs/docsearch/internal/dispatcher"
	"github.com/arcdocs/docsearch/internal/tenant"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Inspect registered tenants directly, without a running server",
}

var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every configured tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatcher(func(d *dispatcher.Dispatcher) error {
			for _, t := range d.ListTenants() {
				fmt.Printf("%s\t%s\n", t.Codename, t.Description)
			}
			return nil
		})
	},
}

var tenantDescribeCmd = &cobra.Command{
	Use:   "describe <codename>",
	Short: "Describe one tenant's static identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatcher(func(d *dispatcher.Dispatcher) error {
			desc, err := d.DescribeTenant(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("codename:     %s\n", desc.Codename)
			fmt.Printf("display_name: %s\n", desc.DisplayName)
			fmt.Printf("description:  %s\n", desc.Description)
			fmt.Printf("source_kind:  %s\n", desc.SourceKind)
			fmt.Printf("test_queries: %v\n", desc.TestQueries)
			fmt.Printf("url_prefixes: %v\n", desc.URLPrefixes)
			return nil
		})
	},
}

var browseDepth int

var tenantBrowseCmd = &cobra.Command{
	Use:   "browse <codename> [path]",
	Short: "Browse a tenant's indexed document tree (filesystem/git sources only)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		return withDispatcher(func(d *dispatcher.Dispatcher) error {
			tree, err := d.BrowseTenant(args[0], path, browseDepth)
			if err != nil {
				return err
			}
			printBrowseEntries(tree.Entries, 0)
			return nil
		})
	},
}

func printBrowseEntries(entries []tenant.DirectoryEntry, indent int) {
	prefix := strings.Repeat("  ", indent)
	for _, e := range entries {
		if e.Kind == tenant.EntryDir {
			fmt.Printf("%s%s/\n", prefix, e.Name)
			printBrowseEntries(e.Children, indent+1)
			continue
		}
		fmt.Printf("%s%s\t%s\n", prefix, e.Name, e.Title)
	}
}

func init() {
	tenantCmd.AddCommand(tenantListCmd)
	tenantCmd.AddCommand(tenantDescribeCmd)
	tenantCmd.AddCommand(tenantBrowseCmd)
	tenantBrowseCmd.Flags().IntVar(&browseDepth, "depth", 5, "maximum depth to descend")
}
