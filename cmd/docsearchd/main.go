// Package main is the docsearchd entry point: a cobra-based CLI with a
// serve subcommand that runs the HTTP API, plus direct-mode debug
// subcommands (tenant, sync, audit, search) that drive the dispatcher
// in-process without a running server, for operators on the box.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "docsearchd",
	Short:   "Multi-tenant documentation search service",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "/etc/docsearchd/config.yaml", "config file path")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tenantCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
