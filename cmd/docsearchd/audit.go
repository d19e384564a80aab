package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcdocs/docsearch/internal/dispatcher"
)

var auditCmd = &cobra.Command{
	Use:   "audit <codename>",
	Short: "Check whether a tenant's published segment still matches its source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDispatcher(func(d *dispatcher.Dispatcher) error {
			report, err := d.TriggerAudit(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("status:               %s\n", report.Status)
			fmt.Printf("doc_count:            %d\n", report.DocCount)
			fmt.Printf("expected_fingerprint: %s\n", report.ExpectedFingerprint)
			fmt.Printf("manifest_fingerprint: %s\n", report.ManifestFingerprint)
			return nil
		})
	},
}
