// Package cmd implements the shopsight CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopsight",
		Short: "Brand profile extraction service for e-commerce storefronts.",
		Long: `shopsight ingests e-commerce storefronts: it probes a shop's homepage,
scrapes its product feed, policies, FAQ and contact pages, normalizes
everything into a canonical brand profile, and reconciles that profile
into Postgres.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIngestCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
