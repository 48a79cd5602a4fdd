package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for harvey.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvey",
		Short: "Build a professional snapshot of a person from public sources",
		Long: `harvey aggregates public professional information about a person.

It searches LinkedIn profiles through search engine footprints, scrapes the
public profile pages, looks the person up on GitHub and reconciles the
results into one snapshot. A LinkedIn URL published on the GitHub profile
validates the LinkedIn identity.

Only public pages and the public GitHub API are queried.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory holding the investigation database (default: XDG data directory)")

	cmd.AddCommand(NewInvestigateCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewAuthCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
