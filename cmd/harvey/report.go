package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/harvey/internal/config"
	"github.com/nao1215/harvey/internal/database"
	"github.com/nao1215/harvey/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [NAME]",
		Short: "Print the report of the latest investigation",
		Long: `Report renders a stored investigation again, in any report format.

Without a name the most recent investigation of anyone is shown.

Examples:
  # Show the latest investigation
  harvey report

  # Show the latest investigation of a person as HTML
  harvey report -f html -o jane.html "Jane Doe"

  # Save a timestamped CSV artifact of the latest investigation
  harvey report -f csv --save`,
		Args: cobra.ArbitraryArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("format", "f", config.FormatText,
		"Report format: "+strings.Join(config.Formats(), ", "))
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path")
	cmd.Flags().BoolP("save", "s", false,
		"Save a timestamped report artifact to the report directory")
	cmd.Flags().String("report-dir", config.ReportsDir(),
		"Directory for saved report artifacts")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if !config.ValidFormat(format) {
		return config.ErrInvalidFormat
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return err
	}
	reportDir, err := cmd.Flags().GetString("report-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir(cmd), database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), report.NoDataMessage)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	target := strings.Join(normalizeTargets(args), " ")
	inv, err := db.LatestInvestigation(cmd.Context(), target)
	if err != nil {
		return err
	}
	if inv == nil {
		fmt.Fprintln(cmd.OutOrStdout(), report.NoDataMessage)
		return nil
	}

	output, closeOutput, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = closeOutput() }()

	writer, err := report.NewWriter(format, output, getVersion())
	if err != nil {
		return err
	}
	if _, err := writer.Write(inv); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := closeOutput(); err != nil {
		return err
	}

	if save {
		path, err := report.NewStore(reportDir, getVersion()).Save(inv, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report saved: %s\n", path)
	}
	return nil
}
