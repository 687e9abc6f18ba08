package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbtlens/internal/lineage"
	"github.com/leapstack-labs/dbtlens/internal/report"
)

// ReportOptions holds options for the report command.
type ReportOptions struct {
	Out   string
	Title string
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an HTML project report",
		Long: `Scan the project and write a standalone HTML report: the model
inventory with missing-metadata flags, metadata coverage, and the full
lineage description.`,
		Example: `  # Write the report to the default location
  dbtlens report

  # Choose the output file and title
  dbtlens report --out docs/report.html --title "Shop Warehouse"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file (default: dbtlens-report.html)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "Report title")

	return cmd
}

func runReport(cmd *cobra.Command, opts *ReportOptions) error {
	cmdCtx := NewCommandContext(cmd)

	p, g, err := cmdCtx.scanAndBuild(cmd.Context())
	if err != nil {
		return err
	}

	desc, err := lineage.Describe(g)
	if err != nil {
		return err
	}

	out := cmdCtx.Cfg.Report.Out
	if opts.Out != "" {
		out = opts.Out
	}
	title := cmdCtx.Cfg.Report.Title
	if opts.Title != "" {
		title = opts.Title
	}

	f, err := os.Create(out) //nolint:gosec // G304: user-chosen output path
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := report.Render(f, report.Data{
		Title:       title,
		GeneratedAt: time.Now(),
		Project:     p,
		Lineage:     desc,
	}); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("Report written to %s", out))
	return nil
}
