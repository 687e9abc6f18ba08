package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbtlens/internal/cli/output"
	"github.com/leapstack-labs/dbtlens/internal/manifest"
)

// CoverageOptions holds options for the coverage command.
type CoverageOptions struct {
	ManifestPath string
}

// NewCoverageCommand creates the coverage command.
func NewCoverageCommand() *cobra.Command {
	opts := &CoverageOptions{}

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Report documentation and test coverage from a dbt manifest",
		Long: `Read an existing target/manifest.json and report per-model column
documentation coverage and test coverage. Tests are classified as
not_null, unique, relationships, accepted_values, or custom.

The manifest must already exist; dbtlens never runs dbt.`,
		Example: `  # Use the default target/manifest.json
  dbtlens coverage

  # Point at a specific manifest
  dbtlens coverage --manifest build/manifest.json

  # Output as JSON
  dbtlens coverage --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCoverage(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ManifestPath, "manifest", "", "Path to manifest.json (default: target/manifest.json)")

	return cmd
}

func runCoverage(cmd *cobra.Command, opts *CoverageOptions) error {
	cmdCtx := NewCommandContext(cmd)

	path := cmdCtx.Cfg.ManifestPath
	if opts.ManifestPath != "" {
		path = opts.ManifestPath
	}

	m, err := manifest.Load(path)
	if err != nil {
		return err
	}
	analysis := m.Analyze()

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(analysis)
	case output.ModeMarkdown:
		return coverageTable(r, analysis, true)
	default:
		return coverageTable(r, analysis, false)
	}
}

func coverageTable(r *output.Renderer, a *manifest.Analysis, markdown bool) error {
	if markdown {
		r.Println(output.FormatHeader(1, "Coverage"))
		r.Println("")
	} else {
		r.Header(1, "Coverage")
		r.Println("")
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "Described", "Columns", "Documented", "Tests"})

	for _, mc := range a.Models {
		described := "no"
		if mc.Described {
			described = "yes"
		}
		t.AppendRow(table.Row{mc.Name, described, mc.Columns, mc.DocumentedColumns, mc.Tests})
	}

	if markdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}

	r.Println("")
	r.Printf("Column documentation: %.1f%%\n", a.ColumnCoveragePct)
	r.Printf("Models with tests:    %.1f%%\n", a.TestCoveragePct)

	if len(a.TestCounts) > 0 {
		r.Println("")
		r.Println("Tests by type:")
		for _, testType := range []string{
			manifest.TestNotNull, manifest.TestUnique, manifest.TestRelationships,
			manifest.TestAcceptedValues, manifest.TestCustom,
		} {
			if count := a.TestCounts[testType]; count > 0 {
				r.Printf("  %-16s %s\n", testType, fmt.Sprintf("%d", count))
			}
		}
	}

	return nil
}
