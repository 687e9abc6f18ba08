package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbtlens/internal/cli/output"
	"github.com/leapstack-labs/dbtlens/internal/project"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Watch bool
}

// CheckOutput is the JSON output for the check command.
type CheckOutput struct {
	Models          int      `json:"models"`
	MissingMetadata []string `json:"missing_metadata"`
	CoveragePct     float64  `json:"coverage_pct"`
	Sources         int      `json:"sources"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check models for missing metadata",
		Long: `Scan the project's SQL models and YAML metadata files and report
models that have no documentation, together with the overall metadata
coverage percentage.

The command exits non-zero when any model is missing metadata, so it can
gate CI pipelines.`,
		Example: `  # Check the current project
  dbtlens check

  # Re-run on every model or schema file change
  dbtlens check --watch

  # Machine-readable output
  dbtlens check --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			if opts.Watch {
				return watchCheck(cmd.Context(), cmdCtx)
			}
			return runCheck(cmd.Context(), cmdCtx)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run on file changes")

	return cmd
}

func runCheck(ctx context.Context, cmdCtx *CommandContext) error {
	p, err := cmdCtx.Scanner.Scan(ctx)
	if err != nil {
		return err
	}

	missing := p.MissingMetadata()
	result := CheckOutput{
		Models:          len(p.Models),
		MissingMetadata: missing,
		CoveragePct:     p.MetadataCoverage(),
		Sources:         len(p.Sources),
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(result); err != nil {
			return err
		}
	case output.ModeMarkdown:
		checkMarkdown(r, p, result)
	default:
		checkText(r, p, result)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%d of %d models are missing metadata", len(missing), len(p.Models))
	}
	return nil
}

func checkText(r *output.Renderer, p *project.Project, result CheckOutput) {
	styles := r.Styles()

	r.Header(1, "Metadata Check")
	r.Printf("Scanned %d models (%d sources declared)\n\n", result.Models, result.Sources)

	if len(result.MissingMetadata) == 0 {
		r.Success("All models have metadata")
	} else {
		r.Println(styles.Warning.Render(fmt.Sprintf("%d models missing metadata:", len(result.MissingMetadata))))
		byName := modelsByName(p)
		for _, name := range result.MissingMetadata {
			r.Printf("  %s %s\n", styles.ModelPath.Render(name), styles.Muted.Render(byName[name].Path))
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render(fmt.Sprintf("Metadata coverage: %.1f%%", result.CoveragePct)))
}

func checkMarkdown(r *output.Renderer, p *project.Project, result CheckOutput) {
	r.Println(output.FormatHeader(1, "Metadata Check"))
	r.Println("")
	r.Println(output.FormatKeyValue("Models", fmt.Sprintf("%d", result.Models)))
	r.Println(output.FormatKeyValue("Coverage", fmt.Sprintf("%.1f%%", result.CoveragePct)))
	r.Println("")

	if len(result.MissingMetadata) == 0 {
		r.Println("All models have metadata.")
		return
	}

	r.Println(output.FormatHeader(2, "Missing Metadata"))
	byName := modelsByName(p)
	for _, name := range result.MissingMetadata {
		r.Printf("- %s (`%s`)\n", name, byName[name].Path)
	}
}

func modelsByName(p *project.Project) map[string]project.Model {
	byName := make(map[string]project.Model, len(p.Models))
	for _, m := range p.Models {
		byName[m.Name] = m
	}
	return byName
}
