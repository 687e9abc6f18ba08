package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbtlens/internal/cli/output"
	"github.com/leapstack-labs/dbtlens/internal/graph"
)

// DAGOutput is the JSON output for the dag command.
type DAGOutput struct {
	Levels      []DAGLevel `json:"levels"`
	TotalModels int        `json:"total_models"`
	TotalEdges  int        `json:"total_edges"`
	Roots       []string   `json:"roots"`
	Leaves      []string   `json:"leaves"`
}

// DAGLevel groups models at the same dependency depth.
type DAGLevel struct {
	Level  int       `json:"level"`
	Models []DAGNode `json:"models"`
}

// DAGNode is one model in the DAG JSON output.
type DAGNode struct {
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on,omitempty"`
	UsedBy    []string `json:"used_by,omitempty"`
}

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dag",
		Short: "Show the dependency graph",
		Long: `Display the dependency graph (DAG) of all models.

Models are grouped by dependency level: level 0 holds root models and
dangling references, level N models whose deepest dependency sits at
level N-1.`,
		Example: `  # Show the DAG
  dbtlens dag

  # Output as JSON
  dbtlens dag --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDAG(cmd)
		},
	}
}

func runDAG(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)

	_, g, err := cmdCtx.scanAndBuild(cmd.Context())
	if err != nil {
		return err
	}

	levels, err := g.Levels()
	if err != nil {
		return fmt.Errorf("failed to compute dependency levels: %w", err)
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return dagJSON(r, g, levels)
	case output.ModeMarkdown:
		return dagMarkdown(r, g, levels)
	default:
		return dagText(r, g, levels)
	}
}

func dagText(r *output.Renderer, g *graph.Graph, levels [][]string) error {
	styles := r.Styles()

	r.Header(1, "Dependency Graph")
	r.Println("")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, name := range level {
			deps := g.Parents(name)
			children := g.Children(name)

			r.Printf("  %s\n", styles.ModelPath.Render(name))
			if len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(deps, ", "))
			}
			if len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d models, %d dependencies", g.NodeCount(), g.EdgeCount())))
	return nil
}

func dagMarkdown(r *output.Renderer, g *graph.Graph, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Dependency Graph"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Roots)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, name := range level {
			deps := g.Parents(name)
			children := g.Children(name)

			r.Printf("- %s\n", name)
			if len(deps) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
			}
			if len(children) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(children, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Models", fmt.Sprintf("%d", g.NodeCount())))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", g.EdgeCount())))
	return nil
}

func dagJSON(r *output.Renderer, g *graph.Graph, levels [][]string) error {
	dagOutput := DAGOutput{
		Levels:      make([]DAGLevel, 0, len(levels)),
		TotalModels: g.NodeCount(),
		TotalEdges:  g.EdgeCount(),
		Roots:       g.Roots(),
		Leaves:      g.Leaves(),
	}

	for i, level := range levels {
		dagLevel := DAGLevel{Level: i, Models: make([]DAGNode, 0, len(level))}
		for _, name := range level {
			dagLevel.Models = append(dagLevel.Models, DAGNode{
				Name:      name,
				DependsOn: g.Parents(name),
				UsedBy:    g.Children(name),
			})
		}
		dagOutput.Levels = append(dagOutput.Levels, dagLevel)
	}

	return r.JSON(dagOutput)
}
