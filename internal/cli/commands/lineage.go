package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbtlens/internal/cli/output"
	"github.com/leapstack-labs/dbtlens/internal/graph"
	"github.com/leapstack-labs/dbtlens/internal/lineage"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	Upstream   bool
	Downstream bool
	Depth      int
}

// LineageOutput is the JSON output for the whole-project lineage.
type LineageOutput struct {
	Order []string      `json:"order"`
	Lines []string      `json:"lines"`
	Nodes []LineageNode `json:"nodes"`
}

// LineageNode is one model in the lineage JSON output.
type LineageNode struct {
	Name           string   `json:"name"`
	MetadataExists bool     `json:"metadata_exists"`
	DependsOn      []string `json:"depends_on,omitempty"`
}

// ModelLineageOutput is the JSON output for single-model lineage.
type ModelLineageOutput struct {
	Model      string   `json:"model"`
	Upstream   []string `json:"upstream,omitempty"`
	Downstream []string `json:"downstream,omitempty"`
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}

	cmd := &cobra.Command{
		Use:   "lineage [model]",
		Short: "Show model lineage",
		Long: `Display the dependency lineage of the project's models.

Without arguments, prints one line per model in dependency order stating
its direct dependencies (or that it is a root node). With a model name,
shows that model's upstream dependencies and downstream dependents.`,
		Example: `  # Full project lineage
  dbtlens lineage

  # Lineage for one model
  dbtlens lineage customer_orders

  # Only upstream, two levels deep
  dbtlens lineage customer_orders --downstream=false --depth 2

  # Output as JSON
  dbtlens lineage --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			if len(args) == 1 {
				return runModelLineage(cmd, cmdCtx, args[0], opts)
			}
			return runProjectLineage(cmd, cmdCtx)
		},
	}

	cmd.Flags().BoolVar(&opts.Upstream, "upstream", true, "Include upstream dependencies")
	cmd.Flags().BoolVar(&opts.Downstream, "downstream", true, "Include downstream dependents")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "Max traversal depth (0 = unlimited)")

	return cmd
}

func runProjectLineage(cmd *cobra.Command, cmdCtx *CommandContext) error {
	_, g, err := cmdCtx.scanAndBuild(cmd.Context())
	if err != nil {
		return err
	}

	desc, err := lineage.Describe(g)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(buildLineageOutput(g, desc))
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Lineage"))
		r.Println("")
		r.Println("```")
		r.Printf("%s", desc.Text)
		r.Println("```")
		return nil
	default:
		r.Printf("%s", desc.Text)
		return nil
	}
}

func buildLineageOutput(g *graph.Graph, desc *lineage.Description) LineageOutput {
	out := LineageOutput{
		Order: desc.Order,
		Lines: desc.Lines(),
		Nodes: make([]LineageNode, 0, len(desc.Order)),
	}
	for _, name := range desc.Order {
		node, _ := g.Node(name)
		out.Nodes = append(out.Nodes, LineageNode{
			Name:           name,
			MetadataExists: node.MetadataExists,
			DependsOn:      g.Parents(name),
		})
	}
	return out
}

func runModelLineage(cmd *cobra.Command, cmdCtx *CommandContext, model string, opts *LineageOptions) error {
	_, g, err := cmdCtx.scanAndBuild(cmd.Context())
	if err != nil {
		return err
	}

	if _, ok := g.Node(model); !ok {
		return fmt.Errorf("model not found: %s", model)
	}

	var upstream, downstream []string
	if opts.Upstream {
		upstream = withDepth(g.Parents, model, opts.Depth, g.Upstream)
	}
	if opts.Downstream {
		downstream = withDepth(g.Children, model, opts.Depth, g.Downstream)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ModelLineageOutput{Model: model, Upstream: upstream, Downstream: downstream})
	}

	r.Printf("Lineage for: %s\n\n", model)
	if opts.Upstream {
		r.Printf("Upstream dependencies (%d):\n", len(upstream))
		for _, name := range upstream {
			r.Printf("  - %s\n", name)
		}
		r.Println("")
	}
	if opts.Downstream {
		r.Printf("Downstream dependents (%d):\n", len(downstream))
		for _, name := range downstream {
			r.Printf("  - %s\n", name)
		}
	}
	return nil
}

// withDepth traverses via step (Parents or Children) up to maxDepth levels,
// or delegates to the full traversal when depth is unlimited.
func withDepth(step func(string) []string, start string, maxDepth int, full func(string) []string) []string {
	if maxDepth == 0 {
		return full(start)
	}

	visited := make(map[string]bool)
	var result []string

	var traverse func(id string, depth int)
	traverse = func(id string, depth int) {
		if depth > maxDepth {
			return
		}
		for _, next := range step(id) {
			if !visited[next] {
				visited[next] = true
				result = append(result, next)
				traverse(next, depth+1)
			}
		}
	}

	traverse(start, 1)
	return result
}
