// Package lineage renders a human-readable lineage description for a model
// dependency graph: one line per model in topological order, stating either
// its direct dependencies or that it is a root node.
package lineage

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/dbtlens/internal/graph"
)

// Description is the rendered lineage for a graph.
type Description struct {
	// Text is the full description: one line per node, newline-terminated.
	Text string
	// Order is the topological ordering the lines follow.
	Order []string
}

// Lines splits the description text into its individual lines.
func (d *Description) Lines() []string {
	if d.Text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
}

// Describe renders the lineage description for g. The output depends only on
// the graph contents: nodes appear in a deterministic topological order and
// parent lists keep edge-insertion order. Returns a *graph.CycleError with no
// partial text if the graph has no valid ordering.
func Describe(g *graph.Graph) (*Description, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, name := range order {
		parents := g.Parents(name)
		if len(parents) > 0 {
			fmt.Fprintf(&b, "%s depends on %s\n", name, strings.Join(parents, ", "))
		} else {
			fmt.Fprintf(&b, "%s is a root node\n", name)
		}
	}

	return &Description{Text: b.String(), Order: order}, nil
}
