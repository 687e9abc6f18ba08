// Package graph builds the model dependency graph and computes deterministic
// topological orderings over it. An edge A->B means B references A, so A must
// come before B in any ordering.
package graph

// Record is one scanned model: its name, whether documentation exists for it,
// and the names of models its SQL references. Refs may repeat and may name
// models that were never scanned (dangling references).
type Record struct {
	Name        string
	HasMetadata bool
	Refs        []string
}

// Node is a single model in the graph.
type Node struct {
	Name string
	// MetadataExists reports whether documentation was found for this model.
	// Nodes created only as reference targets default to false until a record
	// declares them.
	MetadataExists bool
}

// Graph is a directed dependency graph over model names. It is built once by
// Build and never mutated afterwards, so concurrent reads are safe.
type Graph struct {
	nodes map[string]*Node
	order []string // node names in insertion order

	children map[string][]string // dependency -> dependents, edge-insertion order
	parents  map[string][]string // dependent -> dependencies, edge-insertion order

	edgeCount int
}

// Build constructs a graph from scanned model records.
//
// Every record name and every referenced name becomes a node; a referenced
// name with no record of its own stays in the graph as a dangling root with
// MetadataExists=false. A record's own declaration always wins over a
// placeholder created earlier for a dangling reference, and duplicate record
// names resolve last-writer-wins. Duplicate references collapse to a single
// edge. Self-references are kept; they surface later as a cycle.
func Build(records []Record) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}

	for i, r := range records {
		if r.Name == "" {
			return nil, &InvalidRecordError{Index: i, Reason: "empty model name"}
		}

		node := g.ensureNode(r.Name)
		node.MetadataExists = r.HasMetadata

		for _, ref := range r.Refs {
			g.ensureNode(ref)
			g.addEdge(ref, r.Name)
		}
	}

	return g, nil
}

// ensureNode returns the node for name, creating it if needed.
func (g *Graph) ensureNode(name string) *Node {
	if node, ok := g.nodes[name]; ok {
		return node
	}
	node := &Node{Name: name}
	g.nodes[name] = node
	g.order = append(g.order, name)
	return node
}

// addEdge records parent -> child, skipping duplicates.
func (g *Graph) addEdge(parent, child string) {
	for _, existing := range g.parents[child] {
		if existing == parent {
			return
		}
	}
	g.children[parent] = append(g.children[parent], child)
	g.parents[child] = append(g.parents[child], parent)
	g.edgeCount++
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	node, ok := g.nodes[name]
	return node, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		nodes = append(nodes, g.nodes[name])
	}
	return nodes
}

// Parents returns the direct dependencies of a node, in the order their
// edges were first added.
func (g *Graph) Parents(name string) []string {
	return g.parents[name]
}

// Children returns the direct dependents of a node, in the order their
// edges were first added.
func (g *Graph) Children(name string) []string {
	return g.children[name]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Roots returns nodes with no dependencies, in insertion order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, name := range g.order {
		if len(g.parents[name]) == 0 {
			roots = append(roots, name)
		}
	}
	return roots
}

// Leaves returns nodes with no dependents, in insertion order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, name := range g.order {
		if len(g.children[name]) == 0 {
			leaves = append(leaves, name)
		}
	}
	return leaves
}

// Upstream returns every transitive dependency of the named node, in
// first-visited order.
func (g *Graph) Upstream(name string) []string {
	visited := make(map[string]bool)
	var result []string

	var walk func(id string)
	walk = func(id string) {
		for _, parent := range g.parents[id] {
			if !visited[parent] {
				visited[parent] = true
				result = append(result, parent)
				walk(parent)
			}
		}
	}

	walk(name)
	return result
}

// Downstream returns every transitive dependent of the named node, in
// first-visited order.
func (g *Graph) Downstream(name string) []string {
	visited := make(map[string]bool)
	var result []string

	var walk func(id string)
	walk = func(id string) {
		for _, child := range g.children[id] {
			if !visited[child] {
				visited[child] = true
				result = append(result, child)
				walk(child)
			}
		}
	}

	walk(name)
	return result
}
