package graph

// TopologicalSort returns all node names ordered so every dependency comes
// before its dependents. Kahn's algorithm with the ready queue processed in
// node-insertion order, so the result is reproducible for a given input.
// Returns a *CycleError if the graph has no valid ordering; no partial
// ordering is returned in that case.
func (g *Graph) TopologicalSort() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for _, name := range g.order {
		indegree[name] = len(g.parents[name])
	}

	var queue []string
	for _, name := range g.order {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		for _, child := range g.children[name] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, &CycleError{Path: g.findCycle(indegree)}
	}

	return result, nil
}

// findCycle reconstructs one cycle among nodes that still have unresolved
// dependencies after Kahn's algorithm stalls.
func (g *Graph) findCycle(indegree map[string]int) []string {
	remaining := make(map[string]bool)
	for _, name := range g.order {
		if indegree[name] > 0 {
			remaining[name] = true
		}
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string
	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, child := range g.children[id] {
			if !remaining[child] {
				continue
			}
			if !visited[child] {
				cameFrom[child] = id
				if dfs(child) {
					return true
				}
			} else if onStack[child] {
				cycle = []string{child}
				for curr := id; curr != child; curr = cameFrom[curr] {
					cycle = append([]string{curr}, cycle...)
				}
				cycle = append([]string{child}, cycle...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, name := range g.order {
		if remaining[name] && !visited[name] {
			if dfs(name) {
				return cycle
			}
		}
	}
	return nil
}

// Levels groups nodes by dependency depth: level 0 holds nodes with no
// dependencies, level N nodes whose deepest dependency sits at level N-1.
// Nodes within a level keep insertion order. Returns a *CycleError for
// cyclic graphs.
func (g *Graph) Levels() ([][]string, error) {
	if _, err := g.TopologicalSort(); err != nil {
		return nil, err
	}

	depth := make(map[string]int)
	var levelOf func(id string) int
	levelOf = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}

		max := -1
		for _, parent := range g.parents[id] {
			if d := levelOf(parent); d > max {
				max = d
			}
		}

		depth[id] = max + 1
		return max + 1
	}

	maxLevel := 0
	for _, name := range g.order {
		if d := levelOf(name); d > maxLevel {
			maxLevel = d
		}
	}

	levels := make([][]string, maxLevel+1)
	for _, name := range g.order {
		d := depth[name]
		levels[d] = append(levels[d], name)
	}

	return levels, nil
}
