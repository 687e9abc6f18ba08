package graph

import (
	"fmt"
	"strings"
)

// InvalidRecordError reports a malformed input record. The graph is not
// partially built when this is returned.
type InvalidRecordError struct {
	Index  int
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid model record at index %d: %s", e.Index, e.Reason)
}

// CycleError reports that the graph has no topological ordering. Path holds
// one reconstructed cycle, starting and ending at the same node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}
