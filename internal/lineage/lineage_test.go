package lineage

import (
	"errors"
	"strings"
	"testing"

	"github.com/leapstack-labs/dbtlens/internal/graph"
)

func mustBuild(t *testing.T, records []graph.Record) *graph.Graph {
	t.Helper()
	g, err := graph.Build(records)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return g
}

func TestDescribe_Scenario(t *testing.T) {
	g := mustBuild(t, []graph.Record{
		{Name: "customers", HasMetadata: true},
		{Name: "orders_summary", HasMetadata: false, Refs: []string{"customers"}},
	})

	desc, err := Describe(g)
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}

	want := "customers is a root node\norders_summary depends on customers\n"
	if desc.Text != want {
		t.Errorf("expected %q, got %q", want, desc.Text)
	}
}

func TestDescribe_RootLine(t *testing.T) {
	g := mustBuild(t, []graph.Record{
		{Name: "standalone", HasMetadata: true},
	})

	desc, err := Describe(g)
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}
	if desc.Text != "standalone is a root node\n" {
		t.Errorf("unexpected text: %q", desc.Text)
	}
}

func TestDescribe_DependencyLineAfterParent(t *testing.T) {
	g := mustBuild(t, []graph.Record{
		{Name: "B", Refs: []string{"A"}},
		{Name: "A"},
	})

	desc, err := Describe(g)
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}

	lines := desc.Lines()
	aIdx, bIdx := -1, -1
	for i, line := range lines {
		switch line {
		case "A is a root node":
			aIdx = i
		case "B depends on A":
			bIdx = i
		}
	}
	if aIdx == -1 || bIdx == -1 {
		t.Fatalf("missing expected lines in %v", lines)
	}
	if bIdx < aIdx {
		t.Errorf("expected B's line after A's line, got %v", lines)
	}
}

func TestDescribe_MultiParentLine(t *testing.T) {
	g := mustBuild(t, []graph.Record{
		{Name: "A"},
		{Name: "B"},
		{Name: "C", Refs: []string{"A", "B"}},
	})

	desc, err := Describe(g)
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}
	if !strings.Contains(desc.Text, "C depends on A, B\n") {
		t.Errorf("expected multi-parent line with both names once, got %q", desc.Text)
	}
}

func TestDescribe_Deterministic(t *testing.T) {
	records := []graph.Record{
		{Name: "mart", Refs: []string{"stg_orders", "stg_customers"}},
		{Name: "stg_orders", Refs: []string{"raw_orders"}},
		{Name: "stg_customers", Refs: []string{"raw_customers"}},
	}

	first, err := Describe(mustBuild(t, records))
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		desc, err := Describe(mustBuild(t, records))
		if err != nil {
			t.Fatalf("describe failed: %v", err)
		}
		if desc.Text != first.Text {
			t.Fatalf("output not byte-identical across runs:\n%q\nvs\n%q", first.Text, desc.Text)
		}
	}
}

func TestDescribe_DanglingReference(t *testing.T) {
	g := mustBuild(t, []graph.Record{
		{Name: "B", HasMetadata: true, Refs: []string{"X"}},
	})

	desc, err := Describe(g)
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}
	if !strings.Contains(desc.Text, "X is a root node\n") {
		t.Errorf("expected dangling reference X as root node, got %q", desc.Text)
	}

	node, ok := g.Node("X")
	if !ok || node.MetadataExists {
		t.Error("expected dangling node X with MetadataExists=false")
	}
}

func TestDescribe_Cycle(t *testing.T) {
	g := mustBuild(t, []graph.Record{
		{Name: "A", Refs: []string{"B"}},
		{Name: "B", Refs: []string{"A"}},
	})

	desc, err := Describe(g)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if desc != nil {
		t.Errorf("expected no partial description, got %+v", desc)
	}

	var cycle *graph.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %T", err)
	}
}

func TestDescription_Lines(t *testing.T) {
	d := &Description{Text: "a is a root node\nb depends on a\n"}
	lines := d.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}

	empty := &Description{}
	if empty.Lines() != nil {
		t.Errorf("expected nil lines for empty description")
	}
}
