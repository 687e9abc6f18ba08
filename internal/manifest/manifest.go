// Package manifest reads an existing dbt target/manifest.json and computes
// documentation and test coverage statistics. It only parses a file the user
// already has; it never invokes dbt.
package manifest

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Known generic test types; anything else is counted as custom.
const (
	TestNotNull        = "not_null"
	TestUnique         = "unique"
	TestRelationships  = "relationships"
	TestAcceptedValues = "accepted_values"
	TestCustom         = "custom"
)

// Manifest is the subset of a dbt manifest we read.
type Manifest struct {
	Nodes map[string]ManifestNode `json:"nodes"`
}

// ManifestNode is one entry in the manifest's node map. Model nodes carry
// columns; test nodes carry test metadata and the models they attach to.
type ManifestNode struct {
	ResourceType string            `json:"resource_type"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Columns      map[string]Column `json:"columns"`
	TestMetadata *TestMetadata     `json:"test_metadata"`
	DependsOn    DependsOn         `json:"depends_on"`
}

// Column is a documented (or not) model column.
type Column struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TestMetadata identifies the generic test a test node instantiates. Singular
// (SQL file) tests have none.
type TestMetadata struct {
	Name string `json:"name"`
}

// DependsOn lists the manifest nodes a test depends on.
type DependsOn struct {
	Nodes []string `json:"nodes"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// ModelCoverage is the per-model slice of an Analysis.
type ModelCoverage struct {
	Name              string         `json:"name"`
	Described         bool           `json:"described"`
	Columns           int            `json:"columns"`
	DocumentedColumns int            `json:"documented_columns"`
	Tests             int            `json:"tests"`
	TestsByType       map[string]int `json:"tests_by_type,omitempty"`
}

// Analysis summarizes documentation and test coverage across a manifest.
type Analysis struct {
	Models []ModelCoverage `json:"models"`

	// ColumnCoveragePct is documented columns over all columns, percent.
	ColumnCoveragePct float64 `json:"column_coverage_pct"`
	// TestCoveragePct is models with at least one test over all models.
	TestCoveragePct float64 `json:"test_coverage_pct"`
	// TestCounts aggregates test nodes by type across the project.
	TestCounts map[string]int `json:"test_counts"`
}

// Analyze computes coverage statistics for a manifest. Models are returned
// sorted by name.
func (m *Manifest) Analyze() *Analysis {
	byID := make(map[string]*ModelCoverage)

	for id, node := range m.Nodes {
		if node.ResourceType != "model" {
			continue
		}
		mc := &ModelCoverage{
			Name:        node.Name,
			Described:   node.Description != "",
			Columns:     len(node.Columns),
			TestsByType: make(map[string]int),
		}
		for _, col := range node.Columns {
			if col.Description != "" {
				mc.DocumentedColumns++
			}
		}
		byID[id] = mc
	}

	testCounts := make(map[string]int)
	for _, node := range m.Nodes {
		if node.ResourceType != "test" {
			continue
		}
		testType := classifyTest(node.TestMetadata)
		testCounts[testType]++

		for _, dep := range node.DependsOn.Nodes {
			if mc, ok := byID[dep]; ok {
				mc.Tests++
				mc.TestsByType[testType]++
			}
		}
	}

	analysis := &Analysis{TestCounts: testCounts}

	totalColumns, documentedColumns, testedModels := 0, 0, 0
	for _, mc := range byID {
		totalColumns += mc.Columns
		documentedColumns += mc.DocumentedColumns
		if mc.Tests > 0 {
			testedModels++
		}
		if len(mc.TestsByType) == 0 {
			mc.TestsByType = nil
		}
		analysis.Models = append(analysis.Models, *mc)
	}

	sort.Slice(analysis.Models, func(i, j int) bool {
		return analysis.Models[i].Name < analysis.Models[j].Name
	})

	analysis.ColumnCoveragePct = percent(documentedColumns, totalColumns)
	analysis.TestCoveragePct = percent(testedModels, len(byID))

	return analysis
}

// classifyTest maps test metadata to one of the known generic test types.
func classifyTest(meta *TestMetadata) string {
	if meta == nil {
		return TestCustom
	}
	switch meta.Name {
	case TestNotNull, TestUnique, TestRelationships, TestAcceptedValues:
		return meta.Name
	default:
		return TestCustom
	}
}

// percent returns part/whole as a percentage rounded to one decimal.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	pct := float64(part) / float64(whole) * 100
	return math.Round(pct*10) / 10
}
