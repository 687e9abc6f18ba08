package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbtlens/internal/testutil"
)

// writeFile creates a file under dir, creating parent directories as needed.
func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, root, "models/staging/stg_customers.sql",
		"select * from {{ source('raw', 'customers') }}")
	writeFile(t, root, "models/staging/stg_orders.sql",
		"select * from {{ source('raw', 'orders') }}")
	writeFile(t, root, "models/marts/customer_orders.sql",
		"select * from {{ ref('stg_customers') }} c join {{ ref('stg_orders') }} o on c.id = o.customer_id")
	writeFile(t, root, "models/schema.yml", `
models:
  - name: stg_customers
    description: Cleaned customers
  - name: customer_orders
    description: Orders per customer
`)
	writeFile(t, root, "models/sources.yml", `
sources:
  - name: raw
    tables:
      - name: customers
      - name: orders
`)

	return root
}

func TestScanner_Scan(t *testing.T) {
	root := newTestProject(t)
	s := NewScanner(root, "models", testutil.NewTestLogger(t))

	p, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Models, 3)

	byName := make(map[string]Model)
	for _, m := range p.Models {
		byName[m.Name] = m
	}

	assert.True(t, byName["stg_customers"].HasMetadata)
	assert.False(t, byName["stg_orders"].HasMetadata)
	assert.True(t, byName["customer_orders"].HasMetadata)
	assert.Equal(t, []string{"stg_customers", "stg_orders"}, byName["customer_orders"].Refs)
	assert.Empty(t, byName["stg_customers"].Refs)

	require.Len(t, p.Sources, 1)
	assert.Equal(t, "raw", p.Sources[0].Name)
	assert.Equal(t, []string{"customers", "orders"}, p.Sources[0].Tables)
}

func TestScanner_ScanDeterministicOrder(t *testing.T) {
	root := newTestProject(t)
	s := NewScanner(root, "models", testutil.NewTestLogger(t))

	first, err := s.Scan(context.Background())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		p, err := s.Scan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first.Models, p.Models)
	}
}

func TestScanner_MissingModelsDir(t *testing.T) {
	s := NewScanner(t.TempDir(), "models", testutil.NewTestLogger(t))
	_, err := s.Scan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "models directory not found")
}

func TestScanner_UnparsableYAMLIsSkipped(t *testing.T) {
	root := newTestProject(t)
	writeFile(t, root, "ci.yml", "{{not yaml at all")

	s := NewScanner(root, "models", testutil.NewTestLogger(t))
	p, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, p.Models, 3)
}

func TestScanner_SkipsTargetDir(t *testing.T) {
	root := newTestProject(t)
	// Compiled output under target/ must not count as documentation.
	writeFile(t, root, "target/schema.yml", `
models:
  - name: stg_orders
`)

	s := NewScanner(root, "models", testutil.NewTestLogger(t))
	p, err := s.Scan(context.Background())
	require.NoError(t, err)

	for _, m := range p.Models {
		if m.Name == "stg_orders" {
			assert.False(t, m.HasMetadata)
		}
	}
}

func TestProject_MissingMetadataAndCoverage(t *testing.T) {
	root := newTestProject(t)
	s := NewScanner(root, "models", testutil.NewTestLogger(t))

	p, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"stg_orders"}, p.MissingMetadata())
	assert.InDelta(t, 66.7, p.MetadataCoverage(), 0.01)
}

func TestProject_CoverageEmptyProject(t *testing.T) {
	p := &Project{}
	assert.Zero(t, p.MetadataCoverage())
	assert.Empty(t, p.MissingMetadata())
}

func TestProject_Records(t *testing.T) {
	p := &Project{Models: []Model{
		{Name: "a", HasMetadata: true},
		{Name: "b", Refs: []string{"a"}},
	}}

	records := p.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Name)
	assert.True(t, records[0].HasMetadata)
	assert.Equal(t, []string{"a"}, records[1].Refs)
}

func TestScanner_NoSourcesFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/a.sql", "select 1")

	s := NewScanner(root, "models", testutil.NewTestLogger(t))
	p, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p.Sources)
}
