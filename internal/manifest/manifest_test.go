package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "nodes": {
    "model.shop.stg_orders": {
      "resource_type": "model",
      "name": "stg_orders",
      "description": "Cleaned orders",
      "columns": {
        "id": {"name": "id", "description": "Primary key"},
        "amount": {"name": "amount", "description": ""}
      }
    },
    "model.shop.stg_customers": {
      "resource_type": "model",
      "name": "stg_customers",
      "description": "",
      "columns": {
        "id": {"name": "id", "description": "Primary key"},
        "email": {"name": "email", "description": "Contact email"}
      }
    },
    "test.shop.not_null_stg_orders_id": {
      "resource_type": "test",
      "name": "not_null_stg_orders_id",
      "test_metadata": {"name": "not_null"},
      "depends_on": {"nodes": ["model.shop.stg_orders"]}
    },
    "test.shop.unique_stg_orders_id": {
      "resource_type": "test",
      "name": "unique_stg_orders_id",
      "test_metadata": {"name": "unique"},
      "depends_on": {"nodes": ["model.shop.stg_orders"]}
    },
    "test.shop.assert_positive_amounts": {
      "resource_type": "test",
      "name": "assert_positive_amounts",
      "depends_on": {"nodes": ["model.shop.stg_orders"]}
    }
  }
}`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)
	assert.Len(t, m.Nodes, 5)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoad_InvalidJSON(t *testing.T) {
	_, err := Load(writeManifest(t, "{broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse manifest")
}

func TestAnalyze(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	a := m.Analyze()
	require.Len(t, a.Models, 2)

	// Sorted by name.
	customers, orders := a.Models[0], a.Models[1]
	assert.Equal(t, "stg_customers", customers.Name)
	assert.Equal(t, "stg_orders", orders.Name)

	assert.False(t, customers.Described)
	assert.Equal(t, 2, customers.Columns)
	assert.Equal(t, 2, customers.DocumentedColumns)
	assert.Zero(t, customers.Tests)

	assert.True(t, orders.Described)
	assert.Equal(t, 1, orders.DocumentedColumns)
	assert.Equal(t, 3, orders.Tests)
	assert.Equal(t, 1, orders.TestsByType[TestNotNull])
	assert.Equal(t, 1, orders.TestsByType[TestUnique])
	assert.Equal(t, 1, orders.TestsByType[TestCustom])

	// 3 of 4 columns documented, 1 of 2 models tested.
	assert.InDelta(t, 75.0, a.ColumnCoveragePct, 0.01)
	assert.InDelta(t, 50.0, a.TestCoveragePct, 0.01)

	assert.Equal(t, map[string]int{
		TestNotNull: 1,
		TestUnique:  1,
		TestCustom:  1,
	}, a.TestCounts)
}

func TestAnalyze_Empty(t *testing.T) {
	m := &Manifest{}
	a := m.Analyze()
	assert.Empty(t, a.Models)
	assert.Zero(t, a.ColumnCoveragePct)
	assert.Zero(t, a.TestCoveragePct)
}

func TestClassifyTest(t *testing.T) {
	assert.Equal(t, TestCustom, classifyTest(nil))
	assert.Equal(t, TestNotNull, classifyTest(&TestMetadata{Name: "not_null"}))
	assert.Equal(t, TestRelationships, classifyTest(&TestMetadata{Name: "relationships"}))
	assert.Equal(t, TestAcceptedValues, classifyTest(&TestMetadata{Name: "accepted_values"}))
	assert.Equal(t, TestCustom, classifyTest(&TestMetadata{Name: "expect_column_values_to_be_between"}))
}
