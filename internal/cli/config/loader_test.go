package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project-dir", "", "")
	flags.String("models-dir", "", "")
	flags.String("output", "", "")
	flags.Bool("verbose", false, "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()

	flags := newFlags()
	require.NoError(t, flags.Set("project-dir", root))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "models"), cfg.ModelsDir)
	assert.Equal(t, filepath.Join(root, "target", "manifest.json"), cfg.ManifestPath)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultReportTitle, cfg.Report.Title)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()
	cfgPath := filepath.Join(root, "dbtlens.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
models_dir: transformations
output: markdown
report:
  title: Warehouse Report
`), 0o600))

	flags := newFlags()
	require.NoError(t, flags.Set("project-dir", root))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "transformations"), cfg.ModelsDir)
	assert.Equal(t, "markdown", cfg.OutputFormat)
	assert.Equal(t, "Warehouse Report", cfg.Report.Title)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "dbtlens.yaml"),
		[]byte("output: markdown\n"), 0o600))

	t.Setenv("DBTLENS_OUTPUT", "json")

	flags := newFlags()
	require.NoError(t, flags.Set("project-dir", root))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfig_FlagsWin(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()

	t.Setenv("DBTLENS_OUTPUT", "json")

	flags := newFlags()
	require.NoError(t, flags.Set("project-dir", root))
	require.NoError(t, flags.Set("output", "text"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.OutputFormat)
}

func TestLoadConfig_ModelsDirFlagAnchorsRoot(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()
	modelsDir := filepath.Join(root, "models")
	require.NoError(t, os.MkdirAll(modelsDir, 0o750))

	flags := newFlags()
	require.NoError(t, flags.Set("models-dir", modelsDir))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, modelsDir, cfg.ModelsDir)
}

func TestLoadConfig_ExplicitConfigFile(t *testing.T) {
	t.Cleanup(ResetConfig)
	root := t.TempDir()
	cfgPath := filepath.Join(root, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("models_dir: sql\n"), 0o600))

	cfg, err := LoadConfig(cfgPath, newFlags())
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "sql"), cfg.ModelsDir)
}
