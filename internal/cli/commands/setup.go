package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbtlens/internal/cli/config"
	"github.com/leapstack-labs/dbtlens/internal/cli/output"
	"github.com/leapstack-labs/dbtlens/internal/graph"
	"github.com/leapstack-labs/dbtlens/internal/project"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Scanner  *project.Scanner
}

// NewCommandContext creates a CommandContext wired to the command's streams
// and the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ParseMode(cfg.OutputFormat))
	scanner := project.NewScanner(cfg.ProjectRoot, cfg.ModelsDir, logger)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Scanner:  scanner,
	}
}

// getConfig returns the loaded configuration, or an environment-based
// fallback when commands run without the root's PersistentPreRunE (tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	root, _ := os.Getwd()
	return &config.Config{
		ProjectRoot:  root,
		ModelsDir:    getEnvOrDefault("DBTLENS_MODELS_DIR", config.DefaultModelsDir),
		ManifestPath: getEnvOrDefault("DBTLENS_MANIFEST_PATH", config.DefaultManifestPath),
		OutputFormat: getEnvOrDefault("DBTLENS_OUTPUT", config.DefaultOutput),
		Verbose:      os.Getenv("DBTLENS_VERBOSE") == "true",
		Report: config.ReportConfig{
			Title: config.DefaultReportTitle,
			Out:   config.DefaultReportOut,
		},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// scanAndBuild runs the project scan and builds the dependency graph.
func (c *CommandContext) scanAndBuild(ctx context.Context) (*project.Project, *graph.Graph, error) {
	p, err := c.Scanner.Scan(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan project: %w", err)
	}

	g, err := graph.Build(p.Records())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}

	return p, g, nil
}
