// Package project scans a dbt-style project directory: it discovers SQL
// model files, extracts their references to other models, and matches models
// against YAML metadata files to flag missing documentation.
package project

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dbtlens/internal/graph"
)

// scanConcurrency bounds parallel model file reads.
const scanConcurrency = 8

// Model is one discovered SQL model.
type Model struct {
	Name        string   // file stem, the model's identifier
	Path        string   // path relative to the project root
	HasMetadata bool     // documented in some YAML metadata file
	Refs        []string // referenced model names, in order of appearance
}

// Source is one declared source from sources.yml.
type Source struct {
	Name   string
	Tables []string
}

// Project holds everything scanned from a project directory.
type Project struct {
	Root    string
	Models  []Model
	Sources []Source
}

// Records converts the scanned models into graph builder input, preserving
// scan order.
func (p *Project) Records() []graph.Record {
	records := make([]graph.Record, 0, len(p.Models))
	for _, m := range p.Models {
		records = append(records, graph.Record{
			Name:        m.Name,
			HasMetadata: m.HasMetadata,
			Refs:        m.Refs,
		})
	}
	return records
}

// MissingMetadata returns the names of models without documentation, in scan
// order.
func (p *Project) MissingMetadata() []string {
	var missing []string
	for _, m := range p.Models {
		if !m.HasMetadata {
			missing = append(missing, m.Name)
		}
	}
	return missing
}

// MetadataCoverage returns the percentage of models with documentation,
// rounded to one decimal place.
func (p *Project) MetadataCoverage() float64 {
	if len(p.Models) == 0 {
		return 0
	}
	documented := 0
	for _, m := range p.Models {
		if m.HasMetadata {
			documented++
		}
	}
	pct := float64(documented) / float64(len(p.Models)) * 100
	return math.Round(pct*10) / 10
}

// Scanner discovers models and metadata under a project root.
type Scanner struct {
	root      string
	modelsDir string
	logger    *slog.Logger
}

// NewScanner creates a scanner for the given project root. modelsDir is
// resolved against the root when relative.
func NewScanner(root, modelsDir string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !filepath.IsAbs(modelsDir) {
		modelsDir = filepath.Join(root, modelsDir)
	}
	return &Scanner{root: root, modelsDir: modelsDir, logger: logger}
}

// Scan walks the project and returns the discovered models and sources.
// Model files are read concurrently; the result order follows the lexical
// walk order of the models directory, so repeated scans of an unchanged
// project produce identical output.
func (s *Scanner) Scan(ctx context.Context) (*Project, error) {
	if _, err := os.Stat(s.modelsDir); err != nil {
		return nil, fmt.Errorf("models directory not found: %s", s.modelsDir)
	}

	paths, err := s.collectModelPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to scan models directory: %w", err)
	}
	s.logger.Debug("discovered model files", "count", len(paths))

	documented, err := s.metadataIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to index metadata files: %w", err)
	}

	models := make([]Model, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(scanConcurrency)

	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read model %s: %w", path, err)
			}

			rel, relErr := filepath.Rel(s.root, path)
			if relErr != nil {
				rel = path
			}

			name := strings.TrimSuffix(filepath.Base(path), ".sql")
			models[i] = Model{
				Name:        name,
				Path:        rel,
				HasMetadata: documented[name],
				Refs:        ExtractRefs(string(content)),
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sources, err := s.readSources()
	if err != nil {
		return nil, err
	}

	return &Project{Root: s.root, Models: models, Sources: sources}, nil
}

// collectModelPaths returns all .sql files under the models directory in
// lexical walk order.
func (s *Scanner) collectModelPaths() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.modelsDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}
