package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// metadataFile is the subset of a dbt schema YAML file we care about.
type metadataFile struct {
	Models []struct {
		Name string `yaml:"name"`
	} `yaml:"models"`
}

// sourcesFile mirrors the structure of a dbt sources.yml.
type sourcesFile struct {
	Sources []struct {
		Name   string `yaml:"name"`
		Tables []struct {
			Name string `yaml:"name"`
		} `yaml:"tables"`
	} `yaml:"sources"`
}

// metadataIndex walks the project for YAML files and returns the set of model
// names documented in any of them. Files that fail to parse are skipped;
// schema files sit next to arbitrary project YAML (CI configs, packages) that
// need not match our shape.
func (s *Scanner) metadataIndex() (map[string]bool, error) {
	documented := make(map[string]bool)

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			// Never descend into dbt build output.
			if d.Name() == "target" || d.Name() == "dbt_packages" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isYAMLFile(d.Name()) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Debug("skipping unreadable metadata file", "path", path, "error", err)
			return nil
		}

		var meta metadataFile
		if err := yaml.Unmarshal(content, &meta); err != nil {
			s.logger.Debug("skipping unparsable metadata file", "path", path, "error", err)
			return nil
		}

		for _, m := range meta.Models {
			if m.Name != "" {
				documented[m.Name] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return documented, nil
}

// readSources parses sources.yml in the models directory. A missing file is
// not an error; projects without external sources simply don't have one.
func (s *Scanner) readSources() ([]Source, error) {
	path := filepath.Join(s.modelsDir, "sources.yml")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sources.yml: %w", err)
	}

	var parsed sourcesFile
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse sources.yml: %w", err)
	}

	sources := make([]Source, 0, len(parsed.Sources))
	for _, src := range parsed.Sources {
		tables := make([]string, 0, len(src.Tables))
		for _, tbl := range src.Tables {
			tables = append(tables, tbl.Name)
		}
		sources = append(sources, Source{Name: src.Name, Tables: tables})
	}
	return sources, nil
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")
}
