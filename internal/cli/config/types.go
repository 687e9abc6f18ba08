// Package config provides configuration management for the dbtlens CLI.
// Values come from defaults, a dbtlens.yaml project file, DBTLENS_*
// environment variables, and CLI flags, in increasing precedence.
package config

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is derived (flags, upward config search, cwd), never set
	// directly in the config file.
	ProjectRoot string `koanf:"-"`

	ModelsDir    string       `koanf:"models_dir"`
	ManifestPath string       `koanf:"manifest_path"`
	OutputFormat string       `koanf:"output"`
	Verbose      bool         `koanf:"verbose"`
	Report       ReportConfig `koanf:"report"`
}

// ReportConfig configures the HTML report command.
type ReportConfig struct {
	Title string `koanf:"title"`
	Out   string `koanf:"out"`
}

// Default configuration values.
const (
	DefaultModelsDir    = "models"
	DefaultManifestPath = "target/manifest.json"
	DefaultOutput       = "auto" // TTY=text, piped=markdown
	DefaultReportTitle  = "dbt Project Report"
	DefaultReportOut    = "dbtlens-report.html"
)
