// Package config provides configuration loading and validation for the CLI and services.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Job     string   `json:"job,omitempty"`     // Path to job posting text file
	JobURL  string   `json:"job_url,omitempty"` // URL to fetch job posting from
	CV      string   `json:"cv,omitempty"`      // Path to CV document (txt, md, pdf, docx)
	Catalog string   `json:"catalog,omitempty"` // Path to a YAML skill catalog
	Skills  []string `json:"skills,omitempty"`  // Candidate skills

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty"`  // SQLite file used when no database URL is set

	// Behavior
	UseBrowser bool     `json:"use_browser,omitempty"` // Use headless browser for SPA job boards
	Verbose    bool     `json:"verbose,omitempty"`     // Print detailed debug information
	Port       int      `json:"port,omitempty"`        // HTTP port for serve
	Weights    *Weights `json:"weights,omitempty"`     // Scoring weights override
}

// Weights mirrors the scoring weights so config files can tune them.
type Weights struct {
	Required   float64 `json:"required"`
	Nice       float64 `json:"nice"`
	SkillBlend float64 `json:"skill_blend"`
	TextBlend  float64 `json:"text_blend"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required inputs are checked by the CLI after merging with flags.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.Weights != nil {
		if c.Weights.Required <= 0 || c.Weights.Nice <= 0 {
			return fmt.Errorf("config error: 'weights.required' and 'weights.nice' must be positive")
		}
		if c.Weights.SkillBlend < 0 || c.Weights.TextBlend < 0 {
			return fmt.Errorf("config error: blend weights must be non-negative")
		}
	}

	for _, f := range []struct{ key, path string }{
		{"job", c.Job},
		{"cv", c.CV},
		{"catalog", c.Catalog},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", f.key, f.path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.CV == "" {
		result.CV = defaults.CV
	}
	if result.Catalog == "" {
		result.Catalog = defaults.Catalog
	}
	if len(result.Skills) == 0 {
		result.Skills = defaults.Skills
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Weights == nil {
		result.Weights = defaults.Weights
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
