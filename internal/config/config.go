// Package config loads portfolio settings from defaults, ~/.portfolio/config.yml
// and PORTFOLIO_* environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/mvp-joe/project-portfolio/internal/oop"
)

// Config is the full portfolio configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Consent  ConsentConfig  `yaml:"consent" mapstructure:"consent"`
	Scan     ScanConfig     `yaml:"scan" mapstructure:"scan"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// StorageConfig locates the insight log and the analysis archive.
type StorageConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	InsightLog string `yaml:"insight_log" mapstructure:"insight_log"`
	ArchiveDB  string `yaml:"archive_db" mapstructure:"archive_db"`
}

// ConsentConfig records the user's consent choices. Nothing in the analyzer
// sends data anywhere; the flags are surfaced for callers that might.
type ConsentConfig struct {
	External bool `yaml:"external" mapstructure:"external"`
	Data     bool `yaml:"data" mapstructure:"data"`
}

// ScanConfig holds extra ignore globs applied on top of the fixed ignore list.
type ScanConfig struct {
	Ignore []string `yaml:"ignore" mapstructure:"ignore"`
}

// AnalysisConfig selects the OOP sub-analyzers.
type AnalysisConfig struct {
	OOPLanguages []string `yaml:"oop_languages" mapstructure:"oop_languages"`
}

// OutputConfig controls terminal rendering.
type OutputConfig struct {
	Color bool `yaml:"color" mapstructure:"color"`
}

// Default returns the configuration used when no file or env override exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir:        DefaultDir(),
			InsightLog: "insights.json",
			ArchiveDB:  "analyses.db",
		},
		Scan: ScanConfig{
			Ignore: []string{},
		},
		Analysis: AnalysisConfig{
			OOPLanguages: append([]string(nil), oop.SupportedLanguages...),
		},
		Output: OutputConfig{
			Color: true,
		},
	}
}

// DefaultDir returns ~/.portfolio, or .portfolio when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portfolio"
	}
	return filepath.Join(home, ".portfolio")
}

// InsightLogPath is the absolute location of the insight log.
func (c *Config) InsightLogPath() string {
	return c.resolve(c.Storage.InsightLog)
}

// ArchivePath is the location of the sqlite archive, or "" when archiving is disabled.
func (c *Config) ArchivePath() string {
	if c.Storage.ArchiveDB == "" {
		return ""
	}
	return c.resolve(c.Storage.ArchiveDB)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Storage.Dir, name)
}
