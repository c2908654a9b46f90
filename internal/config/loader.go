package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader loads configuration.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	dir  string
	file string
}

// NewLoader reads config.yml (or config.yaml) from dir.
func NewLoader(dir string) Loader {
	return &loader{dir: dir}
}

// NewFileLoader reads an explicit config file, which must exist.
func NewFileLoader(path string) Loader {
	return &loader{file: path}
}

// Load merges defaults, the config file and PORTFOLIO_* environment variables,
// in increasing priority, then validates the result.
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(l.dir)
	}

	v.SetEnvPrefix("PORTFOLIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only sees keys viper already knows about.
	for _, key := range []string{
		"storage.dir", "storage.insight_log", "storage.archive_db",
		"consent.external", "consent.data",
		"scan.ignore", "analysis.oop_languages", "output.color",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.insight_log", d.Storage.InsightLog)
	v.SetDefault("storage.archive_db", d.Storage.ArchiveDB)
	v.SetDefault("consent.external", d.Consent.External)
	v.SetDefault("consent.data", d.Consent.Data)
	v.SetDefault("scan.ignore", d.Scan.Ignore)
	v.SetDefault("analysis.oop_languages", d.Analysis.OOPLanguages)
	v.SetDefault("output.color", d.Output.Color)
}

// Load loads .env from the working directory, then the config at path, or
// from ~/.portfolio when path is empty.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv("."); err != nil {
		return nil, err
	}
	if path != "" {
		return NewFileLoader(path).Load()
	}
	return NewLoader(DefaultDir()).Load()
}

// LoadDotEnv exports the variables of dir/.env without overriding ones already set.
// A missing file is not an error.
func LoadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
