package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/project-portfolio/internal/oop"
)

var (
	ErrInvalidStorageDir    = errors.New("storage.dir cannot be empty")
	ErrInvalidInsightLog    = errors.New("storage.insight_log cannot be empty")
	ErrInvalidIgnorePattern = errors.New("invalid scan.ignore pattern")
	ErrInvalidOOPLanguage   = errors.New("unknown OOP language")
)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateScan()...)
	errs = append(errs, c.validateAnalysis()...)
	return errors.Join(errs...)
}

func (c *Config) validateStorage() []error {
	var errs []error
	if strings.TrimSpace(c.Storage.Dir) == "" {
		errs = append(errs, ErrInvalidStorageDir)
	}
	if strings.TrimSpace(c.Storage.InsightLog) == "" {
		errs = append(errs, ErrInvalidInsightLog)
	}
	return errs
}

func (c *Config) validateScan() []error {
	var errs []error
	for _, pattern := range c.Scan.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w %q: %v", ErrInvalidIgnorePattern, pattern, err))
		}
	}
	return errs
}

func (c *Config) validateAnalysis() []error {
	var errs []error
	for _, lang := range c.Analysis.OOPLanguages {
		if !slices.Contains(oop.SupportedLanguages, strings.ToLower(lang)) {
			errs = append(errs, fmt.Errorf("%w %q (supported: %s)",
				ErrInvalidOOPLanguage, lang, strings.Join(oop.SupportedLanguages, ", ")))
		}
	}
	return errs
}
