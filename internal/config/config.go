package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/theme"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigInvalid   = errors.New("invalid config")
)

// appDir is the directory under the user config dir searched for named configs.
const appDir = "go-md2doc"

// Limits for numeric settings.
const (
	MaxMargin         = 3.0 // inches
	MaxWorkers        = 32
	MaxConcurrency    = 64
	MaxThemeNameLen   = 64
	MaxScriptURLLen   = 2048
	DefaultImageBytes = 10 << 20
)

// Config holds all configuration for document generation.
type Config struct {
	Output      OutputConfig  `yaml:"output" toml:"output"`
	Theme       ThemeConfig   `yaml:"theme" toml:"theme"`
	Page        PageConfig    `yaml:"page" toml:"page"`
	Images      ImagesConfig  `yaml:"images" toml:"images"`
	Mermaid     MermaidConfig `yaml:"mermaid" toml:"mermaid"`
	Workers     int           `yaml:"workers" toml:"workers"`         // 0 = auto
	Concurrency int           `yaml:"concurrency" toml:"concurrency"` // enrichment calls per document, 0 = default
}

// OutputConfig defines output options.
type OutputConfig struct {
	Format     string `yaml:"format" toml:"format"`         // "docx", "pdf", "html", "both" (default: "docx")
	DefaultDir string `yaml:"defaultDir" toml:"defaultDir"` // empty = same as source
}

// ThemeConfig selects a preset or overrides individual theme values.
type ThemeConfig struct {
	Name     string       `yaml:"name" toml:"name"`
	Override *theme.Theme `yaml:"override" toml:"override"` // merged over the default preset
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size         string  `yaml:"size" toml:"size"`                 // "letter", "a4", "legal"
	Orientation  string  `yaml:"orientation" toml:"orientation"`   // "portrait", "landscape"
	Margin       float64 `yaml:"margin" toml:"margin"`             // inches
	HeaderFooter bool    `yaml:"headerFooter" toml:"headerFooter"` // title header, page-number footer
}

// ImagesConfig controls image resolution.
type ImagesConfig struct {
	FetchRemote bool  `yaml:"fetchRemote" toml:"fetchRemote"`
	MaxBytes    int64 `yaml:"maxBytes" toml:"maxBytes"`
}

// MermaidConfig controls diagram rendering.
type MermaidConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	ScriptURL string `yaml:"scriptUrl" toml:"scriptUrl"` // empty = bundled CDN default
	Theme     string `yaml:"theme" toml:"theme"`
}

// Validate checks every section. Called by LoadConfig, but available for
// callers who build a Config by hand.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Output),
		validation.Field(&c.Theme),
		validation.Field(&c.Page),
		validation.Field(&c.Images),
		validation.Field(&c.Mermaid),
		validation.Field(&c.Workers, validation.Min(0), validation.Max(MaxWorkers)),
		validation.Field(&c.Concurrency, validation.Min(0), validation.Max(MaxConcurrency)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

// Validate checks the output format.
func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Format, validation.In("docx", "pdf", "html", "both")),
	)
}

// Validate checks the theme name length and override values.
func (t ThemeConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Length(0, MaxThemeNameLen)),
		validation.Field(&t.Override),
	)
}

// Validate checks page enums and the margin range.
func (p PageConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Size, validation.In("letter", "a4", "legal")),
		validation.Field(&p.Orientation, validation.In("portrait", "landscape")),
		validation.Field(&p.Margin, validation.Min(0.0), validation.Max(MaxMargin)),
	)
}

// Validate checks the image size limit.
func (i ImagesConfig) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.MaxBytes, validation.Min(int64(0))),
	)
}

// Validate checks the script URL and mermaid theme.
func (m MermaidConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ScriptURL, validation.Length(0, MaxScriptURLLen), is.URL),
		validation.Field(&m.Theme, validation.In("default", "dark", "forest", "neutral", "base")),
	)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Output:  OutputConfig{Format: "docx"},
		Theme:   ThemeConfig{Name: theme.DefaultName},
		Page:    PageConfig{Size: "letter", Orientation: "portrait", Margin: 0.5},
		Images:  ImagesConfig{FetchRemote: false, MaxBytes: DefaultImageBytes},
		Mermaid: MermaidConfig{Enabled: true, Theme: "default"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(data, formatOf(configPath), cfg); err != nil {
		if errors.Is(err, ErrInputTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml, .toml
// Tries locations in order: current directory, ~/.config/go-md2doc/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml", ".toml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
