package config

import (
	"errors"
	"fmt"
	"os"
)

// DefaultFileName is the config name looked up when none is given. It is
// resolved like any other name, so .md2docrc.yaml, .md2docrc.yml and
// .md2docrc.toml all match.
const DefaultFileName = ".md2docrc"

// DefaultFilePath is where WriteDefaultFile writes when no path is given.
const DefaultFilePath = DefaultFileName + ".yaml"

// ErrConfigExists is returned when WriteDefaultFile would overwrite a file.
var ErrConfigExists = errors.New("config file already exists")

// defaultFileContent mirrors DefaultConfig with every key spelled out.
const defaultFileContent = `# md2doc configuration

output:
  format: docx          # docx, pdf, html, both
  defaultDir: ""        # empty writes next to each source

theme:
  name: default         # run 'md2doc themes' for the presets

page:                   # PDF only
  size: letter          # letter, a4, legal
  orientation: portrait # portrait, landscape
  margin: 0.5           # inches, 0.25-3.0
  headerFooter: false   # title header and page-number footer

images:
  fetchRemote: false    # download http(s) images
  maxBytes: 10485760

mermaid:
  enabled: true
  theme: default        # default, dark, forest, neutral, base

workers: 0              # 0 = auto
concurrency: 0          # image and diagram calls per document, 0 = default
`

// LoadDefault loads the DefaultFileName config from the current directory
// or the user config directory. It returns DefaultConfig and an empty path
// when no such file exists.
func LoadDefault() (*Config, string, error) {
	path, err := resolveConfigPath(DefaultFileName)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), "", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// WriteDefaultFile writes a commented config holding the default values to
// path, or to DefaultFilePath when path is empty. Existing files are kept.
func WriteDefaultFile(path string) (string, error) {
	if path == "" {
		path = DefaultFilePath
	}

	// #nosec G302 G304 -- user-chosen path, the file is meant to be shared
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err != nil {
		return "", fmt.Errorf("creating config file: %w", err)
	}

	if _, err := f.WriteString(defaultFileContent); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing config file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}
