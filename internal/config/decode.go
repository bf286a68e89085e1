package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// MaxInputSize limits config input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

// Decoding errors.
var (
	ErrEmptyInput    = errors.New("config: nil or empty data")
	ErrInputTooLarge = errors.New("config: input exceeds maximum size")
	ErrUnknownKeys   = errors.New("config: unknown keys")
)

// format is a config file syntax.
type format int

const (
	formatYAML format = iota
	formatTOML
)

// formatOf picks the syntax from the file extension; anything but .toml is YAML.
func formatOf(path string) format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return formatTOML
	}
	return formatYAML
}

// decode unmarshals data into v, rejecting unknown fields in both syntaxes.
func decode(data []byte, f format, v any) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}

	switch f {
	case formatTOML:
		md, err := toml.Decode(string(data), v)
		if err != nil {
			return fmt.Errorf("toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
		}
		return nil
	default:
		if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		return nil
	}
}
