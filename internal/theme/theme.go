// Package theme holds the typography, colour and spacing values shared by the
// word-model and structural-markup renderers.
package theme

import (
	"log/slog"
	"regexp"
	"sort"

	"dario.cat/mergo"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultName is the preset used when no theme, or an unknown one, is requested.
const DefaultName = "default"

// customName names merged themes that carry no name of their own.
const customName = "Custom"

// maxFontNameLength bounds font family names accepted from configuration.
const maxFontNameLength = 64

// Theme is a resolved set of styling values. Zero-valued fields act as
// "not set" placeholders when a Theme is used as an override for Merge.
type Theme struct {
	Name      string  `yaml:"name" toml:"name"`
	Fonts     Fonts   `yaml:"fonts" toml:"fonts"`
	Colors    Colors  `yaml:"colors" toml:"colors"`
	Spacing   Spacing `yaml:"spacing" toml:"spacing"`
	CodeStyle string  `yaml:"codeStyle" toml:"codeStyle"` // chroma style name
	CustomCSS string  `yaml:"customCss" toml:"customCss"` // appended verbatim, last
}

// Fonts selects font families per text role.
type Fonts struct {
	Heading string `yaml:"heading" toml:"heading"`
	Body    string `yaml:"body" toml:"body"`
	Code    string `yaml:"code" toml:"code"`
}

// Colors holds hex colours (#RGB or #RRGGBB).
type Colors struct {
	Primary    string `yaml:"primary" toml:"primary"`
	Text       string `yaml:"text" toml:"text"`
	Background string `yaml:"background" toml:"background"`
	Code       string `yaml:"code" toml:"code"` // code background
}

// Spacing holds paragraph spacing (points) and line height (multiplier).
type Spacing struct {
	ParagraphSpacing float64 `yaml:"paragraphSpacing" toml:"paragraphSpacing"`
	LineHeight       float64 `yaml:"lineHeight" toml:"lineHeight"`
}

var presets = map[string]Theme{
	"default": {
		Name:      "Default",
		Fonts:     Fonts{Heading: "Arial", Body: "Arial", Code: "Courier New"},
		Colors:    Colors{Primary: "#333333", Text: "#000000", Background: "#FFFFFF", Code: "#f5f5f5"},
		Spacing:   Spacing{ParagraphSpacing: 10, LineHeight: 1.5},
		CodeStyle: "github",
	},
	"modern": {
		Name:      "Modern",
		Fonts:     Fonts{Heading: "Calibri", Body: "Calibri", Code: "Consolas"},
		Colors:    Colors{Primary: "#2563eb", Text: "#1f2937", Background: "#FFFFFF", Code: "#f3f4f6"},
		Spacing:   Spacing{ParagraphSpacing: 12, LineHeight: 1.6},
		CodeStyle: "friendly",
	},
	"academic": {
		Name:      "Academic",
		Fonts:     Fonts{Heading: "Times New Roman", Body: "Times New Roman", Code: "Courier New"},
		Colors:    Colors{Primary: "#000000", Text: "#000000", Background: "#FFFFFF", Code: "#f8f8f8"},
		Spacing:   Spacing{ParagraphSpacing: 8, LineHeight: 2.0},
		CodeStyle: "bw",
	},
	"minimal": {
		Name:      "Minimal",
		Fonts:     Fonts{Heading: "Helvetica", Body: "Helvetica", Code: "Monaco"},
		Colors:    Colors{Primary: "#111827", Text: "#374151", Background: "#FFFFFF", Code: "#f9fafb"},
		Spacing:   Spacing{ParagraphSpacing: 14, LineHeight: 1.7},
		CodeStyle: "paraiso-light",
	},
	"dark": {
		Name:      "Dark",
		Fonts:     Fonts{Heading: "Arial", Body: "Arial", Code: "Courier New"},
		Colors:    Colors{Primary: "#e5e7eb", Text: "#d1d5db", Background: "#1f2937", Code: "#374151"},
		Spacing:   Spacing{ParagraphSpacing: 10, LineHeight: 1.6},
		CodeStyle: "monokai",
	},
}

// Default returns the default preset.
func Default() Theme {
	return presets[DefaultName]
}

// Resolve returns the preset called name. Unknown names fall back to the
// default preset and log a warning; Resolve never fails.
func Resolve(name string, logger *slog.Logger) Theme {
	if name == "" {
		return Default()
	}
	if t, ok := presets[name]; ok {
		return t
	}
	if logger != nil {
		logger.Warn("theme not found, using default", "theme", name, "available", Names())
	}
	return Default()
}

// Merge deep-merges override over the default preset. Each field of each
// group is considered on its own: set fields win, zero fields fall through.
func Merge(override Theme) Theme {
	return MergeOver(override, Default())
}

// MergeOver deep-merges override over base the same way Merge does over the
// default preset.
func MergeOver(override, base Theme) Theme {
	merged := override
	if merged.Name == "" {
		merged.Name = customName
	}
	// mergo only fails on mismatched or non-struct types, which cannot happen here.
	_ = mergo.Merge(&merged, base)
	return merged
}

// Names lists the built-in presets in lexical order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the preset called name, if it exists.
func Describe(name string) (Theme, bool) {
	t, ok := presets[name]
	return t, ok
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks values coming from user configuration. Empty fields are
// allowed so partial overrides validate.
func (t Theme) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Length(0, 100)),
		validation.Field(&t.Fonts),
		validation.Field(&t.Colors),
		validation.Field(&t.Spacing),
		validation.Field(&t.CodeStyle, validation.Length(0, 64)),
	)
}

// Validate checks font name lengths.
func (f Fonts) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Heading, validation.Length(0, maxFontNameLength)),
		validation.Field(&f.Body, validation.Length(0, maxFontNameLength)),
		validation.Field(&f.Code, validation.Length(0, maxFontNameLength)),
	)
}

// Validate checks that colours are hex triplets or sextets.
func (c Colors) Validate() error {
	hex := validation.Match(hexColor).Error("must be a hex colour like #1f2937")
	return validation.ValidateStruct(&c,
		validation.Field(&c.Primary, hex),
		validation.Field(&c.Text, hex),
		validation.Field(&c.Background, hex),
		validation.Field(&c.Code, hex),
	)
}

// Validate checks that spacing values are within sensible bounds.
func (s Spacing) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ParagraphSpacing, validation.Min(0.0), validation.Max(200.0)),
		validation.Field(&s.LineHeight, validation.Min(0.0), validation.Max(10.0)),
	)
}
