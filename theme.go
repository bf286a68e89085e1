package md2doc

import (
	"log/slog"

	"github.com/alnah/go-md2doc/internal/parser"
	"github.com/alnah/go-md2doc/internal/theme"
)

// ThemeNames lists the built-in theme presets in lexical order.
func ThemeNames() []string {
	return theme.Names()
}

// DescribeTheme returns the preset called name, if it exists.
func DescribeTheme(name string) (Theme, bool) {
	return theme.Describe(name)
}

// ResolveTheme returns the preset called name. Unknown names fall back to
// the default preset with a warning on logger (nil discards it).
func ResolveTheme(name string, logger *slog.Logger) Theme {
	return theme.Resolve(name, logger)
}

// MergeTheme fills the unset fields of override from the default preset.
func MergeTheme(override Theme) Theme {
	return theme.Merge(override)
}

// Parse turns Markdown into a Document without enrichment or rendering.
// Front matter is not stripped.
func Parse(markdown string) *Document {
	return parser.Parse(markdown)
}
