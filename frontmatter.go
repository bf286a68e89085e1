package md2doc

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/adrg/frontmatter"
)

// frontMatter is the envelope decoded from a leading YAML, TOML or JSON block.
type frontMatter struct {
	Title  string         `yaml:"title" toml:"title" json:"title"`
	Author string         `yaml:"author" toml:"author" json:"author"`
	Theme  string         `yaml:"theme" toml:"theme" json:"theme"`
	Custom map[string]any `yaml:",inline" json:"-"`
}

// splitFrontMatter separates metadata from the markdown body. Malformed
// front matter is logged and the full text is returned as the body. A block
// that decodes to no keys at all is not front matter: a document that opens
// with a thematic break pair is kept whole.
func splitFrontMatter(src string, logger *slog.Logger) (Metadata, string) {
	if !hasFrontMatter(src) {
		return Metadata{}, src
	}

	var fm frontMatter
	body, err := frontmatter.Parse(strings.NewReader(src), &fm)
	if err != nil {
		logger.Warn("ignoring malformed front matter", "error", err)
		return Metadata{}, src
	}
	if fm.Title == "" && fm.Author == "" && fm.Theme == "" && len(fm.Custom) == 0 {
		return Metadata{}, src
	}

	meta := Metadata{Title: fm.Title, Author: fm.Author, Theme: fm.Theme}
	if len(fm.Custom) > 0 {
		meta.Custom = make(map[string]any, len(fm.Custom))
		for k, v := range fm.Custom {
			meta.Custom[k] = v
		}
	}
	return meta, string(bytes.TrimLeft(body, "\r\n"))
}

// hasFrontMatter reports whether src opens with a front matter delimiter line.
// A lone "---" followed by content is still a candidate; Parse decides.
func hasFrontMatter(src string) bool {
	line, _, _ := strings.Cut(src, "\n")
	switch strings.TrimRight(line, " \t\r") {
	case "---", "+++", ";;;":
		return true
	}
	return false
}
