package md2doc

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestSplitFrontMatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		wantMeta Metadata
		wantBody string
		wantLog  bool
	}{
		{
			name:     "no front matter",
			src:      "# Title\n\ntext",
			wantBody: "# Title\n\ntext",
		},
		{
			name:     "yaml",
			src:      "---\ntitle: Report\nauthor: Ada\ntheme: dark\n---\n# Body\n",
			wantMeta: Metadata{Title: "Report", Author: "Ada", Theme: "dark"},
			wantBody: "# Body\n",
		},
		{
			name:     "toml",
			src:      "+++\ntitle = \"Notes\"\n+++\n\ntext",
			wantMeta: Metadata{Title: "Notes"},
			wantBody: "text",
		},
		{
			name:     "malformed yaml keeps full text",
			src:      "---\ntitle: [unclosed\n---\ntext",
			wantBody: "---\ntitle: [unclosed\n---\ntext",
			wantLog:  true,
		},
		{
			name:     "leading rules around a heading are kept",
			src:      "---\n# Release notes\n---\n\nBody text.",
			wantBody: "---\n# Release notes\n---\n\nBody text.",
		},
		{
			name:     "empty block is kept",
			src:      "---\n---\ntext",
			wantBody: "---\n---\ntext",
		},
		{
			name:     "thematic break is not front matter",
			src:      "text\n\n---\n\nmore",
			wantBody: "text\n\n---\n\nmore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))

			meta, body := splitFrontMatter(tt.src, logger)
			if meta.Title != tt.wantMeta.Title || meta.Author != tt.wantMeta.Author || meta.Theme != tt.wantMeta.Theme {
				t.Errorf("meta = %+v, want %+v", meta, tt.wantMeta)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if got := strings.Contains(logs.String(), "malformed front matter"); got != tt.wantLog {
				t.Errorf("logged = %v, want %v: %s", got, tt.wantLog, logs.String())
			}
		})
	}
}

func TestSplitFrontMatter_Custom(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	meta, _ := splitFrontMatter("---\ntitle: T\nversion: 3\ndraft: true\n---\nbody", logger)

	if meta.Custom["draft"] != true {
		t.Errorf("Custom[draft] = %v", meta.Custom["draft"])
	}
	if _, ok := meta.Custom["version"]; !ok {
		t.Errorf("Custom = %v, want version", meta.Custom)
	}
	if _, ok := meta.Custom["title"]; ok {
		t.Error("known keys should not be repeated in Custom")
	}
}

func TestHasFrontMatter(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"---\na: 1\n---\n": true,
		"---  \r\na: 1":    true,
		"+++\n":            true,
		";;;\n":            true,
		"# ---":            false,
		"":                 false,
		"----\n":           false,
	}
	for src, want := range tests {
		if got := hasFrontMatter(src); got != want {
			t.Errorf("hasFrontMatter(%q) = %v, want %v", src, got, want)
		}
	}
}
