package md2doc

import (
	"log/slog"
	"time"
)

// DefaultMermaidScript is loaded into the diagram page unless WithMermaidScript is used.
const DefaultMermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"

// converterConfig holds the values set by options.
type converterConfig struct {
	timeout       time.Duration
	logger        *slog.Logger
	concurrency   int
	noDiagrams    bool
	mermaidScript string
	mermaidTheme  string
}

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout sets the time budget of one Convert call, including image
// fetching, diagram rendering and PDF generation.
// Panics if d <= 0 (programming error).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2doc: timeout must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger routes diagnostics to l. Each stage logs with a "component" attribute.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}

// WithConcurrency bounds in-flight image and diagram calls per document.
// Values below 1 keep the default.
func WithConcurrency(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.cfg.concurrency = n
		}
	}
}

// WithImageResolver replaces the default FileImageResolver.
func WithImageResolver(r ImageResolver) Option {
	return func(c *Converter) {
		c.images = r
	}
}

// WithDiagramRenderer replaces the headless-browser Mermaid renderer.
func WithDiagramRenderer(r DiagramRenderer) Option {
	return func(c *Converter) {
		c.diagrams = r
	}
}

// WithoutDiagrams keeps Mermaid blocks as source. HTML shows them as code.
func WithoutDiagrams() Option {
	return func(c *Converter) {
		c.cfg.noDiagrams = true
	}
}

// WithMermaidScript sets the URL of the mermaid script loaded by the
// diagram renderer (a file:// URL works offline).
func WithMermaidScript(url string) Option {
	return func(c *Converter) {
		c.cfg.mermaidScript = url
	}
}

// WithMermaidTheme selects the Mermaid theme: default, dark, forest, neutral or base.
func WithMermaidTheme(name string) Option {
	return func(c *Converter) {
		c.cfg.mermaidTheme = name
	}
}
