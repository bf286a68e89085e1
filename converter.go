package md2doc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-md2doc/internal/docxwriter"
	"github.com/alnah/go-md2doc/internal/enrich"
	"github.com/alnah/go-md2doc/internal/flow"
	"github.com/alnah/go-md2doc/internal/markup"
	"github.com/alnah/go-md2doc/internal/parser"
	"github.com/alnah/go-md2doc/internal/theme"
)

// Converter runs Markdown through parsing, enrichment and rendering.
// Create with NewConverter, use Convert for conversion, and Close when done.
// A Converter is safe for sequential use; use a ConverterPool for parallel work.
type Converter struct {
	cfg      converterConfig
	logger   *slog.Logger
	parser   *parser.Parser
	browser  *browser
	images   ImageResolver
	diagrams DiagramRenderer
	pdf      pdfConverter
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithLogger, WithoutDiagrams).
// The headless browser is only started by the first PDF or diagram.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:       defaultTimeout,
			concurrency:   enrich.DefaultConcurrency,
			mermaidScript: DefaultMermaidScript,
			mermaidTheme:  "default",
		},
		browser: &browser{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.mermaidScript == "" {
		return nil, fmt.Errorf("%w: mermaid script URL cannot be empty", ErrInvalidOption)
	}

	c.logger = c.cfg.logger
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.parser = parser.New(parser.WithLogger(c.logger.With("component", "parser")))

	if c.images == nil {
		c.images = &FileImageResolver{}
	}
	switch {
	case c.cfg.noDiagrams:
		c.diagrams = nil
	case c.diagrams == nil:
		c.diagrams = newRodDiagramRenderer(c.browser, c.cfg.mermaidScript, c.cfg.mermaidTheme, c.cfg.timeout)
	}

	// Create PDF converter if not injected (e.g., by tests)
	if c.pdf == nil {
		c.pdf = newRodConverter(c.browser, c.cfg.timeout)
	}

	return c, nil
}

// Convert runs the full pipeline and returns the outputs selected by input.Format.
// The context is used for cancellation; the converter timeout bounds the whole call.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	meta, body := splitFrontMatter(input.Markdown, c.logger.With("component", "frontmatter"))
	doc := c.parser.Parse(body)

	// The Word renderer shows images and diagrams as text, so only markup
	// outputs pay for fetching and browser rendering.
	var warnings []error
	if input.Format.wantsHTML() {
		doc, err = enrich.Enrich(ctx, doc, enrich.Options{
			Images:      c.images,
			Diagrams:    c.diagrams,
			BaseDir:     input.SourceDir,
			Concurrency: c.cfg.concurrency,
			Logger:      c.logger.With("component", "enrich"),
			OnFailure:   func(f enrich.Failure) { warnings = append(warnings, f) },
		})
		if err != nil {
			return nil, err
		}
	}

	th := c.resolveTheme(input, meta)
	res := &ConvertResult{Metadata: meta, Theme: th, Document: doc, Warnings: warnings}

	if input.Format.wantsDOCX() {
		var buf bytes.Buffer
		if err := docxwriter.Write(&buf, flow.Render(doc, th)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDOCXGeneration, err)
		}
		res.DOCX = buf.Bytes()
	}

	if !input.Format.wantsHTML() {
		return res, nil
	}

	page, err := markup.Render(doc, th).HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLGeneration, err)
	}
	res.HTML = page

	if !input.Format.wantsPDF() {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pageSettings := input.Page
	if pageSettings == nil {
		pageSettings = DefaultPageSettings()
	}
	pdf, err := c.pdf.ToPDF(ctx, page, pageSettings)
	if err != nil {
		return nil, err
	}
	res.PDF = pdf

	return res, nil
}

// resolveTheme picks the preset named by the input, else by the front
// matter, and merges the input override over it.
func (c *Converter) resolveTheme(input Input, meta Metadata) Theme {
	name := input.Theme
	if name == "" {
		name = meta.Theme
	}
	th := theme.Resolve(name, c.logger.With("component", "theme"))
	if input.ThemeOverride != nil {
		th = theme.MergeOver(*input.ThemeOverride, th)
	}
	return th
}

// Close releases browser resources.
func (c *Converter) Close() error {
	return c.browser.Close()
}
