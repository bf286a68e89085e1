package md2doc

// Notes:
// - Tests Converter.Convert with a mocked PDF converter and fake enrichment
//   collaborators so no browser or network is needed.
// - withPDFConverter is an internal test option for dependency injection.
// - Browser-backed paths are covered by the integration-tagged tests.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-md2doc/internal/ast"
	"github.com/alnah/go-md2doc/internal/theme"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type mockPDFConverter struct {
	called bool
	html   []byte
	page   *PageSettings
	output []byte
	err    error
}

func (m *mockPDFConverter) ToPDF(ctx context.Context, htmlContent []byte, page *PageSettings) ([]byte, error) {
	m.called = true
	m.html = htmlContent
	m.page = page
	if m.err != nil {
		return nil, m.err
	}
	if m.output != nil {
		return m.output, nil
	}
	return []byte("%PDF-1.4 mock"), nil
}

type panicPDFConverter struct{}

func (panicPDFConverter) ToPDF(context.Context, []byte, *PageSettings) ([]byte, error) {
	panic("boom")
}

func withPDFConverter(p pdfConverter) Option {
	return func(c *Converter) {
		c.pdf = p
	}
}

// svgDiagrams answers every diagram with a fixed SVG and counts calls.
type svgDiagrams struct {
	calls atomic.Int32
}

func (d *svgDiagrams) RenderDiagram(context.Context, string) ([]byte, error) {
	d.calls.Add(1)
	return []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), nil
}

func newTestConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	conv, err := NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv
}

// ---------------------------------------------------------------------------
// TestConvert - Output selection
// ---------------------------------------------------------------------------

func TestConvert_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   Format
		wantDOCX bool
		wantHTML bool
		wantPDF  bool
	}{
		{name: "empty means docx", format: "", wantDOCX: true},
		{name: "docx", format: FormatDOCX, wantDOCX: true},
		{name: "html", format: FormatHTML, wantHTML: true},
		{name: "pdf", format: FormatPDF, wantHTML: true, wantPDF: true},
		{name: "both", format: FormatBoth, wantDOCX: true, wantHTML: true, wantPDF: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pdf := &mockPDFConverter{}
			conv := newTestConverter(t, withPDFConverter(pdf), WithoutDiagrams())

			res, err := conv.Convert(context.Background(), Input{Markdown: "# Hello\n\nWorld", Format: tt.format})
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			if got := len(res.DOCX) > 0; got != tt.wantDOCX {
				t.Errorf("DOCX set = %v, want %v", got, tt.wantDOCX)
			}
			if tt.wantDOCX && !bytes.HasPrefix(res.DOCX, []byte("PK")) {
				t.Error("DOCX is not a zip container")
			}
			if got := len(res.HTML) > 0; got != tt.wantHTML {
				t.Errorf("HTML set = %v, want %v", got, tt.wantHTML)
			}
			if tt.wantHTML && !strings.Contains(string(res.HTML), "<h1>Hello</h1>") {
				t.Errorf("HTML missing heading: %s", res.HTML)
			}
			if pdf.called != tt.wantPDF || (len(res.PDF) > 0) != tt.wantPDF {
				t.Errorf("PDF called = %v, len = %d, want %v", pdf.called, len(res.PDF), tt.wantPDF)
			}
			if res.Document == nil || len(res.Document.Children) != 2 {
				t.Errorf("Document = %+v", res.Document)
			}
		})
	}
}

func TestConvert_PDFReceivesHTMLAndPage(t *testing.T) {
	t.Parallel()

	pdf := &mockPDFConverter{}
	conv := newTestConverter(t, withPDFConverter(pdf), WithoutDiagrams())

	page := &PageSettings{Size: PageSizeA4, Orientation: OrientationLandscape, Margin: 1}
	res, err := conv.Convert(context.Background(), Input{Markdown: "text", Format: FormatPDF, Page: page})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !bytes.Equal(pdf.html, res.HTML) {
		t.Error("PDF converter did not receive the rendered HTML")
	}
	if pdf.page != page {
		t.Errorf("page = %+v, want %+v", pdf.page, page)
	}

	pdf2 := &mockPDFConverter{}
	conv2 := newTestConverter(t, withPDFConverter(pdf2), WithoutDiagrams())
	if _, err := conv2.Convert(context.Background(), Input{Markdown: "text", Format: FormatPDF}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if pdf2.page == nil || *pdf2.page != *DefaultPageSettings() {
		t.Errorf("nil page should use defaults, got %+v", pdf2.page)
	}
}

func TestConvert_ValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{name: "unknown format", input: Input{Format: "odt"}, wantErr: ErrInvalidFormat},
		{name: "bad page size", input: Input{Page: &PageSettings{Size: "a3", Orientation: "portrait", Margin: 1}}, wantErr: ErrInvalidPageSize},
		{name: "bad orientation", input: Input{Page: &PageSettings{Size: "a4", Orientation: "sideways", Margin: 1}}, wantErr: ErrInvalidOrientation},
		{name: "bad margin", input: Input{Page: &PageSettings{Size: "a4", Orientation: "portrait", Margin: 9}}, wantErr: ErrInvalidMargin},
		{name: "bad theme colour", input: Input{ThemeOverride: &Theme{Colors: theme.Colors{Primary: "blue"}}}, wantErr: ErrInvalidTheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pdf := &mockPDFConverter{}
			conv := newTestConverter(t, withPDFConverter(pdf))

			_, err := conv.Convert(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, want %v", err, tt.wantErr)
			}
			if pdf.called {
				t.Error("PDF converter should not run on invalid input")
			}
		})
	}
}

func TestConvert_PDFConverterError(t *testing.T) {
	t.Parallel()

	pdf := &mockPDFConverter{err: ErrBrowserConnect}
	conv := newTestConverter(t, withPDFConverter(pdf), WithoutDiagrams())

	_, err := conv.Convert(context.Background(), Input{Markdown: "x", Format: FormatPDF})
	if !errors.Is(err, ErrBrowserConnect) {
		t.Errorf("Convert() error = %v, want ErrBrowserConnect", err)
	}
}

func TestConvert_RecoversPanic(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, withPDFConverter(panicPDFConverter{}), WithoutDiagrams())

	_, err := conv.Convert(context.Background(), Input{Markdown: "x", Format: FormatPDF})
	if err == nil || !strings.Contains(err.Error(), "internal error: boom") {
		t.Errorf("Convert() error = %v, want internal error", err)
	}
}

func TestConvert_CancelledContext(t *testing.T) {
	t.Parallel()

	diagrams := &svgDiagrams{}
	conv := newTestConverter(t, withPDFConverter(&mockPDFConverter{}), WithDiagramRenderer(diagrams))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conv.Convert(ctx, Input{Markdown: "```mermaid\ngraph TD\n```", Format: FormatHTML})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// Enrichment wiring
// ---------------------------------------------------------------------------

func TestConvert_DiagramsOnlyForMarkup(t *testing.T) {
	t.Parallel()

	src := "```mermaid\ngraph TD; A-->B\n```"

	t.Run("docx skips rendering", func(t *testing.T) {
		t.Parallel()

		diagrams := &svgDiagrams{}
		conv := newTestConverter(t, WithDiagramRenderer(diagrams))
		if _, err := conv.Convert(context.Background(), Input{Markdown: src}); err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if n := diagrams.calls.Load(); n != 0 {
			t.Errorf("diagram calls = %d, want 0", n)
		}
	})

	t.Run("html embeds the svg", func(t *testing.T) {
		t.Parallel()

		diagrams := &svgDiagrams{}
		conv := newTestConverter(t, WithDiagramRenderer(diagrams))
		res, err := conv.Convert(context.Background(), Input{Markdown: src, Format: FormatHTML})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if n := diagrams.calls.Load(); n != 1 {
			t.Errorf("diagram calls = %d, want 1", n)
		}
		if !strings.Contains(string(res.HTML), "data:image/svg+xml;base64,") {
			t.Errorf("HTML missing diagram image: %s", res.HTML)
		}
	})

	t.Run("without diagrams keeps source", func(t *testing.T) {
		t.Parallel()

		diagrams := &svgDiagrams{}
		conv := newTestConverter(t, WithDiagramRenderer(diagrams), WithoutDiagrams())
		res, err := conv.Convert(context.Background(), Input{Markdown: src, Format: FormatHTML})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if n := diagrams.calls.Load(); n != 0 {
			t.Errorf("diagram calls = %d, want 0", n)
		}
		if !strings.Contains(string(res.HTML), "language-mermaid") {
			t.Errorf("HTML missing diagram source: %s", res.HTML)
		}
	})
}

func TestConvert_ImagesResolveAgainstSourceDir(t *testing.T) {
	t.Parallel()

	var gotDir atomic.Value
	resolver := ImageResolverFunc(func(_ context.Context, ref, baseDir string) ([]byte, error) {
		gotDir.Store(baseDir)
		if ref == "missing.png" {
			return nil, ErrImageFetch
		}
		return []byte("\x89PNG\r\n\x1a\n"), nil
	})
	conv := newTestConverter(t, WithImageResolver(resolver), WithoutDiagrams())

	res, err := conv.Convert(context.Background(), Input{
		Markdown:  "![logo](logo.png) ![gone](missing.png)",
		SourceDir: "/docs",
		Format:    FormatHTML,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if gotDir.Load() != "/docs" {
		t.Errorf("baseDir = %v, want /docs", gotDir.Load())
	}
	html := string(res.HTML)
	if !strings.Contains(html, "data:image/png;base64,") {
		t.Error("resolved image not embedded")
	}
	if !strings.Contains(html, `src="missing.png"`) {
		t.Error("unresolved image should keep its reference")
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrImageFetch) {
		t.Errorf("Warnings = %v, want one ErrImageFetch", res.Warnings)
	}
}

func TestConvert_WarningsForDegradedDiagrams(t *testing.T) {
	t.Parallel()

	diagrams := DiagramRendererFunc(func(context.Context, string) ([]byte, error) {
		return nil, fmt.Errorf("%w: parse error on line 2", ErrDiagramRender)
	})
	conv := newTestConverter(t, WithDiagramRenderer(diagrams))
	src := "```mermaid\ngraph TD\n  A-->\n```"

	res, err := conv.Convert(context.Background(), Input{Markdown: src, Format: FormatHTML})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrDiagramRender) {
		t.Fatalf("Warnings = %v, want one ErrDiagramRender", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0].Error(), `diagram "graph TD"`) {
		t.Errorf("warning = %q, want the diagram's first line", res.Warnings[0])
	}

	res, err = conv.Convert(context.Background(), Input{Markdown: src})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("docx output should not render diagrams, got warnings %v", res.Warnings)
	}
}

// ---------------------------------------------------------------------------
// Themes and front matter
// ---------------------------------------------------------------------------

func TestConvert_ThemeSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		markdown      string
		theme         string
		override      *Theme
		wantName      string
		wantPrimary   string
		wantCodeStyle string
	}{
		{name: "default", markdown: "x", wantName: "Default", wantPrimary: "#333333"},
		{name: "input theme", markdown: "x", theme: "dark", wantName: "Dark", wantPrimary: "#e5e7eb"},
		{name: "front matter theme", markdown: "---\ntheme: modern\n---\nx", wantName: "Modern", wantPrimary: "#2563eb"},
		{name: "input beats front matter", markdown: "---\ntheme: modern\n---\nx", theme: "academic", wantName: "Academic", wantPrimary: "#000000"},
		{name: "unknown falls back", markdown: "x", theme: "neon", wantName: "Default", wantPrimary: "#333333"},
		{
			name:          "override over preset",
			markdown:      "x",
			theme:         "dark",
			override:      &Theme{Colors: theme.Colors{Primary: "#ff0000"}},
			wantName:      "Custom",
			wantPrimary:   "#ff0000",
			wantCodeStyle: "monokai",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv := newTestConverter(t)
			res, err := conv.Convert(context.Background(), Input{Markdown: tt.markdown, Theme: tt.theme, ThemeOverride: tt.override})
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if res.Theme.Name != tt.wantName || res.Theme.Colors.Primary != tt.wantPrimary {
				t.Errorf("theme = %q %q, want %q %q", res.Theme.Name, res.Theme.Colors.Primary, tt.wantName, tt.wantPrimary)
			}
			if tt.wantCodeStyle != "" && res.Theme.CodeStyle != tt.wantCodeStyle {
				t.Errorf("CodeStyle = %q, want %q", res.Theme.CodeStyle, tt.wantCodeStyle)
			}
		})
	}
}

func TestConvert_UnknownThemeLogs(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	conv := newTestConverter(t, WithLogger(logger))

	if _, err := conv.Convert(context.Background(), Input{Markdown: "x", Theme: "neon"}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, "theme not found") || !strings.Contains(out, "component=theme") {
		t.Errorf("log = %q", out)
	}
}

func TestConvert_FrontMatterMetadata(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	res, err := conv.Convert(context.Background(), Input{
		Markdown: "---\ntitle: Report\nauthor: Ada\ntags: [a, b]\n---\n# Body",
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.Metadata.Title != "Report" || res.Metadata.Author != "Ada" {
		t.Errorf("Metadata = %+v", res.Metadata)
	}
	if _, ok := res.Metadata.Custom["tags"]; !ok {
		t.Errorf("Custom = %v, want tags", res.Metadata.Custom)
	}
	if len(res.Document.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(res.Document.Children))
	}
	if h, ok := res.Document.Children[0].(*ast.Heading); !ok || ast.PlainText(h.Children) != "Body" {
		t.Errorf("first block = %#v", res.Document.Children[0])
	}
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	if conv.cfg.timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", conv.cfg.timeout, defaultTimeout)
	}
	if _, ok := conv.images.(*FileImageResolver); !ok {
		t.Errorf("images = %T, want *FileImageResolver", conv.images)
	}
	if _, ok := conv.diagrams.(*rodDiagramRenderer); !ok {
		t.Errorf("diagrams = %T, want *rodDiagramRenderer", conv.diagrams)
	}
	if _, ok := conv.pdf.(*rodConverter); !ok {
		t.Errorf("pdf = %T, want *rodConverter", conv.pdf)
	}

	if _, err := NewConverter(WithMermaidScript("")); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("empty mermaid script error = %v, want ErrInvalidOption", err)
	}
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithTimeout(5*time.Second))
	if conv.cfg.timeout != 5*time.Second {
		t.Errorf("timeout = %v", conv.cfg.timeout)
	}

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) should panic")
		}
	}()
	WithTimeout(0)
}

func TestConverter_CloseIdempotent(t *testing.T) {
	t.Parallel()

	conv, err := NewConverter()
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	if err := conv.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := conv.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
