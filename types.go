package md2doc

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-md2doc/internal/ast"
	"github.com/alnah/go-md2doc/internal/enrich"
	"github.com/alnah/go-md2doc/internal/theme"
)

// Theme is a set of styling values shared by the Word and HTML renderers.
type Theme = theme.Theme

// Document is the typed Markdown tree produced by Parse.
type Document = ast.Document

// ImageResolver loads the bytes behind an image reference.
type ImageResolver = enrich.ImageResolver

// DiagramRenderer turns Mermaid source into image bytes.
type DiagramRenderer = enrich.DiagramRenderer

// ImageResolverFunc adapts a function to ImageResolver.
type ImageResolverFunc = enrich.ImageResolverFunc

// DiagramRendererFunc adapts a function to DiagramRenderer.
type DiagramRendererFunc = enrich.DiagramRendererFunc

// Format selects the outputs a conversion produces.
type Format string

// Output formats.
const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatBoth Format = "both" // DOCX and PDF
)

// Validate checks that f is a known format. The empty format means FormatDOCX.
func (f Format) Validate() error {
	switch f {
	case "", FormatDOCX, FormatPDF, FormatHTML, FormatBoth:
		return nil
	}
	return fmt.Errorf("%w: %q (must be docx, pdf, html or both)", ErrInvalidFormat, string(f))
}

func (f Format) wantsDOCX() bool { return f == "" || f == FormatDOCX || f == FormatBoth }
func (f Format) wantsPDF() bool  { return f == FormatPDF || f == FormatBoth }
func (f Format) wantsHTML() bool { return f == FormatHTML || f.wantsPDF() }

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides

	// HeaderFooter prints the document title on top of each page and
	// "page / total" at the bottom.
	HeaderFooter bool
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if _, ok := paperSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Input holds one document to convert.
type Input struct {
	Markdown      string
	SourceDir     string        // relative image paths resolve here
	Format        Format        // empty = FormatDOCX
	Theme         string        // preset name; empty = front matter theme, then default
	ThemeOverride *Theme        // merged over the selected preset
	Page          *PageSettings // nil = DefaultPageSettings, PDF only
}

// Validate checks the format, page settings and theme override.
func (in Input) Validate() error {
	if err := in.Format.Validate(); err != nil {
		return err
	}
	if err := in.Page.Validate(); err != nil {
		return err
	}
	if in.ThemeOverride != nil {
		if err := in.ThemeOverride.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
		}
	}
	return nil
}

// Metadata is what the front matter block declared.
type Metadata struct {
	Title  string
	Author string
	Theme  string
	Custom map[string]any
}

// ConvertResult holds the outputs of one conversion. Only the byte slices
// for the requested Format are set; HTML is also set whenever PDF is.
type ConvertResult struct {
	DOCX     []byte
	HTML     []byte
	PDF      []byte
	Metadata Metadata
	Theme    Theme
	Document *Document

	// Warnings lists the images and diagrams that could not be resolved, in
	// document order. Each wraps the collaborator's error, so errors.Is
	// matches ErrImageFetch, ErrImageTooLarge or ErrDiagramRender.
	Warnings []error
}

// defaultTimeout bounds a whole conversion when WithTimeout is not used.
const defaultTimeout = 30 * time.Second
