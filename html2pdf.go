package md2doc

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

// pdfConverter abstracts HTML to PDF conversion to allow different backends.
type pdfConverter interface {
	ToPDF(ctx context.Context, htmlContent []byte, page *PageSettings) ([]byte, error)
}

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error)
}

// Compile-time interface checks
var (
	_ pdfConverter = (*rodConverter)(nil)
	_ pdfRenderer  = (*rodRenderer)(nil)
)

// Header and footer printed by Chrome when PageSettings.HeaderFooter is set.
// The title and page counters are filled from the document's <title> and the
// print job.
const (
	headerTemplate = `<div style="font-size: 9px; text-align: center; width: 100%; margin: 0 20px;"><span class="title"></span></div>`
	footerTemplate = `<div style="font-size: 9px; text-align: center; width: 100%; margin: 0 20px;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`

	marginWithHeaderFooter = 0.75 // room for the header and footer bands
)

// paperSizes holds portrait width and height in inches.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// rodRenderer implements pdfRenderer using the converter's shared browser.
type rodRenderer struct {
	browser *browser
	timeout time.Duration
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it to PDF.
// Returns explicit errors instead of panicking when browser operations fail.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error) {
	p, err := r.browser.open(ctx, "file://"+filePath, r.timeout)
	if err != nil {
		return nil, err
	}
	defer func() { _ = p.Close() }()

	reader, err := p.Context(ctx).PDF(buildPDFOptions(page))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// buildPDFOptions maps page settings to Chrome's print options. A nil page
// uses DefaultPageSettings; landscape swaps the paper dimensions. With
// HeaderFooter the top and bottom margins grow to fit the bands.
func buildPDFOptions(page *PageSettings) *proto.PagePrintToPDF {
	if page == nil {
		page = DefaultPageSettings()
	}

	size, ok := paperSizes[strings.ToLower(page.Size)]
	if !ok {
		size = paperSizes[PageSizeLetter]
	}
	width, height := size[0], size[1]
	if strings.EqualFold(page.Orientation, OrientationLandscape) {
		width, height = height, width
	}

	margin := page.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}

	vertical := margin
	if page.HeaderFooter {
		vertical = max(margin, marginWithHeaderFooter)
	}

	opts := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(vertical),
		MarginBottom:    floatPtr(vertical),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	}

	if page.HeaderFooter {
		opts.DisplayHeaderFooter = true
		opts.HeaderTemplate = headerTemplate
		opts.FooterTemplate = footerTemplate
	}

	return opts
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// rodConverter converts HTML to PDF using headless Chrome via go-rod.
type rodConverter struct {
	renderer pdfRenderer
}

// newRodConverter creates a rodConverter rendering through b.
func newRodConverter(b *browser, timeout time.Duration) *rodConverter {
	return &rodConverter{
		renderer: &rodRenderer{browser: b, timeout: timeout},
	}
}

// ToPDF writes the HTML to a temporary file and prints it to PDF. Going
// through a file keeps data URIs and local references loadable.
func (c *rodConverter) ToPDF(ctx context.Context, htmlContent []byte, page *PageSettings) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.RenderFromFile(ctx, tmpPath, page)
}
