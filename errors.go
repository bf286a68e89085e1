package md2doc

import "errors"

// Sentinel errors for library operations.
var (
	ErrInvalidFormat  = errors.New("invalid output format")
	ErrInvalidTheme   = errors.New("invalid theme override")
	ErrInvalidOption  = errors.New("invalid converter option")
	ErrDOCXGeneration = errors.New("DOCX generation failed")
	ErrHTMLGeneration = errors.New("HTML generation failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPoolClosed     = errors.New("converter pool closed")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Enrichment errors. Enrich logs these and leaves the node unresolved;
	// they only surface to callers who use the resolvers directly.
	ErrDiagramRender = errors.New("diagram rendering failed")
	ErrImageTooLarge = errors.New("image exceeds size limit")
	ErrImageFetch    = errors.New("image could not be loaded")
)
