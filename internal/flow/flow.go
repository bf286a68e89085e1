// Package flow renders a document tree into a word-processor model: a flat
// sequence of paragraphs made of styled text runs and hyperlinks.
//
// The model carries measurements in the units word processors use. Spacing
// and indentation are twentieths of a point (twips), font sizes are
// half-points and colours are hex RGB without a leading '#'.
package flow

// Paragraph styles.
const (
	StyleNormal    = "Normal"
	StyleHeading   = "Heading" // suffixed with the level, e.g. Heading2
	StyleCode      = "Code"
	StyleQuote     = "Quote"
	StyleList      = "ListParagraph"
	StyleTable     = "Table"
	StyleRule      = "Rule"
	StyleHyperlink = "Hyperlink"
)

// Document is an ordered list of paragraphs.
type Document struct {
	Paragraphs []*Paragraph
}

// Paragraph is one block of the flow model.
type Paragraph struct {
	Style        string
	HeadingLevel int // 1-6 for headings, 0 otherwise
	Runs         []Run
	Spacing      Spacing
	Indent       Indent
	Borders      Borders
	Shading      string // background fill, "" for none
	List         *ListMarker
}

// Spacing is the space before and after a paragraph, in twips.
type Spacing struct {
	Before int
	After  int
}

// Indent is the paragraph indentation, in twips.
type Indent struct {
	Left int
}

// Borders holds the optional paragraph borders.
type Borders struct {
	Left   *Border
	Bottom *Border
}

// Border is a single paragraph border line. Size is in eighths of a point
// and Space in points.
type Border struct {
	Style string
	Color string
	Size  int
	Space int
}

// ListMarker marks a paragraph as a list entry.
type ListMarker struct {
	Ordered bool
	Number  int // 1-based position for ordered lists
}

// Run is a piece of paragraph content: *TextRun or *Hyperlink.
//
//sumtype:decl
type Run interface {
	isRun()
}

// TextRun is a span of uniformly formatted text. Zero values mean "inherit".
type TextRun struct {
	Text   string
	Bold   bool
	Italic bool
	Strike bool
	Font   string
	Size   int // half-points
	Color  string
	Style  string
}

// Hyperlink wraps runs pointing at URL.
type Hyperlink struct {
	URL  string
	Runs []*TextRun
}

func (*TextRun) isRun()   {}
func (*Hyperlink) isRun() {}

// Text returns the concatenated text of the paragraph's runs.
func (p *Paragraph) Text() string {
	var s string
	for _, r := range p.Runs {
		switch r := r.(type) {
		case *TextRun:
			s += r.Text
		case *Hyperlink:
			for _, tr := range r.Runs {
				s += tr.Text
			}
		}
	}
	return s
}
