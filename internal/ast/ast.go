// Package ast defines the typed document tree produced by the Markdown parser
// and consumed by both renderers.
//
// Block and Inline are closed sum types: every variant lives in this package
// and implements an unexported marker method, so renderers dispatch with an
// exhaustive type switch. The go-check-sumtype linter reads the sumtype
// declarations below and flags switches that miss a variant.
package ast

import "sync/atomic"

// Node is any element of the tree.
type Node interface {
	isNode()
}

// Block is a block-level node.
//
//sumtype:decl
type Block interface {
	Node
	isBlock()
}

// Inline is an inline node living inside headings, paragraphs, cells and links.
//
//sumtype:decl
type Inline interface {
	Node
	isInline()
}

// Document is the root of a parsed Markdown source.
type Document struct {
	Children []Block
}

// Heading is an ATX or setext heading, Level 1 to 6.
type Heading struct {
	Level    int
	Children []Inline
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Children []Inline
}

// List is a bullet or ordered list. Start is meaningful only when Ordered.
type List struct {
	Ordered bool
	Start   int
	Items   []*ListItem
}

// ListItem holds the blocks of a single list entry.
// Checked is nil for regular items and set for task-list items.
type ListItem struct {
	Children []Block
	Checked  *bool
}

// Alignment is the horizontal alignment of a table column.
type Alignment int

// Column alignments.
const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns the CSS keyword for the alignment, or "" for AlignNone.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return ""
	}
}

// Cell is a table cell. Cells only ever hold inline content.
type Cell struct {
	Children []Inline
}

// Row is an ordered sequence of cells. Rows of one table may differ in arity.
type Row struct {
	Cells []Cell
}

// Table is a GFM table with one header row.
type Table struct {
	Header Row
	Rows   []Row
	Align  []Alignment
}

// CodeBlock is a fenced or indented code block. Fences tagged "mermaid"
// never produce a CodeBlock; see Diagram.
type CodeBlock struct {
	Language string
	Code     string
}

// Diagram is a Mermaid diagram. Its rendered image is attached during
// enrichment; until then Data returns nil.
type Diagram struct {
	Source  string
	payload payload
}

// Blockquote holds nested blocks.
type Blockquote struct {
	Children []Block
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// Text is a literal run. Formatting flags compose independently.
type Text struct {
	Value         string
	Bold          bool
	Italic        bool
	Code          bool
	Strikethrough bool
}

// Link is a hyperlink wrapping inline content.
type Link struct {
	URL      string
	Title    string
	Children []Inline
}

// Image is an inline image reference. Its bytes are attached during
// enrichment; until then Data returns nil.
type Image struct {
	Source  string
	Alt     string
	Title   string
	payload payload
}

func (*Document) isNode()       {}
func (*Heading) isNode()        {}
func (*Paragraph) isNode()      {}
func (*List) isNode()           {}
func (*ListItem) isNode()       {}
func (*Table) isNode()          {}
func (*CodeBlock) isNode()      {}
func (*Diagram) isNode()        {}
func (*Blockquote) isNode()     {}
func (*HorizontalRule) isNode() {}
func (*Text) isNode()           {}
func (*Link) isNode()           {}
func (*Image) isNode()          {}

func (*Heading) isBlock()        {}
func (*Paragraph) isBlock()      {}
func (*List) isBlock()           {}
func (*ListItem) isBlock()       {}
func (*Table) isBlock()          {}
func (*CodeBlock) isBlock()      {}
func (*Diagram) isBlock()        {}
func (*Blockquote) isBlock()     {}
func (*HorizontalRule) isBlock() {}

func (*Text) isInline()  {}
func (*Link) isInline()  {}
func (*Image) isInline() {}

// payload is a write-once byte slot. It moves from absent to present at most
// once and is never cleared.
type payload struct {
	data atomic.Pointer[[]byte]
}

func (p *payload) get() []byte {
	if b := p.data.Load(); b != nil {
		return *b
	}
	return nil
}

func (p *payload) set(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return p.data.CompareAndSwap(nil, &cp)
}

// Data returns the resolved image bytes, or nil when unresolved.
// Callers must not modify the returned slice.
func (n *Image) Data() []byte { return n.payload.get() }

// Resolved reports whether image bytes have been attached.
func (n *Image) Resolved() bool { return n.payload.data.Load() != nil }

// Data returns the rendered diagram image, or nil when unrendered.
// Callers must not modify the returned slice.
func (n *Diagram) Data() []byte { return n.payload.get() }

// Resolved reports whether a rendered image has been attached.
func (n *Diagram) Resolved() bool { return n.payload.data.Load() != nil }

// Enrichable is implemented by nodes carrying a write-once payload.
type Enrichable interface {
	Node
	Resolved() bool
	Data() []byte
	slot() *payload
}

func (n *Image) slot() *payload   { return &n.payload }
func (n *Diagram) slot() *payload { return &n.payload }

// Attach stores a copy of data as the node's payload. It is the only way to
// write a payload and reports false, leaving the node untouched, when data is
// empty or a payload is already present.
func Attach(n Enrichable, data []byte) bool {
	return n.slot().set(data)
}
