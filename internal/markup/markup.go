// Package markup renders a document tree into an HTML node tree with an
// accompanying theme stylesheet, ready to be serialised or paginated.
//
// All text is carried in html.TextNode values and escaped by html.Render, so
// document content (code included) can never be interpreted as markup.
package markup

import (
	"bytes"
	"encoding/base64"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-md2doc/internal/ast"
	"github.com/alnah/go-md2doc/internal/theme"
)

// defaultTitle is used when the document has no level-1 heading.
const defaultTitle = "Document"

// diagramAlt is the alt text of rendered diagram images.
const diagramAlt = "Mermaid diagram"

// Asset records a payload embedded into the markup as a data URI.
type Asset struct {
	Kind      string // "image" or "diagram"
	Ref       string // image source or first line of the diagram
	MediaType string
	Size      int
}

// Result is the rendered markup.
type Result struct {
	Root       *html.Node // document node, doctype included
	Title      string
	Stylesheet string // sanitised for embedding in a style element
	Assets     []Asset
}

// HTML serialises the tree.
func (r *Result) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, r.Root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render converts doc to markup styled by th. It is pure and does not modify
// doc. Resolved images and diagrams are embedded as data URIs; unresolved
// ones fall back to their source reference or an escaped source listing.
func Render(doc *ast.Document, th theme.Theme) *Result {
	r := &renderer{}
	if doc == nil {
		doc = &ast.Document{}
	}

	res := &Result{
		Title:      title(doc),
		Stylesheet: Stylesheet(th),
	}

	body := elem(atom.Body)
	for _, n := range r.blocks(doc.Children) {
		body.AppendChild(n)
	}

	head := elem(atom.Head)
	head.AppendChild(elem(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(elem(atom.Meta, attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1")))
	head.AppendChild(withText(elem(atom.Title), res.Title))
	// style is a raw-text element: html.Render writes its text unescaped.
	head.AppendChild(withText(elem(atom.Style), res.Stylesheet))

	root := elem(atom.Html, attr("lang", "en"))
	root.AppendChild(head)
	root.AppendChild(body)

	res.Root = &html.Node{Type: html.DocumentNode}
	res.Root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	res.Root.AppendChild(root)
	res.Assets = r.assets
	return res
}

// title returns the plain text of the first level-1 heading.
func title(doc *ast.Document) string {
	found := ""
	ast.Walk(doc, func(n ast.Node) bool {
		if found != "" {
			return false
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			found = ast.PlainText(h.Children)
			return false
		}
		return true
	})
	if found == "" {
		return defaultTitle
	}
	return found
}

type renderer struct {
	assets []Asset
}

func (r *renderer) blocks(blocks []ast.Block) []*html.Node {
	out := make([]*html.Node, 0, len(blocks))
	for _, b := range blocks {
		if n := r.block(b); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (r *renderer) block(b ast.Block) *html.Node {
	switch n := b.(type) {
	case *ast.Heading:
		level := min(max(n.Level, 1), 6)
		return r.withInlines(elem(headingAtoms[level-1]), n.Children)
	case *ast.Paragraph:
		return r.withInlines(elem(atom.P), n.Children)
	case *ast.List:
		return r.list(n)
	case *ast.ListItem:
		return r.item(n)
	case *ast.CodeBlock:
		return codeBlock(n.Language, n.Code)
	case *ast.Diagram:
		return r.diagram(n)
	case *ast.Blockquote:
		return appendAll(elem(atom.Blockquote), r.blocks(n.Children))
	case *ast.Table:
		return r.table(n)
	case *ast.HorizontalRule:
		return elem(atom.Hr)
	default:
		return nil
	}
}

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func (r *renderer) list(n *ast.List) *html.Node {
	var list *html.Node
	if n.Ordered {
		list = elem(atom.Ol)
		if n.Start != 1 {
			list.Attr = append(list.Attr, attr("start", strconv.Itoa(n.Start)))
		}
	} else {
		list = elem(atom.Ul)
	}
	for _, item := range n.Items {
		list.AppendChild(r.item(item))
	}
	return list
}

func (r *renderer) item(n *ast.ListItem) *html.Node {
	li := elem(atom.Li)
	if n.Checked != nil {
		li.Attr = append(li.Attr, attr("class", "task-list-item"))
		box := elem(atom.Input, attr("type", "checkbox"), attr("disabled", ""))
		if *n.Checked {
			box.Attr = append(box.Attr, attr("checked", ""))
		}
		li.AppendChild(box)
	}
	return appendAll(li, r.blocks(n.Children))
}

func (r *renderer) diagram(n *ast.Diagram) *html.Node {
	data := n.Data()
	if data == nil {
		pre := elem(atom.Pre, attr("class", "diagram-source"))
		pre.AppendChild(withText(elem(atom.Code, attr("class", "language-mermaid")), n.Source))
		return pre
	}
	src, mediaType := dataURI(data)
	r.assets = append(r.assets, Asset{Kind: "diagram", Ref: firstLine(n.Source), MediaType: mediaType, Size: len(data)})
	fig := elem(atom.Figure, attr("class", "diagram"))
	fig.AppendChild(elem(atom.Img, attr("src", src), attr("alt", diagramAlt)))
	return fig
}

// table renders rows exactly as given; rows of differing arity are kept.
func (r *renderer) table(n *ast.Table) *html.Node {
	table := elem(atom.Table)
	thead := elem(atom.Thead)
	thead.AppendChild(r.row(n.Header, atom.Th, n.Align))
	table.AppendChild(thead)

	tbody := elem(atom.Tbody)
	for _, row := range n.Rows {
		tbody.AppendChild(r.row(row, atom.Td, n.Align))
	}
	table.AppendChild(tbody)
	return table
}

func (r *renderer) row(row ast.Row, cellAtom atom.Atom, align []ast.Alignment) *html.Node {
	tr := elem(atom.Tr)
	for i, c := range row.Cells {
		cell := elem(cellAtom)
		if i < len(align) && align[i] != ast.AlignNone {
			cell.Attr = append(cell.Attr, attr("style", "text-align: "+align[i].String()))
		}
		tr.AppendChild(r.withInlines(cell, c.Children))
	}
	return tr
}

func (r *renderer) withInlines(parent *html.Node, inlines []ast.Inline) *html.Node {
	for _, in := range inlines {
		if n := r.inline(in); n != nil {
			parent.AppendChild(n)
		}
	}
	return parent
}

func (r *renderer) inline(in ast.Inline) *html.Node {
	switch n := in.(type) {
	case *ast.Text:
		node := text(n.Value)
		if n.Bold {
			node = wrap(atom.Strong, node)
		}
		if n.Italic {
			node = wrap(atom.Em, node)
		}
		if n.Code {
			node = wrap(atom.Code, node)
		}
		if n.Strikethrough {
			node = wrap(atom.Del, node)
		}
		return node
	case *ast.Link:
		a := elem(atom.A, attr("href", n.URL))
		if n.Title != "" {
			a.Attr = append(a.Attr, attr("title", n.Title))
		}
		return r.withInlines(a, n.Children)
	case *ast.Image:
		return r.image(n)
	default:
		return nil
	}
}

func (r *renderer) image(n *ast.Image) *html.Node {
	src := n.Source
	if data := n.Data(); data != nil {
		var mediaType string
		src, mediaType = dataURI(data)
		r.assets = append(r.assets, Asset{Kind: "image", Ref: n.Source, MediaType: mediaType, Size: len(data)})
	}
	img := elem(atom.Img, attr("src", src), attr("alt", n.Alt))
	if n.Title != "" {
		img.Attr = append(img.Attr, attr("title", n.Title))
	}
	return img
}

func dataURI(data []byte) (uri, mediaType string) {
	mediaType = MediaType(data)
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), mediaType
}

func elem(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}

func wrap(a atom.Atom, child *html.Node) *html.Node {
	n := elem(a)
	n.AppendChild(child)
	return n
}

func appendAll(parent *html.Node, children []*html.Node) *html.Node {
	for _, c := range children {
		parent.AppendChild(c)
	}
	return parent
}

func firstLine(s string) string {
	if i := bytes.IndexByte([]byte(s), '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
