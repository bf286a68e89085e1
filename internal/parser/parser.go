// Package parser turns Markdown text into the typed document tree.
//
// Parsing is done by goldmark with the GFM extension set. The goldmark tree is
// then walked once and mapped onto package ast; constructs that have no
// counterpart there are skipped with a warning instead of failing the parse.
package parser

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-md2doc/internal/ast"
)

// diagramLanguage is the fence info string that turns a code block into a diagram.
const diagramLanguage = "mermaid"

// Parser converts Markdown to an ast.Document. It is safe for concurrent use.
type Parser struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger receiving skipped-construct warnings.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Parser with GFM tables, strikethrough, task lists and linkify.
func New(opts ...Option) *Parser {
	p := &Parser{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// Parse converts src with a parser that discards warnings.
func Parse(src string) *ast.Document {
	return defaultParser.Parse(src)
}

// Parse converts src into a Document. It never fails: empty input yields a
// document without children and unsupported constructs are dropped.
func (p *Parser) Parse(src string) *ast.Document {
	source := []byte(src)
	root := p.md.Parser().Parse(text.NewReader(source))

	m := &mapper{source: source, logger: p.logger}
	return &ast.Document{Children: m.blocks(root)}
}

// mapper holds the per-parse state of one goldmark tree walk.
type mapper struct {
	source []byte
	logger *slog.Logger
}

// style is the set of inline flags inherited from enclosing marks.
type style struct {
	bold, italic, strike bool
}

func (m *mapper) blocks(parent gast.Node) []ast.Block {
	var out []ast.Block
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if b := m.block(c); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (m *mapper) block(n gast.Node) ast.Block {
	switch n := n.(type) {
	case *gast.Heading:
		return &ast.Heading{Level: n.Level, Children: m.inlines(n, style{})}
	case *gast.Paragraph:
		return &ast.Paragraph{Children: m.inlines(n, style{})}
	case *gast.TextBlock:
		return &ast.Paragraph{Children: m.inlines(n, style{})}
	case *gast.List:
		return m.list(n)
	case *gast.FencedCodeBlock:
		lang := string(n.Language(m.source))
		code := m.lines(n)
		if lang == diagramLanguage {
			return &ast.Diagram{Source: code}
		}
		return &ast.CodeBlock{Language: lang, Code: code}
	case *gast.CodeBlock:
		return &ast.CodeBlock{Code: m.lines(n)}
	case *gast.Blockquote:
		return &ast.Blockquote{Children: m.blocks(n)}
	case *gast.ThematicBreak:
		return &ast.HorizontalRule{}
	case *extast.Table:
		return m.table(n)
	default:
		m.logger.Warn("unhandled markdown block", "kind", n.Kind().String())
		return nil
	}
}

func (m *mapper) list(n *gast.List) *ast.List {
	list := &ast.List{Ordered: n.IsOrdered(), Start: n.Start}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		li, ok := c.(*gast.ListItem)
		if !ok {
			continue
		}
		item := &ast.ListItem{}
		if box := taskCheckBox(li); box != nil {
			checked := box.IsChecked
			item.Checked = &checked
			box.Parent().RemoveChild(box.Parent(), box)
		}
		item.Children = m.blocks(li)
		if item.Checked != nil {
			trimLeadingSpace(item.Children)
		}
		list.Items = append(list.Items, item)
	}
	return list
}

// taskCheckBox returns the checkbox goldmark places at the start of a task
// item's first paragraph, if any.
func taskCheckBox(li *gast.ListItem) *extast.TaskCheckBox {
	first := li.FirstChild()
	if first == nil {
		return nil
	}
	box, _ := first.FirstChild().(*extast.TaskCheckBox)
	return box
}

// trimLeadingSpace drops the blank left between a removed checkbox and the
// item text.
func trimLeadingSpace(blocks []ast.Block) {
	if len(blocks) == 0 {
		return
	}
	p, ok := blocks[0].(*ast.Paragraph)
	if !ok || len(p.Children) == 0 {
		return
	}
	if t, ok := p.Children[0].(*ast.Text); ok {
		t.Value = strings.TrimLeft(t.Value, " \t")
	}
}

func (m *mapper) table(n *extast.Table) *ast.Table {
	t := &ast.Table{}
	for _, a := range n.Alignments {
		t.Align = append(t.Align, alignment(a))
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch r := c.(type) {
		case *extast.TableHeader:
			t.Header = m.row(r)
		case *extast.TableRow:
			t.Rows = append(t.Rows, m.row(r))
		}
	}
	return t
}

func (m *mapper) row(n gast.Node) ast.Row {
	var row ast.Row
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*extast.TableCell); !ok {
			continue
		}
		row.Cells = append(row.Cells, ast.Cell{Children: m.inlines(c, style{})})
	}
	return row
}

func alignment(a extast.Alignment) ast.Alignment {
	switch a {
	case extast.AlignLeft:
		return ast.AlignLeft
	case extast.AlignCenter:
		return ast.AlignCenter
	case extast.AlignRight:
		return ast.AlignRight
	default:
		return ast.AlignNone
	}
}

// lines joins the raw lines of a code block without the final newline.
func (m *mapper) lines(n gast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(m.source))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// inlines maps the inline children of n, merging adjacent text leaves that
// carry identical flags.
func (m *mapper) inlines(n gast.Node, st style) []ast.Inline {
	var out []ast.Inline
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = appendInlines(out, m.inline(c, st)...)
	}
	return out
}

func (m *mapper) inline(n gast.Node, st style) []ast.Inline {
	switch n := n.(type) {
	case *gast.Text:
		v := string(unescape(n.Segment.Value(m.source)))
		if n.SoftLineBreak() || n.HardLineBreak() {
			v += "\n"
		}
		return []ast.Inline{st.text(v)}
	case *gast.String:
		v := n.Value
		if !n.IsCode() {
			v = unescape(v)
		}
		return []ast.Inline{st.text(string(v))}
	case *gast.Emphasis:
		inner := st
		if n.Level >= 2 {
			inner.bold = true
		} else {
			inner.italic = true
		}
		return m.inlines(n, inner)
	case *extast.Strikethrough:
		inner := st
		inner.strike = true
		return m.inlines(n, inner)
	case *gast.CodeSpan:
		t := st.text(m.codeSpan(n))
		t.Code = true
		return []ast.Inline{t}
	case *gast.Link:
		return []ast.Inline{&ast.Link{
			URL:      string(n.Destination),
			Title:    string(n.Title),
			Children: m.inlines(n, st),
		}}
	case *gast.AutoLink:
		return []ast.Inline{&ast.Link{
			URL:      string(n.URL(m.source)),
			Children: []ast.Inline{st.text(string(n.Label(m.source)))},
		}}
	case *gast.Image:
		return []ast.Inline{&ast.Image{
			Source: string(n.Destination),
			Title:  string(n.Title),
			Alt:    ast.PlainText(m.inlines(n, style{})),
		}}
	case *extast.TaskCheckBox:
		return nil
	default:
		m.logger.Warn("unhandled markdown inline", "kind", n.Kind().String())
		return nil
	}
}

// codeSpan returns the literal content of a code span. A line ending inside
// the span reads as a single space.
func (m *mapper) codeSpan(n *gast.CodeSpan) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		var v []byte
		switch t := c.(type) {
		case *gast.Text:
			v = t.Segment.Value(m.source)
		case *gast.String:
			v = t.Value
		}
		if trimmed, ok := bytes.CutSuffix(v, []byte("\n")); ok {
			b.Write(bytes.TrimSuffix(trimmed, []byte("\r")))
			b.WriteByte(' ')
			continue
		}
		b.Write(v)
	}
	return b.String()
}

func (st style) text(v string) *ast.Text {
	return &ast.Text{Value: v, Bold: st.bold, Italic: st.italic, Strikethrough: st.strike}
}

// appendInlines appends items to out, folding a text leaf into the preceding
// one when their flags match.
func appendInlines(out []ast.Inline, items ...ast.Inline) []ast.Inline {
	for _, in := range items {
		t, ok := in.(*ast.Text)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*ast.Text); ok && sameFlags(prev, t) {
				prev.Value += t.Value
				continue
			}
		}
		out = append(out, in)
	}
	return out
}

func sameFlags(a, b *ast.Text) bool {
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Code == b.Code && a.Strikethrough == b.Strikethrough
}

// unescape resolves backslash escapes and character references the way
// goldmark's own HTML writer does for text segments.
func unescape(v []byte) []byte {
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	return util.ResolveEntityNames(v)
}
