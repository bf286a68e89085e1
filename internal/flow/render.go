package flow

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2doc/internal/ast"
	"github.com/alnah/go-md2doc/internal/theme"
)

const (
	headingBefore       = 240
	headingAfter        = 120
	defaultParaAfter    = 200
	blockSpacing        = 120
	codeSize            = 20
	quoteIndent         = 720
	borderColor         = "CCCCCC"
	borderSize          = 6
	borderStyleSingle   = "single"
	twipsPerPoint       = 20
	taskCheckedPrefix   = "[x] "
	taskUncheckedPrefix = "[ ] "
)

// headingSizes are the run sizes, in half-points, for levels 1 to 6.
var headingSizes = [...]int{32, 28, 26, 24, 22, 20}

// Render converts doc to the flow model using th. It is pure: the same tree
// and theme always produce the same output and doc is not modified.
//
// Known limitations: list items keep only their first paragraph, tables
// become one paragraph of pipe-separated text and images render as a
// "[Image: alt]" placeholder whether or not their bytes were resolved.
func Render(doc *ast.Document, th theme.Theme) *Document {
	r := renderer{theme: th}
	out := &Document{}
	if doc != nil {
		out.Paragraphs = r.blocks(doc.Children)
	}
	return out
}

type renderer struct {
	theme theme.Theme
}

func (r renderer) blocks(blocks []ast.Block) []*Paragraph {
	var out []*Paragraph
	for _, b := range blocks {
		out = append(out, r.block(b)...)
	}
	return out
}

func (r renderer) block(b ast.Block) []*Paragraph {
	switch n := b.(type) {
	case *ast.Heading:
		return []*Paragraph{r.heading(n)}
	case *ast.Paragraph:
		return []*Paragraph{{
			Style:   StyleNormal,
			Runs:    r.inlines(n.Children),
			Spacing: Spacing{After: r.paragraphAfter()},
		}}
	case *ast.List:
		return r.list(n)
	case *ast.ListItem:
		return r.list(&ast.List{Items: []*ast.ListItem{n}})
	case *ast.CodeBlock:
		return []*Paragraph{r.code(n.Code)}
	case *ast.Diagram:
		return []*Paragraph{r.code(n.Source)}
	case *ast.Blockquote:
		return r.blockquote(n)
	case *ast.Table:
		return []*Paragraph{r.table(n)}
	case *ast.HorizontalRule:
		return []*Paragraph{{
			Style:   StyleRule,
			Spacing: Spacing{Before: blockSpacing, After: blockSpacing},
			Borders: Borders{Bottom: rule()},
		}}
	default:
		return nil
	}
}

func (r renderer) heading(n *ast.Heading) *Paragraph {
	level := min(max(n.Level, 1), len(headingSizes))
	base := TextRun{
		Bold:  true,
		Font:  r.theme.Fonts.Heading,
		Size:  headingSizes[level-1],
		Color: hexColor(r.theme.Colors.Primary),
	}
	return &Paragraph{
		Style:        fmt.Sprintf("%s%d", StyleHeading, level),
		HeadingLevel: level,
		Runs:         r.runs(n.Children, base),
		Spacing:      Spacing{Before: headingBefore, After: headingAfter},
	}
}

func (r renderer) paragraphAfter() int {
	if ps := r.theme.Spacing.ParagraphSpacing; ps > 0 {
		return int(ps * twipsPerPoint)
	}
	return defaultParaAfter
}

// list emits one paragraph per item built from the item's first paragraph.
// Any further blocks of an item, nested lists included, are not rendered.
func (r renderer) list(n *ast.List) []*Paragraph {
	out := make([]*Paragraph, 0, len(n.Items))
	for i, item := range n.Items {
		p := &Paragraph{
			Style: StyleList,
			List:  &ListMarker{Ordered: n.Ordered},
		}
		if n.Ordered {
			p.List.Number = n.Start + i
		}
		if item.Checked != nil {
			prefix := taskUncheckedPrefix
			if *item.Checked {
				prefix = taskCheckedPrefix
			}
			p.Runs = append(p.Runs, &TextRun{Text: prefix, Font: r.theme.Fonts.Body})
		}
		if first := firstParagraph(item); first != nil {
			p.Runs = append(p.Runs, r.inlines(first.Children)...)
		}
		out = append(out, p)
	}
	return out
}

func firstParagraph(item *ast.ListItem) *ast.Paragraph {
	for _, c := range item.Children {
		if p, ok := c.(*ast.Paragraph); ok {
			return p
		}
	}
	return nil
}

func (r renderer) code(text string) *Paragraph {
	return &Paragraph{
		Style: StyleCode,
		Runs: []Run{&TextRun{
			Text: text,
			Font: r.codeFont(),
			Size: codeSize,
		}},
		Shading: hexColor(r.theme.Colors.Code),
		Spacing: Spacing{Before: blockSpacing, After: blockSpacing},
	}
}

// blockquote renders the quoted blocks and decorates every resulting
// paragraph with the quote indent and left border.
func (r renderer) blockquote(n *ast.Blockquote) []*Paragraph {
	paras := r.blocks(n.Children)
	for _, p := range paras {
		p.Indent.Left = quoteIndent
		p.Borders.Left = rule()
		if p.Style == StyleNormal {
			p.Style = StyleQuote
		}
	}
	return paras
}

// table flattens the header and body rows to " | "-joined plain text, one
// line per row.
func (r renderer) table(n *ast.Table) *Paragraph {
	rows := append([]ast.Row{n.Header}, n.Rows...)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = ast.PlainText(c.Children)
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return &Paragraph{
		Style:   StyleTable,
		Runs:    []Run{&TextRun{Text: strings.Join(lines, "\n"), Font: r.theme.Fonts.Body}},
		Spacing: Spacing{Before: blockSpacing, After: blockSpacing},
	}
}

func (r renderer) inlines(inlines []ast.Inline) []Run {
	return r.runs(inlines, TextRun{Font: r.theme.Fonts.Body})
}

// runs converts inlines to runs derived from base. Text flags add to the
// base formatting; code text switches to the code font.
func (r renderer) runs(inlines []ast.Inline, base TextRun) []Run {
	runs := make([]Run, 0, len(inlines))
	for _, in := range inlines {
		switch n := in.(type) {
		case *ast.Text:
			tr := base
			tr.Text = n.Value
			tr.Bold = tr.Bold || n.Bold
			tr.Italic = n.Italic
			tr.Strike = n.Strikethrough
			if n.Code {
				tr.Font = r.codeFont()
			}
			runs = append(runs, &tr)
		case *ast.Link:
			runs = append(runs, &Hyperlink{
				URL: n.URL,
				Runs: []*TextRun{{
					Text:  ast.PlainText(n.Children),
					Style: StyleHyperlink,
				}},
			})
		case *ast.Image:
			tr := base
			tr.Text = "[Image: " + n.Alt + "]"
			runs = append(runs, &tr)
		}
	}
	return runs
}

func (r renderer) codeFont() string {
	if f := r.theme.Fonts.Code; f != "" {
		return f
	}
	return "Courier New"
}

func rule() *Border {
	return &Border{Style: borderStyleSingle, Color: borderColor, Size: borderSize, Space: 1}
}

// hexColor converts "#RGB" or "#RRGGBB" to the upper-case "RRGGBB" form.
func hexColor(c string) string {
	c = strings.TrimPrefix(c, "#")
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	return strings.ToUpper(c)
}
