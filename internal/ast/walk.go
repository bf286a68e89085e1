package ast

import "strings"

// WalkFunc is called for each node. Returning false skips the node's children.
type WalkFunc func(n Node) bool

// Walk traverses doc depth-first in document order. Table header cells are
// visited before body cells; link children are visited after the link.
func Walk(doc *Document, fn WalkFunc) {
	if doc == nil {
		return
	}
	if !fn(doc) {
		return
	}
	walkBlocks(doc.Children, fn)
}

func walkBlocks(blocks []Block, fn WalkFunc) {
	for _, b := range blocks {
		walkBlock(b, fn)
	}
}

func walkBlock(b Block, fn WalkFunc) {
	if !fn(b) {
		return
	}
	switch n := b.(type) {
	case *Heading:
		walkInlines(n.Children, fn)
	case *Paragraph:
		walkInlines(n.Children, fn)
	case *List:
		for _, item := range n.Items {
			walkBlock(item, fn)
		}
	case *ListItem:
		walkBlocks(n.Children, fn)
	case *Table:
		walkRow(n.Header, fn)
		for _, row := range n.Rows {
			walkRow(row, fn)
		}
	case *Blockquote:
		walkBlocks(n.Children, fn)
	case *CodeBlock, *Diagram, *HorizontalRule:
	}
}

func walkRow(row Row, fn WalkFunc) {
	for _, cell := range row.Cells {
		walkInlines(cell.Children, fn)
	}
}

func walkInlines(inlines []Inline, fn WalkFunc) {
	for _, in := range inlines {
		if !fn(in) {
			continue
		}
		if link, ok := in.(*Link); ok {
			walkInlines(link.Children, fn)
		}
	}
}

// PlainText flattens inline content to its literal text. Images contribute
// their alt text.
func PlainText(inlines []Inline) string {
	var b strings.Builder
	writePlain(&b, inlines)
	return b.String()
}

func writePlain(b *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch n := in.(type) {
		case *Text:
			b.WriteString(n.Value)
		case *Link:
			writePlain(b, n.Children)
		case *Image:
			b.WriteString(n.Alt)
		}
	}
}
