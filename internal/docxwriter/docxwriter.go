// Package docxwriter serialises a flow document to Office Open XML (.docx).
//
// The writer maps paragraph styles, run formatting, shading, indentation and
// hyperlinks onto go-docx. go-docx has no paragraph borders and no space
// after a paragraph: a left border becomes a coloured bar at the start of
// the paragraph, a bottom rule becomes a centred separator line, and the
// space after a paragraph is carried over to the space before the next one.
package docxwriter

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/alnah/go-md2doc/internal/flow"
)

// ErrWrite indicates the document could not be serialised.
var ErrWrite = errors.New("docx write failed")

const (
	ruleText    = "* * *"
	barText     = "▎ "
	bulletGlyph = "• "
	fontHint    = "default"
)

// Write serialises doc to w.
func Write(w io.Writer, doc *flow.Document) error {
	if doc == nil {
		doc = &flow.Document{}
	}
	f := docx.New().WithDefaultTheme()
	prevAfter := 0
	for _, p := range doc.Paragraphs {
		writeParagraph(f, p, max(p.Spacing.Before, prevAfter))
		prevAfter = p.Spacing.After
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// writeParagraph emits p. Newlines inside text runs start a new docx
// paragraph with the same paragraph settings, since a w:t element cannot
// carry a line break. before is the space above the first docx paragraph.
func writeParagraph(f *docx.Docx, p *flow.Paragraph, before int) {
	para := newParagraph(f, p, before)
	if p.Borders.Bottom != nil && len(p.Runs) == 0 {
		para.Justification("center")
		para.AddText(ruleText).Color(p.Borders.Bottom.Color)
		return
	}
	if p.List != nil {
		para.AddText(listPrefix(p.List))
	}

	for _, run := range p.Runs {
		switch r := run.(type) {
		case *flow.TextRun:
			lines := strings.Split(r.Text, "\n")
			for i, line := range lines {
				if i > 0 {
					para = newParagraph(f, p, 0)
				}
				if line != "" {
					formatRun(para.AddText(line), r, p.Shading)
				}
			}
		case *flow.Hyperlink:
			para.AddLink(linkText(r), r.URL)
		}
	}
}

func newParagraph(f *docx.Docx, p *flow.Paragraph, before int) *docx.Paragraph {
	para := f.AddParagraph()
	para.Properties = &docx.ParagraphProperties{}
	if p.Style != "" {
		para.Properties.Style = &docx.Style{Val: p.Style}
	}
	if before > 0 {
		para.Properties.Spacing = &docx.Spacing{Before: before}
	}
	if p.Indent.Left > 0 {
		para.Properties.Ind = &docx.Ind{Left: p.Indent.Left}
	}
	if p.Shading != "" {
		para.Properties.Shade = &docx.Shade{Val: "clear", Color: "auto", Fill: p.Shading}
	}
	if b := p.Borders.Left; b != nil {
		bar := para.AddText(barText)
		if b.Color != "" {
			bar.Color(b.Color)
		}
	}
	return para
}

func formatRun(run *docx.Run, r *flow.TextRun, shading string) {
	if r.Bold {
		run.Bold()
	}
	if r.Italic {
		run.Italic()
	}
	if r.Strike {
		run.Strike(true)
	}
	if r.Size > 0 {
		run.Size(strconv.Itoa(r.Size))
	}
	if r.Color != "" {
		run.Color(r.Color)
	}
	if r.Font != "" {
		run.Font(r.Font, r.Font, r.Font, fontHint)
	}
	if shading != "" {
		run.Shade("clear", "auto", shading)
	}
}

func listPrefix(m *flow.ListMarker) string {
	if m.Ordered {
		return strconv.Itoa(m.Number) + ". "
	}
	return bulletGlyph
}

func linkText(h *flow.Hyperlink) string {
	var b strings.Builder
	for _, r := range h.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
