package md2doc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

// mermaidThemes are the themes the mermaid script ships with.
var mermaidThemes = map[string]bool{
	"default": true,
	"dark":    true,
	"forest":  true,
	"neutral": true,
	"base":    true,
}

// diagramTypes are the keywords a mermaid definition opens with. Longer
// variants such as stateDiagram-v2 match by prefix.
var diagramTypes = []string{
	"graph", "flowchart", "sequenceDiagram", "classDiagram", "stateDiagram",
	"erDiagram", "gantt", "pie", "journey", "gitGraph", "mindmap", "timeline",
	"quadrantChart", "requirementDiagram", "C4", "sankey", "xychart", "block",
	"packet", "architecture", "kanban", "radar",
}

// validateDiagram rejects empty sources and sources whose first statement is
// not a known diagram type, so they fail before a browser page is opened.
// Leading "%%" comment or directive lines and a "---" config block are skipped.
func validateDiagram(source string) error {
	lines := strings.Split(strings.TrimSpace(source), "\n")
	inConfig := false
	for i, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case line == "---" && (i == 0 || inConfig):
			inConfig = !inConfig
			continue
		case inConfig, line == "", strings.HasPrefix(line, "%%"):
			continue
		}
		for _, kw := range diagramTypes {
			if strings.HasPrefix(line, kw) {
				return nil
			}
		}
		keyword, _, _ := strings.Cut(line, " ")
		return fmt.Errorf("%w: unknown diagram type %q", ErrDiagramRender, keyword)
	}
	return fmt.Errorf("%w: empty diagram", ErrDiagramRender)
}

// renderMermaidJS runs inside the diagram page. Eval awaits the promise.
const renderMermaidJS = `async (source, theme) => {
	mermaid.initialize({ startOnLoad: false, theme: theme, securityLevel: "strict" });
	const { svg } = await mermaid.render("md2doc-diagram", source);
	return svg;
}`

// rodDiagramRenderer renders Mermaid source to SVG in the converter's
// shared headless browser.
type rodDiagramRenderer struct {
	browser *browser
	script  string
	theme   string
	timeout time.Duration
}

var _ DiagramRenderer = (*rodDiagramRenderer)(nil)

// newRodDiagramRenderer falls back to the "default" theme for unknown names.
func newRodDiagramRenderer(b *browser, script, theme string, timeout time.Duration) *rodDiagramRenderer {
	if !mermaidThemes[theme] {
		theme = "default"
	}
	return &rodDiagramRenderer{browser: b, script: script, theme: theme, timeout: timeout}
}

// RenderDiagram returns the SVG produced by mermaid for source.
func (r *rodDiagramRenderer) RenderDiagram(ctx context.Context, source string) ([]byte, error) {
	if err := validateDiagram(source); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(diagramPage(r.script), "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := r.browser.open(ctx, "file://"+path, r.timeout)
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()

	res, err := page.Context(ctx).Timeout(r.timeout).Eval(renderMermaidJS, source, r.theme)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}

	svg := res.Value.Str()
	if !strings.Contains(svg, "<svg") {
		return nil, fmt.Errorf("%w: mermaid returned no svg", ErrDiagramRender)
	}
	return []byte(svg), nil
}

// diagramPage is the host page that loads the mermaid script.
func diagramPage(script string) []byte {
	return []byte(`<!DOCTYPE html><html><head><meta charset="utf-8"><script src="` +
		html.EscapeString(script) + `"></script></head><body></body></html>`)
}
