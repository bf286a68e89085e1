package markup

import (
	"bytes"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-md2doc/internal/theme"
)

// Stylesheet builds the CSS for th: syntax highlighting rules for its code
// style, the theme rules, then CustomCSS verbatim. The result is safe to
// place inside a style element.
func Stylesheet(th theme.Theme) string {
	var b strings.Builder
	b.WriteString(chromaCSS(th.CodeStyle))
	b.WriteString(themeCSS(th))
	if th.CustomCSS != "" {
		b.WriteString("\n/* custom */\n")
		b.WriteString(th.CustomCSS)
		b.WriteString("\n")
	}
	return sanitizeCSS(b.String())
}

// chromaCSS returns the class rules for the named chroma style. Unknown
// names resolve to chroma's fallback style.
func chromaCSS(name string) string {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return ""
	}
	return buf.String()
}

func themeCSS(th theme.Theme) string {
	f, c, s := th.Fonts, th.Colors, th.Spacing
	return fmt.Sprintf(`
body {
  font-family: %s;
  color: %s;
  background: %s;
  line-height: %s;
  max-width: 800px;
  margin: 0 auto;
  padding: 40px;
}
h1, h2, h3, h4, h5, h6 {
  font-family: %s;
  color: %s;
  margin-top: 24px;
  margin-bottom: 16px;
}
h1 { font-size: 32px; }
h2 { font-size: 24px; }
h3 { font-size: 20px; }
h4 { font-size: 16px; }
h5 { font-size: 14px; }
h6 { font-size: 12px; }
p { margin-bottom: %spx; }
code {
  font-family: %s;
  background: %s;
  padding: 2px 6px;
  border-radius: 3px;
}
pre {
  background: %s;
  padding: 16px;
  border-radius: 4px;
  overflow-x: auto;
}
pre code { background: none; padding: 0; }
blockquote {
  border-left: 4px solid #ddd;
  padding-left: 16px;
  margin-left: 0;
  color: #666;
}
table { border-collapse: collapse; width: 100%%; margin: 16px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background: #f5f5f5; font-weight: bold; }
img { max-width: 100%%; height: auto; }
figure.diagram { margin: 16px 0; text-align: center; }
hr { border: none; border-top: 1px solid #ddd; margin: 24px 0; }
a { color: %s; text-decoration: none; }
a:hover { text-decoration: underline; }
ul, ol { padding-left: 24px; margin-bottom: 16px; }
li { margin-bottom: 8px; }
li.task-list-item { list-style: none; }
li.task-list-item input { margin-right: 6px; }
`,
		cssFont(or(f.Body, "Arial")), or(c.Text, "#000000"), or(c.Background, "#FFFFFF"),
		number(s.LineHeight, 1.5),
		cssFont(or(f.Heading, "Arial")), or(c.Primary, "#333333"),
		number(s.ParagraphSpacing, 10),
		cssFont(or(f.Code, "Courier New")), or(c.Code, "#f5f5f5"),
		or(c.Code, "#f5f5f5"),
		or(c.Primary, "#0066cc"),
	)
}

// cssFont quotes family names containing spaces.
func cssFont(name string) string {
	if strings.ContainsAny(name, " ") && !strings.ContainsAny(name, `"',`) {
		return `"` + name + `"`
	}
	return name
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func number(v, fallback float64) string {
	if v <= 0 {
		v = fallback
	}
	return fmt.Sprintf("%g", v)
}

// sanitizeCSS escapes sequences that could close the style element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
