package markup

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// codeBlock renders pre > code. Languages known to chroma are split into
// class-tagged spans matching the stylesheet from chromaCSS; anything else is
// a single text node.
func codeBlock(language, code string) *html.Node {
	pre := elem(atom.Pre, attr("class", "chroma"))
	codeEl := elem(atom.Code)
	if language != "" {
		codeEl.Attr = append(codeEl.Attr, attr("class", "language-"+language))
	}
	pre.AppendChild(codeEl)

	for _, n := range highlight(language, code) {
		codeEl.AppendChild(n)
	}
	return pre
}

func highlight(language, code string) []*html.Node {
	plain := []*html.Node{text(code)}
	if language == "" || code == "" {
		return plain
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return plain
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return plain
	}

	tokens := it.Tokens()
	// Lexers may append a newline the source did not have.
	if n := len(tokens); n > 0 && !strings.HasSuffix(code, "\n") {
		tokens[n-1].Value = strings.TrimSuffix(tokens[n-1].Value, "\n")
	}

	var out []*html.Node
	for _, tok := range tokens {
		if tok.Value == "" {
			continue
		}
		class := tokenClass(tok.Type)
		if class == "" {
			out = append(out, text(tok.Value))
			continue
		}
		out = append(out, withText(elem(atom.Span, attr("class", class)), tok.Value))
	}
	return out
}

// tokenClass returns the short CSS class chroma uses for t, falling back to
// its sub-category and category.
func tokenClass(t chroma.TokenType) string {
	for _, tt := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if class, ok := chroma.StandardTypes[tt]; ok {
			return class
		}
	}
	return ""
}
