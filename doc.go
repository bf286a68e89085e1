// Package md2doc converts Markdown documents to Word (.docx), HTML and PDF.
//
// # Quick Start
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := md2doc.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, md2doc.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    Format:   md2doc.FormatBoth,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.docx", result.DOCX, 0644)
//	os.WriteFile("output.pdf", result.PDF, 0644)
//
// DOCX output is produced in-process. HTML rendering of diagrams and PDF
// output use a headless Chrome that is started on first use.
//
// # Conversion Pipeline
//
//  1. Front matter is split off (title, author, theme and custom keys).
//  2. Markdown is parsed into a typed tree (GFM: tables, task lists, strikethrough).
//  3. Images and Mermaid diagrams are resolved concurrently. A failure
//     leaves the node unresolved and is logged, never returned.
//  4. The tree is rendered to a Word flow model and written as .docx, and/or
//     to an HTML page with a theme stylesheet, then printed to PDF.
//
// # Themes
//
// Presets are listed by ThemeNames. Input.Theme picks one by name (unknown
// names fall back to the default with a warning) and Input.ThemeOverride
// replaces individual values on top of it.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := md2doc.NewConverter(
//	    md2doc.WithTimeout(2 * time.Minute),
//	    md2doc.WithLogger(slog.Default()),
//	    md2doc.WithConcurrency(8),
//	    md2doc.WithImageResolver(&md2doc.FileImageResolver{FetchRemote: true}),
//	    md2doc.WithoutDiagrams(),
//	)
//
// # Parallel Processing
//
// A Converter is meant for sequential use. For batch work use a
// ConverterPool; each pooled converter owns its own browser:
//
//	pool := md2doc.NewConverterPool(md2doc.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Environment
//
// ROD_BROWSER_BIN selects the Chrome binary; ROD_NO_SANDBOX=1 or CI=true
// disables the sandbox for containers.
package md2doc
