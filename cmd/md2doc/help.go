package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2doc [flags] <file|dir>...")
	fmt.Fprintln(w, "       md2doc themes")
	fmt.Fprintln(w, "       md2doc init [path]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to Word, PDF or HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to each source)")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: docx, pdf, html, both (default: docx)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: .md2docrc)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-document timeout (default: 30s, env MD2DOC_TIMEOUT)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --theme <name>        Theme preset (run 'md2doc themes')")
	fmt.Fprintln(w, "      --fetch-remote        Download http(s) images")
	fmt.Fprintln(w, "      --no-diagrams         Keep mermaid blocks as code")
	fmt.Fprintln(w, "      --concurrency <n>     Image and diagram calls per document")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page (PDF only):")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w, "      --header-footer       Title header and page-number footer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
	fmt.Fprintln(w, "      --version             Print version and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN           Chrome binary used for PDF and diagrams")
	fmt.Fprintln(w, "  ROD_NO_SANDBOX=1          Disable the Chrome sandbox (Docker/CI)")
}
