package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds PDF page layout flags.
type pageFlags struct {
	size         string
	orientation  string
	margin       float64
	headerFooter bool
}

// renderFlags holds flags that shape the generated documents.
type renderFlags struct {
	format      string
	theme       string
	fetchRemote bool
	noDiagrams  bool
	concurrency int
}

// convertFlags holds all flags for a conversion run.
type convertFlags struct {
	common  commonFlags
	page    pageFlags
	render  renderFlags
	output  string
	workers int
	timeout string
	version bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
	fs.BoolVar(&f.headerFooter, "header-footer", false, "print the title and page numbers on every page")
}

// addRenderFlags adds output shaping flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.format, "format", "f", "", "output format: docx, pdf, html, both")
	fs.StringVar(&f.theme, "theme", "", "theme preset (see 'md2doc themes')")
	fs.BoolVar(&f.fetchRemote, "fetch-remote", false, "download http(s) images")
	fs.BoolVar(&f.noDiagrams, "no-diagrams", false, "keep mermaid blocks as code")
	fs.IntVar(&f.concurrency, "concurrency", 0, "image and diagram calls per document (0 = default)")
}

// parseConvertFlags parses conversion flags and returns the positional args.
// usage receives the help text when -h/--help is given.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("md2doc", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
