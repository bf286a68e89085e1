package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	md2doc "github.com/alnah/go-md2doc"
)

// runThemes lists the built-in presets with their fonts and primary colour.
func runThemes(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBODY FONT\tHEADING FONT\tCODE FONT\tPRIMARY")
	for _, name := range md2doc.ThemeNames() {
		t, ok := md2doc.DescribeTheme(name)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, t.Fonts.Body, t.Fonts.Heading, t.Fonts.Code, t.Colors.Primary)
	}
	return tw.Flush()
}
