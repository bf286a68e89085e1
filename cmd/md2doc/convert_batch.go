package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	md2doc "github.com/alnah/go-md2doc"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteOutput  = errors.New("failed to write output file")
)

// Summary colours. fatih/color disables them when stdout is not a terminal.
var (
	createdColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	failedColor  = color.New(color.FgRed, color.Bold)
	summaryColor = color.New(color.Bold)
)

// conversionParams groups the settings shared by every file of a batch.
type conversionParams struct {
	format        md2doc.Format
	theme         string
	themeOverride *md2doc.Theme
	page          *md2doc.PageSettings
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath   string
	OutputPaths []string
	Warnings    []error // images and diagrams left unresolved
	Err         error
	Duration    time.Duration
}

// convertBatch processes files concurrently using the converter pool.
// Results are returned in input order.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark this worker's jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile converts a single file and writes every requested output.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath}
	finish := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return finish(fmt.Errorf("%w: %v", ErrReadMarkdown, err))
	}

	res, err := conv.Convert(ctx, md2doc.Input{
		Markdown:      string(content),
		SourceDir:     filepath.Dir(f.InputPath),
		Format:        params.format,
		Theme:         params.theme,
		ThemeOverride: params.themeOverride,
		Page:          params.page,
	})
	if err != nil {
		return finish(err)
	}
	result.Warnings = res.Warnings

	for _, path := range outputPaths(f, params.format) {
		if err := writeOutput(path, payloadFor(res, filepath.Ext(path))); err != nil {
			return finish(err)
		}
		result.OutputPaths = append(result.OutputPaths, path)
	}

	return finish(nil)
}

// payloadFor picks the result bytes matching an output extension.
func payloadFor(res *md2doc.ConvertResult, ext string) []byte {
	switch ext {
	case ".pdf":
		return res.PDF
	case ".html":
		return res.HTML
	default:
		return res.DOCX
	}
}

// writeOutput creates the parent directory and writes data to path.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	// #nosec G306 -- generated documents are meant to be readable
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns the failure count.
// Warnings are shown unless quiet, each distinct hint once per file.
func printResults(results []ConversionResult, quiet, verbose bool, stdout, stderr io.Writer) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			failedColor.Fprintf(stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			continue
		}

		if quiet {
			continue
		}

		printWarnings(r, stderr)

		for _, out := range r.OutputPaths {
			if verbose {
				fmt.Fprintf(stdout, "%s -> %s (%v)\n", r.InputPath, out, r.Duration.Round(time.Millisecond))
			} else {
				createdColor.Fprintf(stdout, "Created %s\n", out)
			}
		}
	}

	if !quiet && len(results) > 1 {
		summaryColor.Fprintf(stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// printWarnings lists the degraded elements of one file, then their hints.
func printWarnings(r ConversionResult, w io.Writer) {
	seen := make(map[string]bool)
	var hintsText []string
	for _, warn := range r.Warnings {
		warningColor.Fprintf(w, "WARNING %s: %v\n", r.InputPath, warn)
		if h := hintFor(warn); h != "" && !seen[h] {
			seen[h] = true
			hintsText = append(hintsText, h)
		}
	}
	for _, h := range hintsText {
		fmt.Fprintln(w, strings.TrimLeft(h, "\n"))
	}
}
