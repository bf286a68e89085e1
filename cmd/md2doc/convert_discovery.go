package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrNoMarkdownFiles    = errors.New("no markdown files found")
)

// FileToConvert is a markdown file and the directory its outputs go to.
// An empty OutputDir writes next to the source.
type FileToConvert struct {
	InputPath string
	OutputDir string
}

// discoverFiles expands each input into the markdown files to convert.
// Directories are walked recursively; their layout is kept under outputDir.
// A file reached twice is only converted once.
func discoverFiles(inputs []string, outputDir string) ([]FileToConvert, error) {
	var files []FileToConvert
	seen := make(map[string]bool)

	add := func(path, outDir string) {
		key, err := filepath.Abs(path)
		if err != nil {
			key = path
		}
		if seen[key] {
			return
		}
		seen[key] = true
		files = append(files, FileToConvert{InputPath: path, OutputDir: outDir})
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := validateMarkdownExtension(input); err != nil {
				return nil, err
			}
			add(input, outputDir)
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() || !fileutil.IsMarkdown(path) {
				return nil
			}
			add(path, resolveOutputDir(path, input, outputDir))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoMarkdownFiles, inputs)
	}
	return files, nil
}

// resolveOutputDir mirrors the file's directory relative to baseInputDir
// under outputDir. An empty outputDir keeps outputs next to the source.
func resolveOutputDir(inputPath, baseInputDir, outputDir string) string {
	if outputDir == "" {
		return ""
	}
	relPath, err := filepath.Rel(baseInputDir, inputPath)
	if err != nil {
		return outputDir
	}
	return filepath.Join(outputDir, filepath.Dir(relPath))
}

// outputPaths lists the files a result is written to, in write order.
func outputPaths(f FileToConvert, format md2doc.Format) []string {
	var exts []string
	switch format {
	case md2doc.FormatPDF:
		exts = []string{".pdf"}
	case md2doc.FormatHTML:
		exts = []string{".html"}
	case md2doc.FormatBoth:
		exts = []string{".docx", ".pdf"}
	default:
		exts = []string{".docx"}
	}

	paths := make([]string, len(exts))
	for i, ext := range exts {
		paths[i] = fileutil.OutputPath(f.InputPath, f.OutputDir, ext)
	}
	return paths
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !fileutil.IsMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}
