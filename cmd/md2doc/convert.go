package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/hints"
	"github.com/alnah/go-md2doc/internal/theme"
)

// timeoutEnv overrides the default per-document timeout when no flag is given.
const timeoutEnv = "MD2DOC_TIMEOUT"

// ErrInvalidTimeout reports an unparsable or non-positive timeout.
var ErrInvalidTimeout = errors.New("invalid timeout")

// errBatchFailed reports that at least one file failed. Details were already printed.
var errBatchFailed = errors.New("conversion failed")

// runConvert loads configuration, discovers files and converts them through a pool.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment, logger *slog.Logger) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, logger)
	if err != nil {
		return err
	}

	// CLI wins over the config file
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	timeout, err := resolveTimeout(flags.timeout, env.Getenv(timeoutEnv))
	if err != nil {
		return err
	}

	if len(positionalArgs) == 0 {
		return ErrNoInput
	}

	files, err := discoverFiles(positionalArgs, cfg.Output.DefaultDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	params := buildParams(flags, cfg)
	if _, ok := md2doc.DescribeTheme(params.theme); params.theme != "" && !ok {
		fmt.Fprintf(env.Stderr, "warning: unknown theme %q, using %s%s\n",
			params.theme, theme.DefaultName, hints.ForThemeNotFound(md2doc.ThemeNames()))
	}
	poolSize := min(md2doc.ResolvePoolSize(cfg.Workers), len(files))
	logger.Debug("starting conversion", "files", len(files), "workers", poolSize, "format", string(params.format))

	pool := env.NewPool(poolSize, converterOptions(cfg, timeout, logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converters", "error", err)
		}
	}()

	results := convertBatch(ctx, pool, files, params)
	failed := printResults(results, flags.common.quiet, flags.common.verbose, env.Stdout, env.Stderr)
	if failed == 0 {
		return nil
	}

	// Single-file runs surface the conversion error so the exit code matches it.
	if len(results) == 1 {
		return fmt.Errorf("%w: %w", errBatchFailed, results[0].Err)
	}
	return fmt.Errorf("%w: %d of %d files", errBatchFailed, failed, len(results))
}

// loadConfig loads the named config, or the default config file when name
// is empty. Without either the built-in defaults apply.
func loadConfig(name string, logger *slog.Logger) (*config.Config, error) {
	if name == "" {
		cfg, path, err := config.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		if path != "" {
			logger.Debug("using config", "path", path)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfig(name)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(name))
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags applies explicitly set flags over cfg.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
	if flags.render.format != "" {
		cfg.Output.Format = flags.render.format
	}
	if flags.render.theme != "" {
		cfg.Theme.Name = flags.render.theme
	}
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin > 0 {
		cfg.Page.Margin = flags.page.margin
	}
	if flags.page.headerFooter {
		cfg.Page.HeaderFooter = true
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.render.concurrency > 0 {
		cfg.Concurrency = flags.render.concurrency
	}
	if flags.render.fetchRemote {
		cfg.Images.FetchRemote = true
	}
	if flags.render.noDiagrams {
		cfg.Mermaid.Enabled = false
	}
}

// buildParams derives the per-file conversion input from the merged config.
// The default preset name is dropped so front matter can still pick a theme,
// unless --theme asked for it explicitly.
func buildParams(flags *convertFlags, cfg *config.Config) *conversionParams {
	themeName := cfg.Theme.Name
	if themeName == theme.DefaultName && flags.render.theme == "" {
		themeName = ""
	}

	page := md2doc.DefaultPageSettings()
	if cfg.Page.Size != "" {
		page.Size = cfg.Page.Size
	}
	if cfg.Page.Orientation != "" {
		page.Orientation = cfg.Page.Orientation
	}
	if cfg.Page.Margin > 0 {
		page.Margin = cfg.Page.Margin
	}
	page.HeaderFooter = cfg.Page.HeaderFooter

	return &conversionParams{
		format:        md2doc.Format(cfg.Output.Format),
		theme:         themeName,
		themeOverride: cfg.Theme.Override,
		page:          page,
	}
}

// converterOptions turns the merged config into md2doc options.
func converterOptions(cfg *config.Config, timeout time.Duration, logger *slog.Logger) []md2doc.Option {
	opts := []md2doc.Option{
		md2doc.WithLogger(logger),
		md2doc.WithTimeout(timeout),
		md2doc.WithConcurrency(cfg.Concurrency),
		md2doc.WithImageResolver(&md2doc.FileImageResolver{
			FetchRemote: cfg.Images.FetchRemote,
			MaxBytes:    cfg.Images.MaxBytes,
		}),
	}

	if !cfg.Mermaid.Enabled {
		return append(opts, md2doc.WithoutDiagrams())
	}
	if cfg.Mermaid.ScriptURL != "" {
		opts = append(opts, md2doc.WithMermaidScript(cfg.Mermaid.ScriptURL))
	}
	if cfg.Mermaid.Theme != "" {
		opts = append(opts, md2doc.WithMermaidTheme(cfg.Mermaid.Theme))
	}
	return opts
}

// resolveTimeout picks the per-document timeout.
// Priority: flag > environment > default.
func resolveTimeout(flagValue, envValue string) (time.Duration, error) {
	raw := flagValue
	if raw == "" {
		raw = envValue
	}
	if raw == "" {
		return defaultTimeout, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidTimeout, raw)
	}
	return d, nil
}

// defaultTimeout matches the library default.
const defaultTimeout = 30 * time.Second

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, md2doc.ErrBrowserConnect),
		errors.Is(err, md2doc.ErrPageCreate),
		errors.Is(err, md2doc.ErrPageLoad):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, md2doc.ErrDiagramRender):
		return hints.ForDiagram()
	case errors.Is(err, md2doc.ErrImageFetch), errors.Is(err, md2doc.ErrImageTooLarge):
		return hints.ForImageFetch()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
