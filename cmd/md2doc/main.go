package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args[1:], DefaultEnv()))
}

// runMain dispatches the command line and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) > 0 {
		switch args[0] {
		case "themes":
			if err := runThemes(env.Stdout); err != nil {
				fmt.Fprintln(env.Stderr, err)
				return ExitGeneral
			}
			return ExitSuccess
		case "init":
			if err := runInit(args[1:], env.Stdout); err != nil {
				fmt.Fprintf(env.Stderr, "md2doc: %v\n", err)
				return exitCodeFor(err)
			}
			return ExitSuccess
		case "help":
			printUsage(env.Stdout)
			return ExitSuccess
		}
	}

	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "md2doc: %v\n", err)
		return ExitUsage
	}

	if flags.version {
		fmt.Fprintf(env.Stdout, "md2doc %s\n", Version)
		return ExitSuccess
	}

	logger := newLogger(env.Stderr, flags.common)
	setMaxProcs(logger)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err = runConvert(ctx, positional, flags, env, logger)
	if err == nil {
		return ExitSuccess
	}

	// Per-file failures were already reported by printResults.
	if !errors.Is(err, errBatchFailed) {
		fmt.Fprintf(env.Stderr, "md2doc: %v%s\n", err, hintFor(err))
		if errors.Is(err, ErrNoInput) {
			printUsage(env.Stderr)
		}
	}
	return exitCodeFor(err)
}

// newLogger builds the CLI text logger: --verbose shows debug records,
// --quiet keeps only errors.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setMaxProcs aligns GOMAXPROCS with the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(logger *slog.Logger) {
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...), "component", "maxprocs")
	}))
}
