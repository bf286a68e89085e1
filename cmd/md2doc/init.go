package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/alnah/go-md2doc/internal/config"
)

// ErrTooManyArgs reports extra positional arguments to a subcommand.
var ErrTooManyArgs = errors.New("too many arguments")

// runInit writes a config file holding the defaults. args may name the file.
func runInit(args []string, w io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: init takes at most one path, got %d", ErrTooManyArgs, len(args))
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}

	written, err := config.WriteDefaultFile(path)
	if err != nil {
		return err
	}
	createdColor.Fprintf(w, "Created %s\n", written)
	return nil
}
