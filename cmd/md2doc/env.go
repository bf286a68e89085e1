package main

import (
	"io"
	"os"

	md2doc "github.com/alnah/go-md2doc"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	NewPool func(size int, opts ...md2doc.Option) Pool
}

// DefaultEnv returns the production environment backed by a ConverterPool.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		NewPool: func(size int, opts ...md2doc.Option) Pool {
			return &poolAdapter{pool: md2doc.NewConverterPool(size, opts...)}
		},
	}
}
