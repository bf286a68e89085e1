package main

import (
	"context"
	"fmt"

	md2doc "github.com/alnah/go-md2doc"
)

// Converter is the part of md2doc.Converter the batch needs.
type Converter interface {
	Convert(ctx context.Context, input md2doc.Input) (*md2doc.ConvertResult, error)
}

var _ Converter = (*md2doc.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (Converter, error)
	Release(Converter)
	Size() int
	Close() error
}

// poolAdapter exposes an md2doc.ConverterPool through Pool.
type poolAdapter struct {
	pool *md2doc.ConverterPool
}

var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire() (Converter, error) {
	conv, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Release panics when given a converter the pool did not hand out.
func (a *poolAdapter) Release(c Converter) {
	conv, ok := c.(*md2doc.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int    { return a.pool.Size() }
func (a *poolAdapter) Close() error { return a.pool.Close() }
