// Package enrich attaches externally produced payloads to a parsed document:
// image bytes for image references and rendered images for diagrams.
//
// Enrichment is best effort. A collaborator that fails, returns nothing or
// panics leaves the payload absent and the pass continues with the other
// nodes; renderers fall back to the unresolved form.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-md2doc/internal/ast"
)

// ErrNoData is reported when a collaborator succeeds without returning bytes.
var ErrNoData = errors.New("collaborator returned no data")

// DefaultConcurrency bounds in-flight collaborator calls when Options leaves
// Concurrency unset.
const DefaultConcurrency = 4

// ImageResolver loads the bytes behind an image reference. baseDir is the
// directory relative references are resolved against.
type ImageResolver interface {
	ResolveImage(ctx context.Context, ref, baseDir string) ([]byte, error)
}

// DiagramRenderer turns diagram source into image bytes.
type DiagramRenderer interface {
	RenderDiagram(ctx context.Context, source string) ([]byte, error)
}

// ImageResolverFunc adapts a function to ImageResolver.
type ImageResolverFunc func(ctx context.Context, ref, baseDir string) ([]byte, error)

// ResolveImage calls f.
func (f ImageResolverFunc) ResolveImage(ctx context.Context, ref, baseDir string) ([]byte, error) {
	return f(ctx, ref, baseDir)
}

// DiagramRendererFunc adapts a function to DiagramRenderer.
type DiagramRendererFunc func(ctx context.Context, source string) ([]byte, error)

// RenderDiagram calls f.
func (f DiagramRendererFunc) RenderDiagram(ctx context.Context, source string) ([]byte, error) {
	return f(ctx, source)
}

// Options configures a pass. A nil collaborator skips its node kind.
type Options struct {
	Images      ImageResolver
	Diagrams    DiagramRenderer
	BaseDir     string
	Concurrency int
	Logger      *slog.Logger

	// OnFailure, when set, receives every node left unresolved, in document
	// order, after all collaborator calls have returned.
	OnFailure func(Failure)
}

// Failure describes a node whose payload could not be produced.
type Failure struct {
	Kind string // "image" or "diagram"
	Ref  string // image source, or the first line of the diagram
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %q: %v", f.Kind, f.Ref, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// task is one payload to produce.
type task struct {
	node  ast.Enrichable
	kind  string
	ref   string
	fetch func(ctx context.Context) ([]byte, error)
}

// Enrich resolves every unresolved image and diagram in doc, running at most
// Options.Concurrency collaborator calls at once. It returns the same document.
//
// Per-node failures are logged, passed to Options.OnFailure and never
// returned. The only error is the context's, when ctx is done before all
// nodes were handled; payloads that arrive after that point are discarded.
func Enrich(ctx context.Context, doc *ast.Document, opts Options) (*ast.Document, error) {
	if doc == nil {
		return doc, nil
	}
	tasks := collect(doc, opts)
	if len(tasks) == 0 {
		return doc, ctx.Err()
	}

	log := opts.logger()
	g := new(errgroup.Group)
	g.SetLimit(opts.concurrency())

	failures := make([]error, len(tasks))
	for i, tk := range tasks {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			failures[i] = run(ctx, tk, log)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return doc, err
	}
	if opts.OnFailure != nil {
		for i, err := range failures {
			if err != nil {
				opts.OnFailure(Failure{Kind: tasks[i].kind, Ref: tasks[i].ref, Err: err})
			}
		}
	}
	return doc, nil
}

// collect lists the unresolved targets in document order. Inline data:
// images are already self-contained and are left to the renderers.
func collect(doc *ast.Document, opts Options) []task {
	var tasks []task
	ast.Walk(doc, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Image:
			if opts.Images == nil || n.Resolved() || n.Source == "" || isDataURI(n.Source) {
				return true
			}
			ref := n.Source
			tasks = append(tasks, task{node: n, kind: "image", ref: ref,
				fetch: func(ctx context.Context) ([]byte, error) {
					return opts.Images.ResolveImage(ctx, ref, opts.BaseDir)
				}})
		case *ast.Diagram:
			if opts.Diagrams == nil || n.Resolved() {
				return true
			}
			src := n.Source
			tasks = append(tasks, task{node: n, kind: "diagram", ref: firstLine(src),
				fetch: func(ctx context.Context) ([]byte, error) {
					return opts.Diagrams.RenderDiagram(ctx, src)
				}})
		}
		return true
	})
	return tasks
}

// run produces one payload and returns why the node stayed unresolved, if it did.
func run(ctx context.Context, tk task, log *slog.Logger) error {
	if ctx.Err() != nil {
		return nil
	}
	data, err := call(ctx, tk)
	if ctx.Err() != nil {
		return nil
	}
	switch {
	case err != nil:
		log.Warn("enrichment failed", "kind", tk.kind, "ref", tk.ref, "error", err)
		return err
	case len(data) == 0:
		log.Warn("enrichment returned no data", "kind", tk.kind, "ref", tk.ref)
		return ErrNoData
	default:
		ast.Attach(tk.node, data)
		return nil
	}
}

func isDataURI(ref string) bool {
	return len(ref) >= 5 && strings.EqualFold(ref[:5], "data:")
}

// call invokes the collaborator, converting a panic into an error.
func call(ctx context.Context, tk task) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("collaborator panic: %v", r)
		}
	}()
	return tk.fetch(ctx)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
