package enrich

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-md2doc/internal/ast"
)

// fakeImages serves bytes keyed by reference and fails for unknown ones.
type fakeImages struct {
	mu      sync.Mutex
	data    map[string][]byte
	calls   map[string]int
	baseDir string
}

func newFakeImages(data map[string][]byte) *fakeImages {
	return &fakeImages{data: data, calls: map[string]int{}}
}

func (f *fakeImages) ResolveImage(_ context.Context, ref, baseDir string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ref]++
	f.baseDir = baseDir
	if b, ok := f.data[ref]; ok {
		return b, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeImages) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func imageDoc(refs ...string) (*ast.Document, []*ast.Image) {
	var imgs []*ast.Image
	var inlines []ast.Inline
	for _, r := range refs {
		img := &ast.Image{Source: r, Alt: r}
		imgs = append(imgs, img)
		inlines = append(inlines, img)
	}
	return &ast.Document{Children: []ast.Block{&ast.Paragraph{Children: inlines}}}, imgs
}

func TestEnrichSiblingIsolation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	doc, imgs := imageDoc("ok.png", "missing.png", "also-ok.png")
	images := newFakeImages(map[string][]byte{
		"ok.png":      []byte("one"),
		"also-ok.png": []byte("two"),
	})

	_, err := Enrich(context.Background(), doc, Options{
		Images:  images,
		BaseDir: "/docs",
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
	})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if string(imgs[0].Data()) != "one" {
		t.Errorf("imgs[0] = %q, want one", imgs[0].Data())
	}
	if imgs[1].Resolved() {
		t.Error("failed image should stay unresolved")
	}
	if string(imgs[2].Data()) != "two" {
		t.Errorf("imgs[2] = %q, want two", imgs[2].Data())
	}
	if images.baseDir != "/docs" {
		t.Errorf("baseDir = %q, want /docs", images.baseDir)
	}
	if !strings.Contains(buf.String(), "missing.png") {
		t.Errorf("expected warning naming the failed ref, got %q", buf.String())
	}
}

func TestEnrichIdempotent(t *testing.T) {
	t.Parallel()

	doc, imgs := imageDoc("a.png", "b.png")
	images := newFakeImages(map[string][]byte{"a.png": []byte("A"), "b.png": []byte("B")})
	opts := Options{Images: images}

	if _, err := Enrich(context.Background(), doc, opts); err != nil {
		t.Fatalf("first Enrich() error = %v", err)
	}
	if _, err := Enrich(context.Background(), doc, opts); err != nil {
		t.Fatalf("second Enrich() error = %v", err)
	}

	if images.total() != 2 {
		t.Errorf("resolver called %d times, want 2", images.total())
	}
	if string(imgs[0].Data()) != "A" || string(imgs[1].Data()) != "B" {
		t.Errorf("payloads = %q, %q", imgs[0].Data(), imgs[1].Data())
	}
}

func TestEnrichDiagrams(t *testing.T) {
	t.Parallel()

	good := &ast.Diagram{Source: "graph TD\nA-->B"}
	bad := &ast.Diagram{Source: "not a diagram"}
	empty := &ast.Diagram{Source: "sequenceDiagram"}
	doc := &ast.Document{Children: []ast.Block{good, bad, empty}}

	renderer := DiagramRendererFunc(func(_ context.Context, src string) ([]byte, error) {
		switch {
		case strings.HasPrefix(src, "graph"):
			return []byte("<svg/>"), nil
		case strings.HasPrefix(src, "sequence"):
			return nil, nil
		default:
			return nil, errors.New("syntax error")
		}
	})

	if _, err := Enrich(context.Background(), doc, Options{Diagrams: renderer}); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if string(good.Data()) != "<svg/>" {
		t.Errorf("good = %q", good.Data())
	}
	if bad.Resolved() || empty.Resolved() {
		t.Error("failed and empty diagrams should stay unresolved")
	}
}

func TestEnrichReportsFailures(t *testing.T) {
	t.Parallel()

	doc := &ast.Document{Children: []ast.Block{
		&ast.Diagram{Source: "graph TD\nA-->B"},
		&ast.Paragraph{Children: []ast.Inline{&ast.Image{Source: "missing.png"}}},
		&ast.Diagram{Source: "sequenceDiagram\nA->>B: hi"},
	}}
	diagrams := DiagramRendererFunc(func(_ context.Context, src string) ([]byte, error) {
		if strings.HasPrefix(src, "graph") {
			return nil, errors.New("syntax error")
		}
		return nil, nil
	})

	var got []Failure
	_, err := Enrich(context.Background(), doc, Options{
		Images:    newFakeImages(nil),
		Diagrams:  diagrams,
		OnFailure: func(f Failure) { got = append(got, f) },
	})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	want := []struct{ kind, ref string }{
		{"diagram", "graph TD"},
		{"image", "missing.png"},
		{"diagram", "sequenceDiagram"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d failures %v, want %d", len(got), got, len(want))
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Ref != w.ref {
			t.Errorf("failure %d = %s %q, want %s %q", i, got[i].Kind, got[i].Ref, w.kind, w.ref)
		}
	}
	if !errors.Is(got[2], ErrNoData) {
		t.Errorf("empty payload error = %v, want ErrNoData", got[2].Err)
	}
}

func TestEnrichSkipsDataURIs(t *testing.T) {
	t.Parallel()

	doc, imgs := imageDoc("data:image/png;base64,iVBORw0KGgo=", "DATA:image/gif;base64,R0lGOD==")
	images := newFakeImages(nil)
	var logs bytes.Buffer
	var failures int

	_, err := Enrich(context.Background(), doc, Options{
		Images:    images,
		Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
		OnFailure: func(Failure) { failures++ },
	})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if images.total() != 0 {
		t.Errorf("resolver called %d times for inline data", images.total())
	}
	if logs.Len() != 0 || failures != 0 {
		t.Errorf("inline data reported as failure: %d, log %q", failures, logs.String())
	}
	for _, img := range imgs {
		if img.Resolved() {
			t.Errorf("%s should be left to the renderers", img.Source)
		}
	}
}

func TestEnrichNilCollaboratorsSkip(t *testing.T) {
	t.Parallel()

	doc, imgs := imageDoc("a.png")
	d := &ast.Diagram{Source: "graph TD"}
	doc.Children = append(doc.Children, d)

	if _, err := Enrich(context.Background(), doc, Options{}); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if imgs[0].Resolved() || d.Resolved() {
		t.Error("nothing should be resolved without collaborators")
	}
}

func TestEnrichRecoversPanics(t *testing.T) {
	t.Parallel()

	doc, imgs := imageDoc("boom.png", "fine.png")
	images := ImageResolverFunc(func(_ context.Context, ref, _ string) ([]byte, error) {
		if ref == "boom.png" {
			panic("decoder exploded")
		}
		return []byte("ok"), nil
	})

	var buf bytes.Buffer
	_, err := Enrich(context.Background(), doc, Options{
		Images: images,
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
	})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if imgs[0].Resolved() {
		t.Error("panicking image should stay unresolved")
	}
	if !imgs[1].Resolved() {
		t.Error("sibling should be resolved")
	}
	if !strings.Contains(buf.String(), "decoder exploded") {
		t.Errorf("expected panic in log, got %q", buf.String())
	}
}

func TestEnrichBoundsConcurrency(t *testing.T) {
	t.Parallel()

	refs := make([]string, 20)
	for i := range refs {
		refs[i] = string(rune('a'+i)) + ".png"
	}
	doc, imgs := imageDoc(refs...)

	var inFlight, peak atomic.Int32
	images := ImageResolverFunc(func(_ context.Context, _, _ string) ([]byte, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return []byte("x"), nil
	})

	if _, err := Enrich(context.Background(), doc, Options{Images: images, Concurrency: 3}); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
	for i, img := range imgs {
		if !img.Resolved() {
			t.Errorf("image %d unresolved", i)
		}
	}
}

func TestEnrichCancellation(t *testing.T) {
	t.Parallel()

	t.Run("already cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		doc, imgs := imageDoc("a.png", "b.png")
		images := newFakeImages(map[string][]byte{"a.png": []byte("A"), "b.png": []byte("B")})

		_, err := Enrich(ctx, doc, Options{Images: images})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if images.total() != 0 {
			t.Errorf("resolver called %d times after cancellation", images.total())
		}
		for _, img := range imgs {
			if img.Resolved() {
				t.Error("no payload may be written after cancellation")
			}
		}
	})

	t.Run("late results discarded", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		doc, imgs := imageDoc("slow.png")
		images := ImageResolverFunc(func(_ context.Context, _, _ string) ([]byte, error) {
			cancel()
			return []byte("late"), nil
		})

		_, err := Enrich(ctx, doc, Options{Images: images})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if imgs[0].Resolved() {
			t.Error("result arriving after cancellation must be discarded")
		}
	})
}

func TestEnrichNilDocument(t *testing.T) {
	t.Parallel()

	doc, err := Enrich(context.Background(), nil, Options{})
	if doc != nil || err != nil {
		t.Errorf("Enrich(nil) = %v, %v", doc, err)
	}
}
