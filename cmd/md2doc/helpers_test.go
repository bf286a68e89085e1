package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	md2doc "github.com/alnah/go-md2doc"
)

// mockConverter is a test double for the Converter interface.
type mockConverter struct {
	mu          sync.Mutex
	calls       []md2doc.Input
	convertFunc func(ctx context.Context, input md2doc.Input) (*md2doc.ConvertResult, error)
}

func newMockConverter() *mockConverter {
	return &mockConverter{}
}

func (m *mockConverter) Convert(ctx context.Context, input md2doc.Input) (*md2doc.ConvertResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()

	if m.convertFunc != nil {
		return m.convertFunc(ctx, input)
	}

	return &md2doc.ConvertResult{
		DOCX: []byte("PK mock docx"),
		HTML: []byte("<html>mock</html>"),
		PDF:  []byte("%PDF-1.4 mock"),
	}, nil
}

func (m *mockConverter) getCalls() []md2doc.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]md2doc.Input{}, m.calls...)
}

// testPool hands out the same mock converter up to size times.
type testPool struct {
	mock       *mockConverter
	sem        chan Converter
	size       int
	acquireErr error
	opts       []md2doc.Option

	mu     sync.Mutex
	closed bool
}

func newTestPool(mock *mockConverter, size int) *testPool {
	if size < 1 {
		size = 1
	}
	p := &testPool{
		mock: mock,
		sem:  make(chan Converter, size),
		size: size,
	}
	for range size {
		p.sem <- mock
	}
	return p
}

func (p *testPool) Acquire() (Converter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return <-p.sem, nil
}

func (p *testPool) Release(c Converter) {
	p.sem <- c
}

func (p *testPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *testPool) Size() int {
	return p.size
}

func (p *testPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// testEnv returns an environment writing to buffers and backed by mock.
// The pool built by runConvert is stored in *built.
func testEnv(mock *mockConverter, built **testPool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(string) string { return "" },
		NewPool: func(size int, opts ...md2doc.Option) Pool {
			p := newTestPool(mock, size)
			p.opts = opts
			if built != nil {
				*built = p
			}
			return p
		},
	}
	return env, stdout, stderr
}

// setupTestDir creates a temp directory with the given file structure.
// Files map paths to content. Returns the temp directory path.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	return tempDir
}
