package md2doc

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2doc/internal/process"
)

// browser is one lazily launched headless Chrome shared by the PDF and
// diagram adapters of a Converter. Rod downloads Chromium on first launch
// if ROD_BROWSER_BIN is unset and none is found.
type browser struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	rod      *rod.Browser
	closed   bool
}

// connect launches the browser on first use.
func (b *browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("%w: converter closed", ErrBrowserConnect)
	}
	if b.rod != nil {
		return b.rod, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	br := rod.New().ControlURL(u)
	if err := br.Connect(); err != nil {
		process.KillTree(l.PID())
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.launcher = l
	b.rod = br
	return br, nil
}

// open creates a page for url and waits for it to load within the context
// deadline, or fallback when ctx has none. The returned page is not bound to
// ctx so the caller can always close it.
func (b *browser) open(ctx context.Context, url string, fallback time.Duration) (*rod.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	br, err := b.connect()
	if err != nil {
		return nil, err
	}

	page, err := br.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	timeout := fallback
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			_ = page.Close()
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return page, nil
}

// Close shuts the browser down and kills its process tree. Safe to call
// more than once; later connects fail.
func (b *browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.rod == nil {
		return nil
	}

	err := b.rod.Close()
	b.rod = nil
	if b.launcher != nil {
		process.KillTree(b.launcher.PID())
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}
