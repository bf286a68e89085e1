package md2doc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

// DefaultMaxImageBytes caps a single image when FileImageResolver.MaxBytes is unset.
const DefaultMaxImageBytes = 10 << 20

// defaultFetchTimeout bounds a remote fetch when the context has no deadline.
const defaultFetchTimeout = 15 * time.Second

// FileImageResolver loads images from disk, and from http(s) URLs when
// FetchRemote is set. data: references are left to the HTML renderer.
type FileImageResolver struct {
	FetchRemote bool
	Client      *http.Client // nil = client with defaultFetchTimeout
	MaxBytes    int64        // 0 = DefaultMaxImageBytes
}

var _ ImageResolver = (*FileImageResolver)(nil)

// ResolveImage returns the bytes behind ref. Relative paths resolve against baseDir.
func (r *FileImageResolver) ResolveImage(ctx context.Context, ref, baseDir string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return nil, nil
	case fileutil.IsURL(ref):
		if !r.FetchRemote {
			return nil, fmt.Errorf("%w: remote fetching disabled: %s", ErrImageFetch, ref)
		}
		return r.fetch(ctx, ref)
	default:
		return r.read(localPath(ref, baseDir))
	}
}

func (r *FileImageResolver) limit() int64 {
	if r.MaxBytes <= 0 {
		return DefaultMaxImageBytes
	}
	return r.MaxBytes
}

func (r *FileImageResolver) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrImageFetch, ref, resp.Status)
	}
	if resp.ContentLength > r.limit() {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrImageTooLarge, ref, resp.ContentLength, r.limit())
	}

	// Read one byte past the limit to detect oversized bodies without a Content-Length.
	data, err := io.ReadAll(io.LimitReader(resp.Body, r.limit()+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrImageFetch, ref, err)
	}
	if int64(len(data)) > r.limit() {
		return nil, fmt.Errorf("%w: %s (max %d bytes)", ErrImageTooLarge, ref, r.limit())
	}
	return data, nil
}

func (r *FileImageResolver) read(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrImageFetch, path)
	}
	if info.Size() > r.limit() {
		return nil, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrImageTooLarge, path, info.Size(), r.limit())
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the document being converted
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageFetch, err)
	}
	return data, nil
}

// localPath turns a markdown image reference into a filesystem path.
// file:// prefixes are dropped and percent-escapes decoded.
func localPath(ref, baseDir string) string {
	p := strings.TrimPrefix(ref, "file://")
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}
