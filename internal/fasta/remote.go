package fasta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultClient is used by OpenURL when no client is given.
var DefaultClient = &http.Client{Timeout: 10 * time.Minute}

// IsURL reports whether src names an http or https resource.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// OpenURL streams records from a remote FASTA or plain-text strand.
func OpenURL(ctx context.Context, client *http.Client, rawURL string) (*Reader, error) {
	if client == nil {
		client = DefaultClient
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	name := recordName(path.Base(u.Path))
	if name == "" || name == "/" || name == "." {
		name = u.Host
	}

	r, err := NewReader(resp.Body, name)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	r.closers = append([]io.Closer{resp.Body}, r.closers...)
	return r, nil
}

// OpenSource opens a file path, "-" or URL.
func OpenSource(ctx context.Context, src string) (*Reader, error) {
	if IsURL(src) {
		return OpenURL(ctx, nil, src)
	}
	return Open(src)
}
