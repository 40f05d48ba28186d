// Package pastebin implements the ports.Fetcher interface over plain HTTP.
// Pastebin page URLs are rewritten to their /raw/ form so the body is the
// paste text rather than the surrounding HTML; bare paste ids are accepted
// too. Any http(s) URL outside pastebin.com is fetched as-is.
package pastebin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a paste body is read. Pastes are text; a
// multi-megabyte response is not a voucher dump.
const maxBodyBytes = 4 << 20

// Fetcher downloads paste bodies with a fixed timeout.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose requests fail after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// RawURL rewrites a pastebin reference to its raw form:
//
//	https://pastebin.com/AbCd1234       → https://pastebin.com/raw/AbCd1234
//	https://pastebin.com/raw/AbCd1234   → unchanged
//	AbCd1234                            → https://pastebin.com/raw/AbCd1234
//
// Other URLs pass through untouched.
func RawURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if !strings.Contains(ref, "://") {
		return "https://pastebin.com/raw/" + ref
	}
	if strings.Contains(ref, "pastebin.com") && !strings.Contains(ref, "/raw/") {
		parts := strings.Split(ref, "/")
		return "https://pastebin.com/raw/" + parts[len(parts)-1]
	}
	return ref
}

// Fetch downloads url and returns its body as text. Non-2xx responses and
// transport failures are errors; the caller reports them as a source-level
// fetch failure without retrying.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
