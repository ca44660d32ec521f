package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Publisher sites serve interstitial pages to obvious robots, so requests
// go out with a mainstream browser identity.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// maxDocumentSize caps downloads. Scanned books can run large but a
// legitimate article PDF fits comfortably under this.
const maxDocumentSize = 100 * 1024 * 1024

// client wraps an http.Client with the headers and size limits every
// provider needs. Providers share one instance so connection reuse works
// across the chain.
type client struct {
	http *http.Client
}

func newClient() *client {
	return &client{http: &http.Client{}}
}

// get downloads a URL and returns a candidate for validation. Non-2xx
// statuses are errors; redirects are followed so the candidate URL is the
// final one served.
func (c *client) get(ctx context.Context, rawURL string, accept string) (*Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Candidate{Data: data, Header: resp.Header, URL: finalURL}, nil
}

// getJSON fetches a URL and decodes the JSON response into out.
func (c *client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: HTTP %d", rawURL, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 4*1024*1024)).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}
