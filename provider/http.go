package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// httpClient is the shared plumbing both provider implementations build
// on: an authenticated GET with a provider-specific Accept header, and
// Link-header-driven pagination.
type httpClient struct {
	baseURL string
	accept  string
	auth    string // full "<scheme> <token>" header value
	client  *http.Client
}

func newHTTPClient(baseURL, accept, scheme, token string) *httpClient {
	return &httpClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		accept:  accept,
		auth:    scheme + " " + token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// nextLinkRgx extracts the URL of a rel="next" entry from an RFC 5988
// Link header.
var nextLinkRgx = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// getPage performs a single authenticated GET, decoding the JSON
// response into out and returning the next page's URL, if any.
func (c *httpClient) getPage(ctx context.Context, urlStr string, out any) (next string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTTPFailure, err)
	}
	req.Header.Set("Accept", c.accept)
	req.Header.Set("Authorization", c.auth)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTTPFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTTPFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s: status %d: %s", ErrHTTPFailure, urlStr, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrJSONFailure, err)
	}

	if link := resp.Header.Get("Link"); link != "" {
		if m := nextLinkRgx.FindStringSubmatch(link); len(m) == 2 {
			next = m[1]
		}
	}

	return next, nil
}

// getAllPages recursively follows rel="next" links, appending each page's
// decoded results. Failure of any page fails the whole operation.
func getAllPages[T any](ctx context.Context, c *httpClient, firstURL string) ([]T, error) {
	var all []T
	urlStr := firstURL
	for urlStr != "" {
		var page []T
		next, err := c.getPage(ctx, urlStr, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		urlStr = next
	}
	return all, nil
}
