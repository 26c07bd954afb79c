package pipeline

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// MaxRedirectHops bounds redirect resolution so loops always terminate
const MaxRedirectHops = 10

// Resolver follows Location headers with metadata-only requests
type Resolver struct {
	httpClient *http.Client
	userAgent  string
}

// NewResolver creates a resolver whose every hop is bounded by timeout
func NewResolver(timeout time.Duration, userAgent string, transport http.RoundTripper) *Resolver {
	return &Resolver{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: userAgent,
	}
}

// Resolve returns the URL the redirect chain ends at and the Location values seen.
// Transport failures stop the chain at the last URL reached; they are never returned.
func (r *Resolver) Resolve(ctx context.Context, startURL string) (string, []string) {
	current := startURL
	var chain []string

	for hop := 0; hop < MaxRedirectHops; hop++ {
		location, ok := r.step(ctx, current)
		if !ok {
			break
		}

		next, err := resolveReference(current, location)
		if err != nil {
			break
		}

		chain = append(chain, location)
		current = next
	}

	return current, chain
}

// step issues one HEAD request and returns the Location of a 3xx answer
func (r *Resolver) step(ctx context.Context, rawURL string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	location := resp.Header.Get("Location")
	if resp.StatusCode < 300 || resp.StatusCode > 399 || location == "" {
		return "", false
	}
	return location, true
}

// resolveReference resolves a possibly relative location against base
func resolveReference(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return location, nil
	}
	return baseURL.ResolveReference(ref).String(), nil
}
