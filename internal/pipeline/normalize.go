package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL is returned for empty or unparseable input
	ErrInvalidURL = errors.New("invalid URL")
	// ErrCancelled is returned when the caller gives up before the analysis
	// completes. The partial result is discarded.
	ErrCancelled = errors.New("analysis cancelled")
)

// NormalizeURL trims input and prepends http:// unless it already carries
// an http or https scheme.
func NormalizeURL(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}

	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, input)
	}
	return s, nil
}
