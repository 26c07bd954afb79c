// Package blacklist checks URLs against downloadable threat feeds and a
// threat-matching API.
package blacklist

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/phishlens/internal/cache"
	"github.com/ppiankov/phishlens/internal/model"
	"golang.org/x/sync/singleflight"
)

const defaultFeedTimeout = 10 * time.Second

// URLSet is an immutable set of listed URLs. A refresh builds a new set and
// swaps it into the cache whole.
type URLSet map[string]struct{}

// Has reports exact membership
func (s URLSet) Has(rawURL string) bool {
	_, ok := s[rawURL]
	return ok
}

// ParseFunc turns a downloaded feed body into a URL set
type ParseFunc func(r io.Reader) (URLSet, error)

// FeedSource is a threat feed downloaded in full and cached for a TTL
type FeedSource struct {
	ID         string
	URL        string
	parse      ParseFunc
	cache      cache.Store[URLSet]
	ttl        time.Duration
	maxBytes   int64
	httpClient *http.Client
	group      singleflight.Group
	logger     *slog.Logger
}

// NewFeedSource creates a feed source sharing store with the other feeds.
// The cache key is the source ID.
func NewFeedSource(id, feedURL string, parse ParseFunc, store cache.Store[URLSet], ttl time.Duration, httpClient *http.Client, maxBytes int64, logger *slog.Logger) *FeedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedSource{
		ID:         id,
		URL:        feedURL,
		parse:      parse,
		cache:      store,
		ttl:        ttl,
		maxBytes:   maxBytes,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Check tests rawURL against the feed, downloading it when no live copy is cached.
// A failed download yields Unknown and leaves the cache untouched.
func (f *FeedSource) Check(ctx context.Context, rawURL string) model.BlacklistStatus {
	set, err := f.load(ctx)
	if err != nil {
		f.logger.Debug("feed unavailable", "feed", f.ID, "error", err)
		return model.BlacklistUnknown
	}
	if set.Has(rawURL) {
		return model.BlacklistListed
	}
	return model.BlacklistClean
}

// load returns the cached set or downloads a fresh one; concurrent misses share one download
func (f *FeedSource) load(ctx context.Context) (URLSet, error) {
	if set, ok := f.cache.Get(f.ID); ok {
		return set, nil
	}

	ch := f.group.DoChan(f.ID, func() (interface{}, error) {
		if set, ok := f.cache.Get(f.ID); ok {
			return set, nil
		}
		// Detached from the caller so one cancelled request does not fail the others
		timeout := f.httpClient.Timeout
		if timeout <= 0 {
			timeout = defaultFeedTimeout
		}
		dlCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		set, err := f.download(dlCtx)
		if err != nil {
			return nil, err
		}
		f.cache.Set(f.ID, set, f.ttl)
		return set, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(URLSet), nil
	}
}

func (f *FeedSource) download(ctx context.Context) (URLSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	set, err := f.parse(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return set, nil
}

// ParseTextFeed parses a plain-text feed with one URL per line
func ParseTextFeed(r io.Reader) (URLSet, error) {
	set := make(URLSet)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// phishTankEntry is one record of the PhishTank online-valid dump
type phishTankEntry struct {
	URL    string          `json:"url"`
	Online json.RawMessage `json:"online"`
}

// isOnline accepts both the documented "yes"/"no" strings and JSON booleans
func (e phishTankEntry) isOnline() bool {
	v := strings.Trim(strings.ToLower(string(e.Online)), `"`)
	return v == "yes" || v == "true"
}

// ParsePhishTankFeed parses the PhishTank JSON array, keeping online entries
func ParsePhishTankFeed(r io.Reader) (URLSet, error) {
	var entries []phishTankEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}

	set := make(URLSet, len(entries))
	for _, e := range entries {
		if e.URL != "" && e.isOnline() {
			set[e.URL] = struct{}{}
		}
	}
	return set, nil
}
