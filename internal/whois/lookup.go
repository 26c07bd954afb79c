// Package whois looks up domain registration dates and derives domain age.
package whois

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	lwhois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"github.com/ppiankov/phishlens/internal/cache"
)

// ErrNoCreationDate is returned when a record carries no recognizable creation date
var ErrNoCreationDate = errors.New("no creation date in whois record")

// creationPatterns are tried in order after the structured parser
var creationPatterns = compilePatterns(
	`Creation Date:\s*(.+)`,
	`Created On:\s*(.+)`,
	`Registered On:\s*(.+)`,
	`Domain Registration Date:\s*(.+)`,
	`Registration Time:\s*(.+)`,
	`Domain Create Date:\s*(.+)`,
	`Domain registered:\s*(.+)`,
	`Record created on\s*(.+)`,
	`created:\s*(.+)`,
	`registered:\s*(.+)`,
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-2006 15:04:05 MST",
	"2006.01.02 15:04:05",
	"2006.01.02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"02.01.2006 15:04:05",
	"02.01.2006",
	"01/02/2006",
	"Mon Jan 02 15:04:05 MST 2006",
	"Mon Jan 2 2006",
	"January 2 2006",
	"20060102",
}

func compilePatterns(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?im)^\\s*" + p + "$")
	}
	return out
}

// QueryFunc returns the raw WHOIS text for domain
type QueryFunc func(ctx context.Context, domain string) (string, error)

// Lookup resolves registration age, caching successful creation dates
type Lookup struct {
	query    QueryFunc
	cache    cache.Store[time.Time]
	cacheTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewLookup creates a lookup backed by the likexian WHOIS client
func NewLookup(timeout, cacheTTL time.Duration, logger *slog.Logger) *Lookup {
	client := lwhois.NewClient()
	client.SetTimeout(timeout)

	query := func(ctx context.Context, domain string) (string, error) {
		type answer struct {
			raw string
			err error
		}
		ch := make(chan answer, 1)
		go func() {
			raw, err := client.Whois(domain)
			ch <- answer{raw: raw, err: err}
		}()

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case a := <-ch:
			return a.raw, a.err
		}
	}

	return NewLookupWithQuery(query, cache.NewMemoryCache[time.Time](cacheTTL, 10*time.Minute), cacheTTL, logger)
}

// NewLookupWithQuery creates a lookup over an arbitrary query function
func NewLookupWithQuery(query QueryFunc, store cache.Store[time.Time], cacheTTL time.Duration, logger *slog.Logger) *Lookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lookup{
		query:    query,
		cache:    store,
		cacheTTL: cacheTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// AgeDays returns whole days since domain was registered.
// ok is false when the record is unavailable or carries no creation date,
// which is common and not an error.
func (l *Lookup) AgeDays(ctx context.Context, domain string) (int, bool) {
	created, err := l.CreatedAt(ctx, domain)
	if err != nil {
		l.logger.Debug("whois age unavailable", "domain", domain, "error", err)
		return 0, false
	}
	return AgeDays(created, l.now()), true
}

// CreatedAt returns the registration date of domain
func (l *Lookup) CreatedAt(ctx context.Context, domain string) (time.Time, error) {
	key := strings.ToLower(domain)
	if created, ok := l.cache.Get(key); ok {
		return created, nil
	}

	raw, err := l.query(ctx, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("whois query: %w", err)
	}

	created, ok := CreationDate(raw)
	if !ok {
		return time.Time{}, ErrNoCreationDate
	}

	l.cache.Set(key, created, l.cacheTTL)
	return created, nil
}

// CreationDate extracts the creation date from a raw WHOIS record.
// The structured parser is consulted first, then the historical field names in order.
func CreationDate(raw string) (time.Time, bool) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")

	if info, err := whoisparser.Parse(text); err == nil && info.Domain != nil {
		if t, ok := parseDate(info.Domain.CreatedDate); ok {
			return t, true
		}
	}

	for _, re := range creationPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if t, ok := parseDate(m[1]); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// parseDate tries the known layouts against a WHOIS date value
func parseDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if idx := strings.Index(s, " #"); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}
	s = strings.TrimSuffix(s, " (UTC)")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return time.Time{}, false
	}

	candidates := []string{s}
	if first, _, found := strings.Cut(s, " "); found {
		candidates = append(candidates, first)
	}

	for _, c := range candidates {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// AgeDays returns the whole days elapsed between created and now
func AgeDays(created, now time.Time) int {
	days := int(now.Sub(created).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
