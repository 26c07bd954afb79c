package blacklist

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ppiankov/phishlens/internal/cache"
	"github.com/ppiankov/phishlens/internal/model"
	"github.com/ppiankov/phishlens/internal/util"
)

// Feed source identifiers, also used as cache keys
const (
	SourceOpenPhish = "openphish"
	SourcePhishTank = "phishtank"
)

// Source is one membership test
type Source interface {
	Check(ctx context.Context, rawURL string) model.BlacklistStatus
}

// Checker runs the three sources concurrently
type Checker struct {
	openPhish    Source
	phishTank    Source
	safeBrowsing Source
}

// NewChecker wires the sources from configuration. store is shared
// process-wide so every request reuses the downloaded feeds. Intel endpoints
// get a verifying transport since they receive the API key.
func NewChecker(cfg *model.Config, store cache.Store[URLSet], logger *slog.Logger) *Checker {
	transport := util.NewTrustedTransport(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy)
	feedClient := &http.Client{Timeout: cfg.Feeds.Timeout, Transport: transport}
	sbClient := &http.Client{Timeout: cfg.SafeBrowsing.Timeout, Transport: transport}

	return &Checker{
		openPhish: NewFeedSource(SourceOpenPhish, cfg.Feeds.OpenPhishURL, ParseTextFeed,
			store, cfg.Feeds.TTL(), feedClient, cfg.Feeds.MaxBytes, logger),
		phishTank: NewFeedSource(SourcePhishTank, cfg.Feeds.PhishTankURL, ParsePhishTankFeed,
			store, cfg.Feeds.TTL(), feedClient, cfg.Feeds.MaxBytes, logger),
		safeBrowsing: NewSafeBrowsing(cfg.SafeBrowsing.Endpoint, cfg.SafeBrowsing.APIKey,
			cfg.SafeBrowsing.ClientID, sbClient, logger),
	}
}

// NewCheckerFromSources builds a checker from arbitrary sources
func NewCheckerFromSources(openPhish, phishTank, safeBrowsing Source) *Checker {
	return &Checker{openPhish: openPhish, phishTank: phishTank, safeBrowsing: safeBrowsing}
}

// Check queries every source concurrently; the outcomes are independent
func (c *Checker) Check(ctx context.Context, rawURL string) model.BlacklistReport {
	var report model.BlacklistReport
	var wg sync.WaitGroup

	run := func(src Source, out *model.BlacklistStatus) {
		defer wg.Done()
		if src == nil {
			*out = model.BlacklistUnknown
			return
		}
		*out = src.Check(ctx, rawURL)
	}

	wg.Add(3)
	go run(c.openPhish, &report.OpenPhish)
	go run(c.phishTank, &report.PhishTank)
	go run(c.safeBrowsing, &report.SafeBrowsing)
	wg.Wait()

	return report
}
