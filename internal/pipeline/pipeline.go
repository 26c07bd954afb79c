package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/phishlens/internal/blacklist"
	"github.com/ppiankov/phishlens/internal/brand"
	"github.com/ppiankov/phishlens/internal/cache"
	"github.com/ppiankov/phishlens/internal/dnsinfo"
	"github.com/ppiankov/phishlens/internal/domain"
	"github.com/ppiankov/phishlens/internal/extract"
	"github.com/ppiankov/phishlens/internal/llm"
	"github.com/ppiankov/phishlens/internal/model"
	"github.com/ppiankov/phishlens/internal/score"
	"github.com/ppiankov/phishlens/internal/tlscert"
	"github.com/ppiankov/phishlens/internal/util"
	"github.com/ppiankov/phishlens/internal/whois"
)

// Detector contracts, one per stage. The concrete packages satisfy them;
// tests substitute fakes.
type (
	RedirectResolver interface {
		Resolve(ctx context.Context, startURL string) (string, []string)
	}
	PageFetcher interface {
		Fetch(ctx context.Context, rawURL string) (*FetchResult, error)
	}
	BlacklistChecker interface {
		Check(ctx context.Context, rawURL string) model.BlacklistReport
	}
	AgeLookup interface {
		AgeDays(ctx context.Context, domain string) (int, bool)
	}
	CertInspector interface {
		Inspect(ctx context.Context, host string) model.CertificateInfo
	}
	DNSResolver interface {
		Resolve(ctx context.Context, host string) model.DNSInfo
	}
	ContentAnalyzer interface {
		Analyze(htmlContent, baseURL string) model.ContentMeta
	}
	BrandMatcher interface {
		Match(host string) []model.BrandMatch
	}
	Explainer interface {
		Explain(ctx context.Context, result model.AnalysisResult) (*model.Explanation, error)
	}
)

// Pipeline orchestrates one URL analysis from normalization to verdict
type Pipeline struct {
	resolver  RedirectResolver
	fetcher   PageFetcher
	blacklist BlacklistChecker
	whois     AgeLookup
	certs     CertInspector
	dns       DNSResolver
	content   ContentAnalyzer
	brands    BrandMatcher
	explainer Explainer // nil when disabled
	scorer    *score.Scorer
	deadline  time.Duration
	redirects time.Duration // Redirect resolution budget within deadline
	now       func() time.Time
	logger    *slog.Logger
}

// Option overrides one pipeline collaborator
type Option func(*Pipeline)

func WithResolver(r RedirectResolver) Option   { return func(p *Pipeline) { p.resolver = r } }
func WithFetcher(f PageFetcher) Option         { return func(p *Pipeline) { p.fetcher = f } }
func WithBlacklist(b BlacklistChecker) Option  { return func(p *Pipeline) { p.blacklist = b } }
func WithAgeLookup(a AgeLookup) Option         { return func(p *Pipeline) { p.whois = a } }
func WithCertInspector(c CertInspector) Option { return func(p *Pipeline) { p.certs = c } }
func WithDNSResolver(d DNSResolver) Option     { return func(p *Pipeline) { p.dns = d } }
func WithExplainer(e Explainer) Option         { return func(p *Pipeline) { p.explainer = e } }
func WithClock(now func() time.Time) Option    { return func(p *Pipeline) { p.now = now } }

// WithBudgets overrides the analysis deadline and the redirect share of it
func WithBudgets(deadline, redirects time.Duration) Option {
	return func(p *Pipeline) {
		p.deadline = deadline
		p.redirects = redirects
	}
}

// NewPipeline wires the production detectors from cfg. The feed cache is
// owned by the pipeline and shared by every analysis it runs.
func NewPipeline(cfg *model.Config, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	var transport http.RoundTripper = util.NewTransport(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy)

	p := &Pipeline{
		resolver:  NewResolver(cfg.HTTP.RedirectTimeout, cfg.HTTP.UserAgent, transport),
		fetcher:   NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.HTTP.MaxRedirects, transport),
		blacklist: blacklist.NewChecker(cfg, feedStore(cfg.Feeds.CacheDir, logger), logger),
		whois:     whois.NewLookup(cfg.Whois.Timeout, cfg.Whois.CacheTTL, logger),
		certs:     tlscert.NewInspector(cfg.TLS.Port, cfg.TLS.Timeout, logger),
		dns:       dnsinfo.NewResolver(cfg.DNS.Resolver, cfg.DNS.Timeout, logger),
		content:   extract.NewContentAnalyzer(),
		brands:    brand.NewMatcher(nil),
		scorer:    score.NewScorer(),
		deadline:  cfg.Analysis.Deadline,
		redirects: cfg.Analysis.RedirectBudget,
		now:       time.Now,
		logger:    logger,
	}

	if cfg.LLM.Enabled {
		explainer, err := llm.NewExplainer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			logger.Warn("LLM explanations disabled", "error", err)
		} else if explainer.IsEnabled() {
			p.explainer = explainer
		}
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// feedStore keeps downloaded feeds in memory, backed by dir when set so
// separate CLI invocations share one download per TTL window.
func feedStore(dir string, logger *slog.Logger) cache.Store[blacklist.URLSet] {
	if dir == "" {
		return cache.NewTTLCache[blacklist.URLSet]()
	}
	return cache.NewLayeredCache[blacklist.URLSet](dir, logger)
}

// Analyze runs every detector against input and returns the scored result.
// Detector failures, including the analysis deadline expiring, degrade to
// absent data or low-weight signals. Errors are returned only for invalid
// input (ErrInvalidURL) and for ctx being cancelled by the caller
// (ErrCancelled), since a result built from aborted detectors must not be kept.
func (p *Pipeline) Analyze(ctx context.Context, input string) (*model.AnalysisResult, error) {
	started := p.now()

	normalized, err := NormalizeURL(input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	actx := ctx
	if p.deadline > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, p.deadline)
		defer cancel()
	}

	// 1. Redirects must resolve before anything that needs the final URL.
	// They get their own budget so a slow chain leaves time for the rest.
	rctx := actx
	if p.redirects > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(actx, p.redirects)
		defer cancel()
	}
	finalURL, chain := p.resolver.Resolve(rctx, normalized)
	finalHost := domain.Hostname(finalURL)
	finalDomain := domain.Registrable(finalURL)

	// 2. Independent detectors
	var (
		report   model.BlacklistReport
		ageDays  *int
		cert     model.CertificateInfo
		dnsInfo  model.DNSInfo
		page     model.PageInfo
		content  model.ContentMeta
		pageURL  string
		fetchErr string
	)
	content = model.EmptyContentMeta()

	g, gctx := errgroup.WithContext(actx)
	g.Go(func() error {
		report = p.blacklist.Check(gctx, finalURL)
		return nil
	})
	g.Go(func() error {
		if days, ok := p.whois.AgeDays(gctx, finalDomain); ok {
			ageDays = &days
		}
		return nil
	})
	g.Go(func() error {
		cert = p.certs.Inspect(gctx, finalHost)
		return nil
	})
	g.Go(func() error {
		dnsInfo = p.dns.Resolve(gctx, finalHost)
		return nil
	})
	g.Go(func() error {
		fetched, err := p.fetcher.Fetch(gctx, finalURL)
		if err != nil {
			fetchErr = err.Error()
			page = model.PageInfo{Fetched: false, Error: fetchErr}
			return nil
		}
		pageURL = fetched.FinalURL
		page = model.PageInfo{Fetched: true, StatusCode: fetched.StatusCode, ContentType: fetched.ContentType}
		content = p.content.Analyze(fetched.HTML, pageURL)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		p.logger.Info("analysis cancelled", "url", normalized, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	brands := p.brands.Match(finalDomain)

	// 3. Signals and score
	signals := p.scorer.Signals(score.Observations{
		StartDomain:   domain.Registrable(normalized),
		FinalURL:      finalURL,
		FinalDomain:   finalDomain,
		RedirectChain: chain,
		Blacklists:    report,
		WhoisAgeDays:  ageDays,
		Certificate:   cert,
		PageFetched:   page.Fetched,
		PageError:     fetchErr,
		Content:       content,
		Brands:        brands,
	})
	riskScore, verdict := score.Aggregate(signals)

	resultURL := finalURL
	if pageURL != "" {
		resultURL = pageURL
	}
	if chain == nil {
		chain = []string{}
	}

	result := &model.AnalysisResult{
		ID:        uuid.NewString(),
		URLInput:  input,
		FinalURL:  resultURL,
		Domain:    finalDomain,
		CreatedAt: p.now().UTC(),
		RiskScore: riskScore,
		Verdict:   verdict,
		Signals:   signals,
		Meta: model.Diagnostics{
			RedirectChain:   chain,
			WhoisAgeDays:    ageDays,
			Blacklists:      report,
			Certificate:     cert,
			Page:            page,
			Content:         content,
			BrandSimilarity: brands,
			DNS:             dnsInfo,
		},
	}

	// 4. Optional narrative, after scoring so it can never change it
	if p.explainer != nil {
		explanation, err := p.explainer.Explain(ctx, *result)
		if err != nil {
			p.logger.Warn("LLM explanation failed", "url", normalized, "error", err)
		} else {
			result.Explanation = explanation
		}
	}

	result.Meta.DurationMS = p.now().Sub(started).Milliseconds()

	p.logger.Info("analysis complete",
		"url", normalized,
		"final_url", result.FinalURL,
		"score", riskScore,
		"verdict", verdict,
		"signals", len(signals),
		"duration_ms", result.Meta.DurationMS,
	)

	return result, nil
}
