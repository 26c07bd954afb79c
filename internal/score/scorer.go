// Package score turns detector observations into ordered signals and
// aggregates them into a risk score and verdict.
package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/phishlens/internal/domain"
	"github.com/ppiankov/phishlens/internal/model"
)

// Observations is everything the detectors saw for one analysis
type Observations struct {
	StartDomain   string // Registrable domain of the normalized input
	FinalURL      string // After redirect resolution
	FinalDomain   string // Registrable domain of FinalURL
	RedirectChain []string
	Blacklists    model.BlacklistReport
	WhoisAgeDays  *int
	Certificate   model.CertificateInfo
	PageFetched   bool
	PageError     string
	Content       model.ContentMeta
	Brands        []model.BrandMatch
}

// Scorer builds signals in a fixed order and aggregates them
type Scorer struct {
	subdomainLimit int
}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{subdomainLimit: domain.DefaultSubdomainLimit}
}

// Signals returns the ordered signal list for obs
func (s *Scorer) Signals(obs Observations) []model.Signal {
	var signals []model.Signal

	// 1. Lexical
	signals = append(signals, s.lexicalSignals(obs)...)

	// 2. Threat intel
	signals = append(signals, blacklistSignals(obs.Blacklists)...)

	// 3. Registration age
	signals = append(signals, ageSignals(obs.WhoisAgeDays)...)

	// 4. Dynamic DNS
	if domain.IsDynamicDNS(obs.FinalDomain) {
		signals = append(signals, model.Signal{
			Name:   model.SignalDynamicDNS,
			Weight: WeightDynamicDNS,
			Detail: fmt.Sprintf("%s is served by a dynamic DNS provider", obs.FinalDomain),
		})
	}

	// 5. Certificate
	signals = append(signals, certificateSignals(obs.Certificate, obs.FinalURL)...)

	// 6. Content
	if obs.PageFetched {
		signals = append(signals, contentSignals(obs.Content)...)
	} else {
		signals = append(signals, model.Signal{
			Name:   model.SignalPageFetchFailed,
			Weight: WeightPageFetchFailed,
			Detail: fmt.Sprintf("Page could not be downloaded: %s", obs.PageError),
		})
	}

	// 7. Brand similarity, best match only
	if len(obs.Brands) > 0 {
		best := obs.Brands[0]
		signals = append(signals, model.Signal{
			Name:   model.SignalTyposquatting,
			Weight: WeightTyposquatting,
			Detail: fmt.Sprintf("%s (~%d%%), legitimate: %s", best.Brand, best.Similarity, strings.Join(best.KnownDomains, ", ")),
		})
	}

	return signals
}

func (s *Scorer) lexicalSignals(obs Observations) []model.Signal {
	var signals []model.Signal

	if domain.IsShortener(obs.StartDomain) && len(obs.RedirectChain) > 0 {
		signals = append(signals, model.Signal{
			Name:   model.SignalShortenerExpanded,
			Weight: WeightShortenerExpanded,
			Detail: fmt.Sprintf("Redirects: %d", len(obs.RedirectChain)),
		})
	}

	if excessive, count := domain.SubdomainCount(obs.FinalURL, s.subdomainLimit); excessive {
		signals = append(signals, model.Signal{
			Name:   model.SignalExcessiveSubdomains,
			Weight: WeightExcessiveSubdomains,
			Detail: fmt.Sprintf("%d subdomains", count),
		})
	}

	if chars := domain.SuspiciousChars(obs.FinalURL); len(chars) > 0 {
		signals = append(signals, model.Signal{
			Name:   model.SignalSuspiciousChars,
			Weight: WeightSuspiciousChars,
			Detail: fmt.Sprintf("Found: %s", strings.Join(chars, " ")),
		})
	}

	if subs := domain.LeetSubstitutions(obs.FinalDomain); len(subs) > 0 {
		parts := make([]string, 0, len(subs))
		for _, sub := range subs {
			parts = append(parts, sub.Digit+"→"+sub.Meaning)
		}
		signals = append(signals, model.Signal{
			Name:   model.SignalLeetSimilarity,
			Weight: WeightLeetSimilarity,
			Detail: fmt.Sprintf("Substitutions: %s", strings.Join(parts, ", ")),
		})
	}

	return signals
}

func blacklistSignals(report model.BlacklistReport) []model.Signal {
	var signals []model.Signal
	if report.OpenPhish == model.BlacklistListed {
		signals = append(signals, model.Signal{Name: model.SignalListedOpenPhish, Weight: WeightListedFeed, Detail: "Listed as active phishing by OpenPhish"})
	}
	if report.PhishTank == model.BlacklistListed {
		signals = append(signals, model.Signal{Name: model.SignalListedPhishTank, Weight: WeightListedFeed, Detail: "Listed as active phishing by PhishTank"})
	}
	if report.SafeBrowsing == model.BlacklistListed {
		signals = append(signals, model.Signal{Name: model.SignalListedSafeBrowsing, Weight: WeightListedSafeBrowsing, Detail: "Flagged as a threat by Google Safe Browsing"})
	}
	return signals
}

func ageSignals(ageDays *int) []model.Signal {
	switch {
	case ageDays == nil:
		return []model.Signal{{Name: model.SignalWhoisUnavailable, Weight: WeightWhoisUnavailable, Detail: "Registration age could not be determined"}}
	case *ageDays < VeryNewDays:
		return []model.Signal{{Name: model.SignalDomainVeryNew, Weight: WeightDomainVeryNew, Detail: fmt.Sprintf("%d days old", *ageDays)}}
	case *ageDays < YoungDays:
		return []model.Signal{{Name: model.SignalDomainYoung, Weight: WeightDomainYoung, Detail: fmt.Sprintf("%d days old", *ageDays)}}
	}
	return nil
}

func certificateSignals(cert model.CertificateInfo, finalURL string) []model.Signal {
	if !cert.Present {
		if strings.HasPrefix(strings.ToLower(finalURL), "https://") {
			return []model.Signal{{Name: model.SignalCertUnreadable, Weight: WeightCertUnreadable, Detail: "Certificate could not be read"}}
		}
		return []model.Signal{{Name: model.SignalNoHTTPS, Weight: WeightNoHTTPS, Detail: "Connection is not encrypted"}}
	}

	var signals []model.Signal
	if cert.HostnameMatches != nil && !*cert.HostnameMatches {
		signals = append(signals, model.Signal{Name: model.SignalCertHostMismatch, Weight: WeightCertHostMismatch, Detail: "Certificate does not cover the hostname"})
	}
	if cert.DaysToExpire != nil {
		days := *cert.DaysToExpire
		switch {
		case days < 0:
			signals = append(signals, model.Signal{Name: model.SignalCertExpired, Weight: WeightCertExpired, Detail: fmt.Sprintf("Expired %d days ago", -days)})
		case days < NearExpiryDays:
			signals = append(signals, model.Signal{Name: model.SignalCertNearExpiry, Weight: WeightCertNearExpiry, Detail: fmt.Sprintf("Expires in %d days", days)})
		}
	}
	return signals
}

func contentSignals(meta model.ContentMeta) []model.Signal {
	var signals []model.Signal

	if meta.MetaRefreshTarget != "" {
		signals = append(signals, model.Signal{Name: model.SignalMetaRefresh, Weight: WeightMetaRefresh, Detail: "Redirects to " + meta.MetaRefreshTarget})
	}
	if meta.SensitiveForm {
		signals = append(signals, model.Signal{Name: model.SignalSensitiveForm, Weight: WeightSensitiveForm, Detail: "Collects passwords, CPF, CVV or one-time codes"})
	}
	if meta.LoginLike && meta.FormCount > 0 {
		signals = append(signals, model.Signal{Name: model.SignalLoginForm, Weight: WeightLoginForm, Detail: "Authentication form detected"})
	}
	if len(meta.KeywordsFound) > 0 {
		kws := meta.KeywordsFound
		if len(kws) > maxKeywordsInDetail {
			kws = kws[:maxKeywordsInDetail]
		}
		signals = append(signals, model.Signal{Name: model.SignalPressureKeywords, Weight: WeightPressureKeywords, Detail: strings.Join(kws, ", ")})
	}
	if n := len(meta.CrossDomainFormActions); n > 0 {
		signals = append(signals, model.Signal{Name: model.SignalCrossDomainForm, Weight: WeightCrossDomainForm, Detail: fmt.Sprintf("%d form action(s) post to another domain", n)})
	}
	for _, trick := range meta.Tricks {
		signals = append(signals, model.Signal{Name: model.SignalAntiInspection, Weight: WeightAntiInspection, Detail: trick})
	}

	return signals
}

// Total returns min(100, sum of weights)
func Total(signals []model.Signal) int {
	total := 0
	for _, s := range signals {
		if s.Weight > 0 {
			total += s.Weight
		}
	}
	return min(total, MaxScore)
}

// VerdictFor maps a score to its verdict
func VerdictFor(score int) model.Verdict {
	switch {
	case score >= MaliciousThreshold:
		return model.VerdictMalicious
	case score >= SuspiciousThreshold:
		return model.VerdictSuspicious
	default:
		return model.VerdictProbablySafe
	}
}

// Aggregate returns the score and verdict for signals
func Aggregate(signals []model.Signal) (int, model.Verdict) {
	total := Total(signals)
	return total, VerdictFor(total)
}
