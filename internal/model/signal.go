package model

// Signal is one piece of evidence contributed by a detector.
// Several signals may share a Name within one analysis (anti-inspection tricks).
type Signal struct {
	Name   string `json:"name"`   // Stable identifier, e.g. "listed_openphish"
	Weight int    `json:"weight"` // Contribution to the risk score, never negative
	Detail string `json:"detail"` // Human-readable explanation
}

// Verdict is the three-tier classification derived from the risk score
type Verdict string

const (
	VerdictProbablySafe Verdict = "PROBABLY_SAFE"
	VerdictSuspicious   Verdict = "SUSPICIOUS"
	VerdictMalicious    Verdict = "MALICIOUS"
)

// Signal names emitted by the pipeline
const (
	SignalShortenerExpanded   = "shortener_expanded"
	SignalExcessiveSubdomains = "excessive_subdomains"
	SignalSuspiciousChars     = "suspicious_characters"
	SignalLeetSimilarity      = "leet_similarity"
	SignalListedOpenPhish     = "listed_openphish"
	SignalListedPhishTank     = "listed_phishtank"
	SignalListedSafeBrowsing  = "listed_safe_browsing"
	SignalDomainVeryNew       = "domain_very_new"
	SignalDomainYoung         = "domain_young"
	SignalWhoisUnavailable    = "whois_unavailable"
	SignalDynamicDNS          = "dynamic_dns"
	SignalCertHostMismatch    = "cert_hostname_mismatch"
	SignalCertExpired         = "cert_expired"
	SignalCertNearExpiry      = "cert_near_expiry"
	SignalCertUnreadable      = "cert_unreadable"
	SignalNoHTTPS             = "no_https"
	SignalMetaRefresh         = "meta_refresh"
	SignalSensitiveForm       = "sensitive_form"
	SignalLoginForm           = "login_form"
	SignalPressureKeywords    = "pressure_keywords"
	SignalCrossDomainForm     = "cross_domain_form"
	SignalAntiInspection      = "anti_inspection"
	SignalPageFetchFailed     = "page_fetch_failed"
	SignalTyposquatting       = "typosquatting"
)
