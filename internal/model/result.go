package model

import "time"

// AnalysisResult is the complete, immutable outcome of one URL analysis
type AnalysisResult struct {
	ID          string       `json:"id"`
	URLInput    string       `json:"url_input"`   // Raw operator input
	FinalURL    string       `json:"final_url"`   // After normalization, redirects and page fetch
	Domain      string       `json:"domain"`      // Registrable domain of the resolved URL
	CreatedAt   time.Time    `json:"created_at"`
	RiskScore   int          `json:"risk_score"`  // 0-100
	Verdict     Verdict      `json:"verdict"`
	Signals     []Signal     `json:"signals"`
	Meta        Diagnostics  `json:"meta"`
	Explanation *Explanation `json:"explanation,omitempty"` // Optional LLM narrative, never affects score
}

// Diagnostics is the fixed-shape record of what every detector observed
type Diagnostics struct {
	RedirectChain   []string        `json:"redirect_chain"`
	WhoisAgeDays    *int            `json:"whois_age_days"`
	Blacklists      BlacklistReport `json:"blacklists"`
	Certificate     CertificateInfo `json:"certificate"`
	Page            PageInfo        `json:"page"`
	Content         ContentMeta     `json:"content"`
	BrandSimilarity []BrandMatch    `json:"brand_similarity"`
	DNS             DNSInfo         `json:"dns"`
	DurationMS      int64           `json:"duration_ms"`
}

// BlacklistStatus is the outcome of one threat-intel membership test
type BlacklistStatus string

const (
	BlacklistUnknown BlacklistStatus = "unknown"
	BlacklistClean   BlacklistStatus = "clean"
	BlacklistListed  BlacklistStatus = "listed"
)

// BlacklistReport holds the three independent source outcomes
type BlacklistReport struct {
	OpenPhish    BlacklistStatus `json:"openphish"`
	PhishTank    BlacklistStatus `json:"phishtank"`
	SafeBrowsing BlacklistStatus `json:"safe_browsing"`
}

// CertificateInfo describes the leaf certificate served on port 443.
// When Present is false every other field is empty.
type CertificateInfo struct {
	Present         bool       `json:"present"`
	Issuer          string     `json:"issuer,omitempty"`
	Subject         string     `json:"subject,omitempty"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidTo         *time.Time `json:"valid_to,omitempty"`
	SubjectAltNames []string   `json:"subject_alt_names,omitempty"`
	DaysToExpire    *int       `json:"days_to_expire,omitempty"`    // Negative once expired
	HostnameMatches *bool      `json:"hostname_matches,omitempty"`
}

// PageInfo records the outcome of the full page fetch
type PageInfo struct {
	Fetched     bool   `json:"fetched"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ContentMeta is the result of the page content heuristics
type ContentMeta struct {
	FormCount              int      `json:"form_count"`
	HasPasswordField       bool     `json:"has_password_field"`
	LoginLike              bool     `json:"login_like"`
	SensitiveForm          bool     `json:"sensitive_form"`
	KeywordsFound          []string `json:"keywords_found"`
	CrossDomainFormActions []string `json:"cross_domain_form_actions"`
	Tricks                 []string `json:"tricks"`
	MetaRefreshTarget      string   `json:"meta_refresh_target,omitempty"`
}

// EmptyContentMeta returns a ContentMeta whose lists encode as [] rather than null
func EmptyContentMeta() ContentMeta {
	return ContentMeta{
		KeywordsFound:          []string{},
		CrossDomainFormActions: []string{},
		Tricks:                 []string{},
	}
}

// BrandMatch is a brand whose name is lexically close to the analyzed domain
type BrandMatch struct {
	Brand        string   `json:"brand"`
	Similarity   int      `json:"similarity"`    // 0-100
	KnownDomains []string `json:"known_domains"` // Legitimate registrable domains of the brand
}

// DNSInfo holds resolution diagnostics for the analyzed host
type DNSInfo struct {
	Resolved    bool     `json:"resolved"`
	Addresses   []string `json:"addresses,omitempty"`
	NameServers []string `json:"name_servers,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Explanation is an optional narrative produced by an LLM after scoring
type Explanation struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	SummaryMD string `json:"summary_md"`
}
