package model

import "time"

// Config holds every tunable of an analysis run
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Feeds        FeedsConfig        `yaml:"feeds" mapstructure:"feeds"`
	SafeBrowsing SafeBrowsingConfig `yaml:"safe_browsing" mapstructure:"safe_browsing"`
	Whois        WhoisConfig        `yaml:"whois" mapstructure:"whois"`
	TLS          TLSConfig          `yaml:"tls" mapstructure:"tls"`
	DNS          DNSConfig          `yaml:"dns" mapstructure:"dns"`
	Analysis     AnalysisConfig     `yaml:"analysis" mapstructure:"analysis"`
	History      HistoryConfig      `yaml:"history" mapstructure:"history"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig    `yaml:"rate_limiting" mapstructure:"rate_limiting"`
}

// HTTPConfig configures redirect probing and page fetching
type HTTPConfig struct {
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`                   // Full page fetch
	RedirectTimeout time.Duration `yaml:"redirect_timeout" mapstructure:"redirect_timeout"` // Per redirect hop
	MaxRedirects    int           `yaml:"max_redirects" mapstructure:"max_redirects"`
	UserAgent       string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy       string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy      string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// FeedsConfig configures the downloadable threat feeds
type FeedsConfig struct {
	TTLHours     int           `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	OpenPhishURL string        `yaml:"openphish_url" mapstructure:"openphish_url"`
	PhishTankURL string        `yaml:"phishtank_url" mapstructure:"phishtank_url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBytes     int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	CacheDir     string        `yaml:"cache_dir" mapstructure:"cache_dir"` // Empty keeps feeds in memory only
}

// TTL returns the feed cache lifetime
func (f FeedsConfig) TTL() time.Duration {
	return time.Duration(f.TTLHours) * time.Hour
}

// SafeBrowsingConfig configures the threat-matching API
type SafeBrowsingConfig struct {
	APIKey   string        `yaml:"api_key,omitempty" mapstructure:"api_key"` // Empty disables the check
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	ClientID string        `yaml:"client_id" mapstructure:"client_id"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// WhoisConfig configures registration-age lookups
type WhoisConfig struct {
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// TLSConfig configures certificate inspection
type TLSConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Port    int           `yaml:"port" mapstructure:"port"`
}

// DNSConfig configures resolution diagnostics
type DNSConfig struct {
	Resolver string        `yaml:"resolver,omitempty" mapstructure:"resolver"` // host:port, empty uses /etc/resolv.conf
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// AnalysisConfig bounds one analysis end to end
type AnalysisConfig struct {
	Deadline       time.Duration `yaml:"deadline" mapstructure:"deadline"`
	RedirectBudget time.Duration `yaml:"redirect_budget" mapstructure:"redirect_budget"` // Share of the deadline redirects may use
}

// HistoryConfig configures the append-only history file
type HistoryConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	ListLimit int    `yaml:"list_limit" mapstructure:"list_limit"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" mapstructure:"listen_addr"`
}

// LLMConfig configures the optional narrative generator
type LLMConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Provider string        `yaml:"provider" mapstructure:"provider"` // openai
	Model    string        `yaml:"model" mapstructure:"model"`
	APIKey   string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig configures per-domain throttling in batch mode
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// DefaultUserAgent mimics a desktop browser so kits serve their real page
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:         10 * time.Second,
			RedirectTimeout: 8 * time.Second,
			MaxRedirects:    5,
			UserAgent:       DefaultUserAgent,
			MaxBodyBytes:    2_000_000,
		},
		Feeds: FeedsConfig{
			TTLHours:     2,
			OpenPhishURL: "https://openphish.com/feed.txt",
			PhishTankURL: "https://data.phishtank.com/data/online-valid.json",
			Timeout:      10 * time.Second,
			MaxBytes:     256 << 20,
			CacheDir:     "data/feeds",
		},
		SafeBrowsing: SafeBrowsingConfig{
			Endpoint: "https://safebrowsing.googleapis.com/v4/threatMatches:find",
			ClientID: "phishlens",
			Timeout:  8 * time.Second,
		},
		Whois: WhoisConfig{
			Timeout:  8 * time.Second,
			CacheTTL: 6 * time.Hour,
		},
		TLS: TLSConfig{
			Timeout: 8 * time.Second,
			Port:    443,
		},
		DNS: DNSConfig{
			Timeout: 5 * time.Second,
		},
		Analysis: AnalysisConfig{
			Deadline:       30 * time.Second,
			RedirectBudget: 10 * time.Second,
		},
		History: HistoryConfig{
			Path:      "data/history.json",
			ListLimit: 500,
		},
		Server: ServerConfig{
			ListenAddr: ":3000",
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Timeout:  10 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
	}
}
