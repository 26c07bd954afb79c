// Package domain holds the pure lexical heuristics applied to URLs and hostnames.
package domain

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// DefaultSubdomainLimit is the subdomain count above which a host is flagged
const DefaultSubdomainLimit = 3

// suspiciousChars are characters that rarely belong in a legitimate link
var suspiciousChars = []string{"@", "%", ";", "\"", "'", "`", "|", "\\", " ", "<", ">"}

// leetMap lists digits commonly used in place of letters, in check order
var leetMap = []LeetSubstitution{
	{Digit: "0", Meaning: "o"},
	{Digit: "1", Meaning: "l/i"},
	{Digit: "3", Meaning: "e"},
	{Digit: "5", Meaning: "s"},
	{Digit: "7", Meaning: "t"},
}

var shorteners = map[string]bool{
	"bit.ly":      true,
	"tinyurl.com": true,
	"goo.gl":      true,
	"t.co":        true,
	"is.gd":       true,
	"ow.ly":       true,
	"buff.ly":     true,
	"rebrand.ly":  true,
	"cutt.ly":     true,
	"rb.gy":       true,
	"lnkd.in":     true,
}

var dynamicDNSSuffixes = []string{
	"no-ip.org",
	"zapto.org",
	"ddns.net",
	"duckdns.org",
	"dynu.net",
	"hopto.org",
	"sytes.net",
	"dynserv.org",
	"dyndns.org",
	"servebeer.com",
	"servegame.com",
	"myftp.biz",
	"myftp.org",
	"gotdns.com",
}

// LeetSubstitution is a digit found in a domain and the letter it imitates
type LeetSubstitution struct {
	Digit   string `json:"digit"`
	Meaning string `json:"meaning"`
}

// Hostname extracts the lowercase ASCII hostname from a URL or bare host.
// Returns "" when nothing host-like can be found.
func Hostname(urlOrHost string) string {
	s := strings.TrimSpace(urlOrHost)
	if s == "" {
		return ""
	}

	var host string
	if strings.Contains(s, "://") {
		parsed, err := url.Parse(s)
		if err != nil {
			return ""
		}
		host = parsed.Hostname()
	} else {
		// Bare host, possibly with port or path
		if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
			s = s[:idx]
		}
		if h, _, err := net.SplitHostPort(s); err == nil {
			s = h
		}
		host = s
	}

	host = strings.TrimRight(strings.ToLower(host), ".")
	if host == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	return host
}

// Registrable returns the public-suffix-aware registrable domain (eTLD+1).
// IP literals, single-label hosts and bare suffixes come back as the hostname itself.
func Registrable(urlOrHost string) string {
	host := Hostname(urlOrHost)
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}

// SubdomainCount counts labels to the left of the registrable domain and
// reports whether the count exceeds limit.
func SubdomainCount(urlOrHost string, limit int) (bool, int) {
	host := Hostname(urlOrHost)
	reg := Registrable(host)
	if host == "" || host == reg {
		return false, 0
	}

	sub := strings.TrimSuffix(strings.TrimSuffix(host, reg), ".")
	count := 0
	for _, label := range strings.Split(sub, ".") {
		if label != "" {
			count++
		}
	}
	return count > limit, count
}

// SuspiciousChars returns the blacklisted characters present in rawURL, in check order
func SuspiciousChars(rawURL string) []string {
	var found []string
	for _, c := range suspiciousChars {
		if strings.Contains(rawURL, c) {
			found = append(found, c)
		}
	}
	return found
}

// LeetSubstitutions returns the digits in domain that commonly stand in for letters
func LeetSubstitutions(domain string) []LeetSubstitution {
	var found []LeetSubstitution
	for _, sub := range leetMap {
		if strings.Contains(domain, sub.Digit) {
			found = append(found, sub)
		}
	}
	return found
}

// IsShortener reports whether domain is a known URL-shortening service
func IsShortener(domain string) bool {
	return shorteners[strings.ToLower(domain)]
}

// IsDynamicDNS reports whether domain sits under a dynamic DNS provider (suffix match)
func IsDynamicDNS(domain string) bool {
	d := strings.ToLower(domain)
	for _, suffix := range dynamicDNSSuffixes {
		if strings.HasSuffix(d, suffix) {
			return true
		}
	}
	return false
}

// FirstLabel returns the leftmost label of a domain ("paypa1" for "paypa1.com")
func FirstLabel(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	return label
}
