// Package dnsinfo collects A, AAAA and NS diagnostics for an analyzed host
package dnsinfo

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/ppiankov/phishlens/internal/domain"
	"github.com/ppiankov/phishlens/internal/model"
)

const (
	resolvConfPath = "/etc/resolv.conf"
	fallbackServer = "1.1.1.1:53"
	defaultTimeout = 5 * time.Second
)

// Resolver queries one DNS server with miekg/dns
type Resolver struct {
	server  string
	client  *dns.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver creates a resolver against server ("host:port"). An empty
// server uses the first nameserver in /etc/resolv.conf, then 1.1.1.1.
func NewResolver(server string, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	if server == "" {
		server = systemServer()
	} else if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &Resolver{
		server:  server,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// Server returns the address queries are sent to
func (r *Resolver) Server() string {
	return r.server
}

func systemServer() string {
	cfg, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil || len(cfg.Servers) == 0 {
		return fallbackServer
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port)
}

// Resolve looks up A and AAAA for host and NS for its registrable domain.
// Failures are recorded in DNSInfo.Error, never returned.
func (r *Resolver) Resolve(ctx context.Context, host string) model.DNSInfo {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	host = domain.Hostname(host)
	if host == "" {
		return model.DNSInfo{Error: "empty host"}
	}

	if ip := net.ParseIP(host); ip != nil {
		return model.DNSInfo{Resolved: true, Addresses: []string{ip.String()}}
	}

	var info model.DNSInfo
	var errs []string

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		records, err := r.query(ctx, host, qtype)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		info.Addresses = append(info.Addresses, records...)
	}

	ns, err := r.query(ctx, domain.Registrable(host), dns.TypeNS)
	if err != nil {
		errs = append(errs, err.Error())
	}
	info.NameServers = ns

	info.Resolved = len(info.Addresses) > 0
	if !info.Resolved && len(errs) > 0 {
		info.Error = errs[0]
	}

	r.logger.Debug("dns diagnostics", "host", host, "addresses", len(info.Addresses), "ns", len(info.NameServers))
	return info
}

func (r *Resolver) query(ctx context.Context, name string, qtype uint16) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", dns.TypeToString[qtype], name, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s %s: %s", dns.TypeToString[qtype], name, dns.RcodeToString[resp.Rcode])
	}

	var out []string
	for _, rr := range resp.Answer {
		switch v := rr.(type) {
		case *dns.A:
			out = append(out, v.A.String())
		case *dns.AAAA:
			out = append(out, v.AAAA.String())
		case *dns.NS:
			out = append(out, strings.TrimSuffix(v.Ns, "."))
		}
	}
	return out, nil
}
