// Package tlscert reads the leaf certificate a host serves and evaluates
// hostname match and expiry. Trust chains are not verified.
package tlscert

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log/slog"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/phishlens/internal/model"
)

// DefaultTimeout bounds the TCP connect plus TLS handshake
const DefaultTimeout = 8 * time.Second

// Inspector connects to host:port and extracts certificate fields
type Inspector struct {
	port    int
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewInspector creates an inspector for the given port
func NewInspector(port int, timeout time.Duration, logger *slog.Logger) *Inspector {
	if port <= 0 {
		port = 443
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{port: port, timeout: timeout, now: time.Now, logger: logger}
}

// Inspect returns the leaf certificate of host. Any failure yields Present=false.
func (i *Inspector) Inspect(ctx context.Context, host string) model.CertificateInfo {
	cert, err := i.leaf(ctx, host)
	if err != nil {
		i.logger.Debug("certificate unavailable", "host", host, "error", err)
		return model.CertificateInfo{Present: false}
	}
	return Describe(cert, host, i.now())
}

func (i *Inspector) leaf(ctx context.Context, host string) (*x509.Certificate, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: i.timeout},
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true, //nolint:gosec // leaf fields are inspected, not trusted
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(i.port)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return nil, errors.New("not a TLS connection")
	}

	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, errors.New("no peer certificate")
	}
	return certs[0], nil
}

// Describe converts a certificate into CertificateInfo relative to host and now
func Describe(cert *x509.Certificate, host string, now time.Time) model.CertificateInfo {
	sans := make([]string, 0, len(cert.DNSNames)+len(cert.IPAddresses))
	sans = append(sans, cert.DNSNames...)
	for _, ip := range cert.IPAddresses {
		sans = append(sans, ip.String())
	}

	validFrom := cert.NotBefore.UTC()
	validTo := cert.NotAfter.UTC()
	days := DaysToExpire(validTo, now)
	matches := MatchesAny(host, sans)

	return model.CertificateInfo{
		Present:         true,
		Issuer:          cert.Issuer.String(),
		Subject:         cert.Subject.String(),
		ValidFrom:       &validFrom,
		ValidTo:         &validTo,
		SubjectAltNames: sans,
		DaysToExpire:    &days,
		HostnameMatches: &matches,
	}
}

// DaysToExpire returns whole days until validTo, negative once expired
func DaysToExpire(validTo, now time.Time) int {
	return int(math.Floor(validTo.Sub(now).Hours() / 24))
}

// MatchesAny reports whether any SAN entry covers host
func MatchesAny(host string, sans []string) bool {
	for _, san := range sans {
		if HostnameMatches(host, san) {
			return true
		}
	}
	return false
}

// HostnameMatches compares host to one SAN entry. A wildcard "*.suffix"
// matches hosts ending in ".suffix" with at least three labels, so
// "*.example.com" covers "a.example.com" but never "example.com".
func HostnameMatches(host, pattern string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	pattern = strings.ToLower(strings.TrimSuffix(pattern, "."))

	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:]
		return strings.HasSuffix(host, suffix) && len(strings.Split(host, ".")) >= 3
	}
	return host == pattern
}
