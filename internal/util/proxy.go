package util

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"
)

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// NewTransport builds the transport shared by outbound analysis clients.
// Certificate verification is off: analyzed hosts are untrusted by definition
// and broken certificates are reported by the certificate inspector instead.
func NewTransport(httpProxy, httpsProxy string) *http.Transport {
	return newTransport(httpProxy, httpsProxy, &tls.Config{InsecureSkipVerify: true}) //nolint:gosec
}

// NewTrustedTransport builds a verifying transport for services that receive
// credentials or whose answers feed the score, such as threat-intel feeds.
func NewTrustedTransport(httpProxy, httpsProxy string) *http.Transport {
	return newTransport(httpProxy, httpsProxy, &tls.Config{MinVersion: tls.VersionTLS12})
}

func newTransport(httpProxy, httpsProxy string, tlsConfig *tls.Config) *http.Transport {
	return &http.Transport{
		Proxy: NewProxyFunc(httpProxy, httpsProxy),
		DialContext: (&net.Dialer{
			Timeout:   8 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   8 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		MaxIdleConns:          50,
		IdleConnTimeout:       60 * time.Second,
		TLSClientConfig:       tlsConfig,
	}
}
