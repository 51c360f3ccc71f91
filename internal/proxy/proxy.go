// Package proxy rewrites inbound API requests onto a connector's
// upstream, addressed by the auth scheme's resolved proxy.baseUrl and
// authenticated with the stored token.
package proxy

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/connector-hub/connector-hub/internal/descriptor"
	"github.com/connector-hub/connector-hub/internal/metrics"
)

// ResolveBaseURL substitutes the scheme's proxy.baseUrl placeholders from
// the connection's field values and parses the result.
func ResolveBaseURL(scheme descriptor.AuthScheme, values map[string]string) (*url.URL, error) {
	if strings.TrimSpace(scheme.Proxy.BaseURL) == "" {
		return nil, fmt.Errorf("scheme %s declares no proxy.baseUrl", scheme.SchemeName)
	}
	resolved, err := descriptor.Resolve(scheme.Proxy.BaseURL, values)
	if err != nil {
		return nil, fmt.Errorf("resolve proxy.baseUrl for %s: %w", scheme.SchemeName, err)
	}
	if !strings.Contains(resolved, "://") {
		resolved = "https://" + resolved
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return nil, fmt.Errorf("parse resolved proxy.baseUrl %q: %w", resolved, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("resolved proxy.baseUrl %q has no host", resolved)
	}
	return u, nil
}

// CanonicalDomain reduces a host to its registrable domain for metric
// labels, so per-tenant hosts (na1.salesforce.com, acme.zendesk.com)
// collapse to one series per vendor.
func CanonicalDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, ".")
	if host == "" {
		return ""
	}
	if ip := net.ParseIP(host); ip != nil {
		return host
	}
	eTLD, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return eTLD
}

// New builds a reverse proxy forwarding to base. The inbound path is
// appended to base's path; the stored bearer token replaces any caller
// Authorization header so customer credentials never transit to the
// upstream unchecked.
func New(connectorKey string, base *url.URL, bearerToken string) *httputil.ReverseProxy {
	domain := CanonicalDomain(base.Host)

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(base)
			pr.Out.Host = base.Host
			pr.Out.Header.Del("Authorization")
			if bearerToken != "" {
				pr.Out.Header.Set("Authorization", "Bearer "+bearerToken)
			}
			pr.Out.Header.Del("Cookie")
		},
		ModifyResponse: func(resp *http.Response) error {
			metrics.ProxyRequestsTotal.WithLabelValues(connectorKey, domain, strconv.Itoa(resp.StatusCode)).Inc()
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			metrics.ProxyRequestsTotal.WithLabelValues(connectorKey, domain, "upstream_error").Inc()
			http.Error(w, "upstream unreachable", http.StatusBadGateway)
		},
	}
}

// Observe times one proxied request; call the returned func when the
// round trip completes.
func Observe(connectorKey string) func() {
	start := time.Now()
	return func() {
		metrics.ProxyRequestDuration.WithLabelValues(connectorKey).Observe(time.Since(start).Seconds())
	}
}
