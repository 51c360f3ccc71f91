package proxy

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/connector-hub/connector-hub/internal/descriptor"
)

func proxiedScheme(baseURL string) descriptor.AuthScheme {
	return descriptor.AuthScheme{
		SchemeName: "salesforce_oauth2",
		AuthMode:   descriptor.AuthModeOAuth2,
		Proxy:      descriptor.Proxy{BaseURL: baseURL},
		Fields: []descriptor.CustomerField{{
			Name: "instanceUrl", ExpectedFromCustomer: true,
			Type: descriptor.FieldTypeString, Required: true,
		}},
	}
}

func TestResolveBaseURL(t *testing.T) {
	t.Parallel()

	u, err := ResolveBaseURL(proxiedScheme("{{instanceUrl}}"), map[string]string{
		"instanceUrl": "https://na1.salesforce.com",
	})
	if err != nil {
		t.Fatalf("ResolveBaseURL() error = %v", err)
	}
	if u.Scheme != "https" || u.Host != "na1.salesforce.com" {
		t.Fatalf("ResolveBaseURL() = %s", u)
	}
}

func TestResolveBaseURLMissingValue(t *testing.T) {
	t.Parallel()

	_, err := ResolveBaseURL(proxiedScheme("{{instanceUrl}}"), nil)
	if err == nil || !strings.Contains(err.Error(), "instanceUrl") {
		t.Fatalf("ResolveBaseURL() error = %v, want unresolved instanceUrl", err)
	}
}

func TestResolveBaseURLDefaultsScheme(t *testing.T) {
	t.Parallel()

	u, err := ResolveBaseURL(proxiedScheme("{{instanceUrl}}/api/v2"), map[string]string{
		"instanceUrl": "acme.zendesk.com",
	})
	if err != nil {
		t.Fatalf("ResolveBaseURL() error = %v", err)
	}
	if u.Scheme != "https" || u.Host != "acme.zendesk.com" || u.Path != "/api/v2" {
		t.Fatalf("ResolveBaseURL() = %s", u)
	}
}

func TestCanonicalDomain(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"na1.salesforce.com":     "salesforce.com",
		"acme.zendesk.com:443":   "zendesk.com",
		"API.HubAPI.com":         "hubapi.com",
		"localhost":              "localhost",
		"127.0.0.1:8200":         "127.0.0.1",
		"":                       "",
	}
	for host, want := range cases {
		if got := CanonicalDomain(host); got != want {
			t.Fatalf("CanonicalDomain(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestProxyRewritesRequest(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotCookie string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotCookie = r.Header.Get("Cookie")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	base, err := url.Parse(upstream.URL)
	if err != nil {
		t.Fatalf("parse upstream URL: %v", err)
	}

	rp := New("salesforce", base, "00Dxx")
	front := httptest.NewServer(rp)
	defer front.Close()

	req, err := http.NewRequest(http.MethodGet, front.URL+"/services/data/v59.0/sobjects", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Authorization", "Bearer caller-token")
	req.Header.Set("Cookie", "session=abc")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if gotPath != "/services/data/v59.0/sobjects" {
		t.Fatalf("upstream path = %q", gotPath)
	}
	if gotAuth != "Bearer 00Dxx" {
		t.Fatalf("upstream Authorization = %q, caller header must be replaced", gotAuth)
	}
	if gotCookie != "" {
		t.Fatalf("upstream Cookie = %q, want stripped", gotCookie)
	}
}

func TestProxyUpstreamUnreachable(t *testing.T) {
	t.Parallel()

	base, _ := url.Parse("http://127.0.0.1:1") // nothing listens here
	front := httptest.NewServer(New("salesforce", base, ""))
	defer front.Close()

	resp, err := http.Get(front.URL + "/anything")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}
