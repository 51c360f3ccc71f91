package descriptor

import (
	"fmt"
	"net/url"
	"strings"
)

// Violation is one semantic inconsistency found during validation.
type Violation struct {
	Scheme string // empty for descriptor-level violations
	Field  string // offending field or placeholder name, when applicable
	Reason string
}

func (v Violation) String() string {
	var b strings.Builder
	if v.Scheme != "" {
		b.WriteString(v.Scheme)
		b.WriteString(": ")
	}
	if v.Field != "" {
		b.WriteString(v.Field)
		b.WriteString(": ")
	}
	b.WriteString(v.Reason)
	return b.String()
}

// ValidationError carries every violation found in a single pass, so one
// load surfaces all problems for operator correction instead of only the
// first.
type ValidationError struct {
	UniqueKey  string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("descriptor %q invalid: %s", e.UniqueKey, strings.Join(parts, "; "))
}

// Validate checks the descriptor's cross-references and URL shapes. It
// returns nil or a *ValidationError enumerating every violation.
func (d *Descriptor) Validate() error {
	var violations []Violation
	add := func(scheme, field, reason string) {
		violations = append(violations, Violation{Scheme: scheme, Field: field, Reason: reason})
	}

	seenSchemes := make(map[string]struct{}, len(d.AuthSchemes))
	for _, s := range d.AuthSchemes {
		if s.SchemeName == "" {
			add("", "", "scheme is missing schemeName")
			continue
		}
		if _, dup := seenSchemes[s.SchemeName]; dup {
			add(s.SchemeName, "", "duplicate schemeName")
			continue
		}
		seenSchemes[s.SchemeName] = struct{}{}

		if !s.AuthMode.Valid() {
			add(s.SchemeName, "authMode", fmt.Sprintf("unknown auth mode %q", string(s.AuthMode)))
		}

		declared := make(map[string]CustomerField, len(s.Fields))
		for _, f := range s.Fields {
			if f.Name == "" {
				add(s.SchemeName, "", "field is missing name")
				continue
			}
			if _, dup := declared[f.Name]; dup {
				add(s.SchemeName, f.Name, "duplicate field name")
				continue
			}
			declared[f.Name] = f

			if !f.Type.Valid() {
				add(s.SchemeName, f.Name, fmt.Sprintf("unknown field type %q", string(f.Type)))
			}
			// A required field nobody asks the customer for has to come
			// from somewhere: it must carry a default.
			if f.Required && !f.ExpectedFromCustomer && f.Default == "" {
				add(s.SchemeName, f.Name, "required field is not expected from customer and has no default")
			}
		}

		if s.AuthMode == AuthModeOAuth2 {
			checkEndpointURL(s.SchemeName, "authorizationUrl", s.AuthorizationURL, declared, add)
			checkEndpointURL(s.SchemeName, "tokenUrl", s.TokenURL, declared, add)
		}

		for _, token := range Placeholders(s.Proxy.BaseURL) {
			if _, ok := declared[token]; !ok {
				add(s.SchemeName, token, "proxy.baseUrl references undeclared field")
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{UniqueKey: d.UniqueKey, Violations: violations}
}

// checkEndpointURL validates an OAuth2 endpoint. Endpoints may template
// their host the same way proxy.baseUrl does (e.g. per-tenant login
// hosts); placeholders must name declared fields and are substituted
// before the URL shape is checked.
func checkEndpointURL(scheme, field, raw string, declared map[string]CustomerField, add func(scheme, field, reason string)) {
	if raw == "" {
		add(scheme, field, "required for OAUTH2 schemes")
		return
	}

	for _, token := range Placeholders(raw) {
		if _, ok := declared[token]; !ok {
			add(scheme, token, field+" references undeclared field")
		}
	}
	probe := placeholderPattern.ReplaceAllString(raw, "placeholder")

	u, err := url.Parse(probe)
	if err != nil {
		add(scheme, field, fmt.Sprintf("not a valid URL: %v", err))
		return
	}
	if !u.IsAbs() || u.Host == "" {
		add(scheme, field, "must be an absolute URL")
		return
	}
	if u.Scheme != "https" {
		add(scheme, field, fmt.Sprintf("must use https, got %q", u.Scheme))
	}
}
