package descriptor

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseError reports a document that is malformed or missing required
// top-level structure. It is distinct from ValidationError: a document
// that parses but is semantically inconsistent fails later, in Validate.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse descriptor: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse descriptor: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes a YAML (or JSON, which YAML subsumes) document into a
// Descriptor. It fails with a *ParseError when the document cannot be
// decoded or when name, uniqueKey, or authSchemes are absent.
func Parse(raw []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, &ParseError{Reason: "malformed document", Err: err}
	}

	d.Name = strings.TrimSpace(d.Name)
	d.UniqueKey = strings.TrimSpace(d.UniqueKey)

	if d.Name == "" {
		return nil, &ParseError{Reason: "name is required"}
	}
	if d.UniqueKey == "" {
		return nil, &ParseError{Reason: "uniqueKey is required"}
	}
	if len(d.AuthSchemes) == 0 {
		return nil, &ParseError{Reason: fmt.Sprintf("descriptor %q declares no authSchemes", d.UniqueKey)}
	}

	for i := range d.AuthSchemes {
		s := &d.AuthSchemes[i]
		s.SchemeName = strings.TrimSpace(s.SchemeName)
		s.AuthorizationURL = strings.TrimSpace(s.AuthorizationURL)
		s.TokenURL = strings.TrimSpace(s.TokenURL)
		s.Proxy.BaseURL = strings.TrimSpace(s.Proxy.BaseURL)
		for j := range s.Fields {
			s.Fields[j].Name = strings.TrimSpace(s.Fields[j].Name)
		}
	}

	return &d, nil
}

// Load parses and validates in one step. It never returns a
// partially-valid descriptor: any parse or validation failure yields a
// nil descriptor and a non-nil error.
func Load(raw []byte) (*Descriptor, error) {
	d, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
