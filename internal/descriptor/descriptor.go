// Package descriptor models static connector descriptors: the identity,
// auth configuration, and customer-supplied fields of one third-party
// integration.
package descriptor

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Descriptor describes one integration. Descriptors are immutable once
// loaded; a change requires loading a new document and swapping the
// registry snapshot.
type Descriptor struct {
	Name        string       `json:"name" yaml:"name"`
	UniqueKey   string       `json:"uniqueKey" yaml:"uniqueKey"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	DocsURL     string       `json:"docsUrl,omitempty" yaml:"docsUrl,omitempty"`
	LogoURL     string       `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
	Categories  []string     `json:"categories,omitempty" yaml:"categories,omitempty"`
	AuthSchemes []AuthScheme `json:"authSchemes" yaml:"authSchemes"`
}

// AuthScheme is one named credential-acquisition configuration owned by a
// descriptor. A descriptor may own several, keyed by SchemeName.
type AuthScheme struct {
	SchemeName          string            `json:"schemeName" yaml:"schemeName"`
	AuthMode            AuthMode          `json:"authMode" yaml:"authMode"`
	AuthorizationURL    string            `json:"authorizationUrl,omitempty" yaml:"authorizationUrl,omitempty"`
	TokenURL            string            `json:"tokenUrl,omitempty" yaml:"tokenUrl,omitempty"`
	DefaultScopes       []string          `json:"defaultScopes,omitempty" yaml:"defaultScopes,omitempty"`
	TokenParams         map[string]string `json:"tokenParams,omitempty" yaml:"tokenParams,omitempty"`
	AuthorizationParams map[string]string `json:"authorizationParams,omitempty" yaml:"authorizationParams,omitempty"`
	Proxy               Proxy             `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Fields              []CustomerField   `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Proxy declares how outbound API requests for this scheme are addressed.
// BaseURL is a template; {{name}} tokens resolve from customer fields at
// request time.
type Proxy struct {
	BaseURL string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
}

// CustomerField is a named input the onboarding flow collects from the
// customer (or defaults) before a connection can activate.
type CustomerField struct {
	Name                 string    `json:"name" yaml:"name"`
	ExpectedFromCustomer bool      `json:"expectedFromCustomer" yaml:"expectedFromCustomer"`
	DisplayName          string    `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Description          string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type                 FieldType `json:"type" yaml:"type"`
	Required             bool      `json:"required" yaml:"required"`
	Default              string    `json:"default,omitempty" yaml:"default,omitempty"`
	Sensitive            bool      `json:"sensitive,omitempty" yaml:"sensitive,omitempty"`
}

// Scheme returns the auth scheme with the given name.
func (d *Descriptor) Scheme(name string) (AuthScheme, bool) {
	name = strings.TrimSpace(name)
	for _, s := range d.AuthSchemes {
		if s.SchemeName == name {
			return s, true
		}
	}
	return AuthScheme{}, false
}

// DefaultScheme returns the first declared auth scheme.
func (d *Descriptor) DefaultScheme() (AuthScheme, bool) {
	if len(d.AuthSchemes) == 0 {
		return AuthScheme{}, false
	}
	return d.AuthSchemes[0], true
}

// HasCategory reports whether the descriptor carries the given tag.
func (d *Descriptor) HasCategory(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, c := range d.Categories {
		if strings.ToLower(strings.TrimSpace(c)) == tag {
			return true
		}
	}
	return false
}

// Field returns the declared customer field with the given name.
func (s AuthScheme) Field(name string) (CustomerField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return CustomerField{}, false
}

// RequiredFields returns the fields that must hold a value before a
// connection using this scheme can activate.
func (s AuthScheme) RequiredFields() []CustomerField {
	var out []CustomerField
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// Marshal renders the descriptor back to YAML. Parse(Marshal(d)) yields a
// descriptor semantically identical to d.
func Marshal(d *Descriptor) ([]byte, error) {
	return yaml.Marshal(d)
}
