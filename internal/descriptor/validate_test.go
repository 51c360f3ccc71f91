package descriptor

import (
	"errors"
	"strings"
	"testing"
)

func validDescriptor() *Descriptor {
	d, err := Parse([]byte(salesforceYAML))
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateAcceptsSalesforce(t *testing.T) {
	t.Parallel()

	if err := validDescriptor().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateDanglingPlaceholder(t *testing.T) {
	t.Parallel()

	d := validDescriptor()
	d.AuthSchemes[0].Proxy.BaseURL = "{{missingField}}/services/data"

	err := d.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}
	if !strings.Contains(err.Error(), "missingField") {
		t.Fatalf("Validate() error = %q, want mention of missingField", err.Error())
	}
}

func TestValidateReportsAllViolationsInOnePass(t *testing.T) {
	t.Parallel()

	d := validDescriptor()
	s := &d.AuthSchemes[0]
	s.AuthorizationURL = "http://login.salesforce.com/insecure"
	s.TokenURL = ""
	s.Proxy.BaseURL = "{{nope}}"

	err := d.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}
	if len(ve.Violations) != 3 {
		t.Fatalf("len(Violations) = %d (%v), want 3", len(ve.Violations), ve.Violations)
	}
}

func TestValidateDuplicateSchemeName(t *testing.T) {
	t.Parallel()

	d := validDescriptor()
	d.AuthSchemes = append(d.AuthSchemes, d.AuthSchemes[0])

	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate schemeName") {
		t.Fatalf("Validate() error = %v, want duplicate schemeName", err)
	}
}

func TestValidateUnknownAuthMode(t *testing.T) {
	t.Parallel()

	d := validDescriptor()
	d.AuthSchemes[0].AuthMode = "MAGIC_LINK"

	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), "MAGIC_LINK") {
		t.Fatalf("Validate() error = %v, want unknown auth mode", err)
	}
}

func TestValidateRequiredFieldWithoutSourceNeedsDefault(t *testing.T) {
	t.Parallel()

	d := validDescriptor()
	d.AuthSchemes[0].Fields = append(d.AuthSchemes[0].Fields, CustomerField{
		Name:                 "apiVersion",
		ExpectedFromCustomer: false,
		Type:                 FieldTypeString,
		Required:             true,
	})

	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), "apiVersion") {
		t.Fatalf("Validate() error = %v, want apiVersion default violation", err)
	}

	d.AuthSchemes[0].Fields[1].Default = "v59.0"
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() with default error = %v", err)
	}
}

func TestValidateNonOAuthSchemeSkipsEndpointChecks(t *testing.T) {
	t.Parallel()

	d := &Descriptor{
		Name:      "Internal API",
		UniqueKey: "internal",
		AuthSchemes: []AuthScheme{{
			SchemeName: "internal_api_key",
			AuthMode:   AuthModeAPIKey,
			Fields: []CustomerField{{
				Name:                 "apiKey",
				ExpectedFromCustomer: true,
				Type:                 FieldTypeString,
				Required:             true,
			}},
		}},
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
