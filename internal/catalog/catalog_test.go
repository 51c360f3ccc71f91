package catalog

import (
	"testing"

	"github.com/connector-hub/connector-hub/internal/descriptor"
)

func TestBuiltinLoads(t *testing.T) {
	t.Parallel()

	descriptors, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	if len(descriptors) == 0 {
		t.Fatal("Builtin() returned no descriptors")
	}

	seen := make(map[string]struct{})
	for _, d := range descriptors {
		if _, dup := seen[d.UniqueKey]; dup {
			t.Fatalf("duplicate uniqueKey %q in builtin catalog", d.UniqueKey)
		}
		seen[d.UniqueKey] = struct{}{}
		if err := d.Validate(); err != nil {
			t.Fatalf("builtin descriptor %q invalid: %v", d.UniqueKey, err)
		}
	}
}

func TestBuiltinSalesforce(t *testing.T) {
	t.Parallel()

	descriptors, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}

	var sf *descriptor.Descriptor
	for _, d := range descriptors {
		if d.UniqueKey == "salesforce" {
			sf = d
			break
		}
	}
	if sf == nil {
		t.Fatal("salesforce descriptor missing from builtin catalog")
	}
	if !sf.HasCategory("crm") {
		t.Fatalf("salesforce categories = %v, want crm", sf.Categories)
	}

	s, ok := sf.Scheme("salesforce_oauth2")
	if !ok {
		t.Fatal("scheme salesforce_oauth2 missing")
	}
	if s.AuthorizationURL != "https://login.salesforce.com/services/oauth2/authorize" {
		t.Fatalf("AuthorizationURL = %q", s.AuthorizationURL)
	}
	if len(s.DefaultScopes) != 1 || s.DefaultScopes[0] != "full" {
		t.Fatalf("DefaultScopes = %v, want [full]", s.DefaultScopes)
	}

	f, ok := s.Field("instanceUrl")
	if !ok {
		t.Fatal("field instanceUrl missing")
	}
	if !f.Required || f.Type != descriptor.FieldTypeString {
		t.Fatalf("instanceUrl = %+v, want required string", f)
	}
	if got := descriptor.Placeholders(s.Proxy.BaseURL); len(got) != 1 || got[0] != "instanceUrl" {
		t.Fatalf("proxy placeholders = %v, want [instanceUrl]", got)
	}
}
