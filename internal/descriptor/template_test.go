package descriptor

import (
	"strings"
	"testing"
)

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"{{instanceUrl}}":                        {"instanceUrl"},
		"{{ instanceUrl }}/v1":                   {"instanceUrl"},
		"https://{{sub}}.example.com/{{region}}": {"sub", "region"},
		"{{a}}/{{a}}":                            {"a"},
		"https://api.example.com":                nil,
	}
	for tmpl, want := range cases {
		got := Placeholders(tmpl)
		if len(got) != len(want) {
			t.Fatalf("Placeholders(%q) = %v, want %v", tmpl, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Placeholders(%q) = %v, want %v", tmpl, got, want)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	got, err := Resolve("{{instanceUrl}}/services/data", map[string]string{
		"instanceUrl": "https://na1.salesforce.com",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "https://na1.salesforce.com/services/data" {
		t.Fatalf("Resolve() = %q", got)
	}
}

func TestResolveMissingValue(t *testing.T) {
	t.Parallel()

	_, err := Resolve("{{instanceUrl}}", map[string]string{"instanceUrl": "  "})
	if err == nil || !strings.Contains(err.Error(), "instanceUrl") {
		t.Fatalf("Resolve() error = %v, want unresolved instanceUrl", err)
	}
}
