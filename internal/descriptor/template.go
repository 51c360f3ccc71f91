package descriptor

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Placeholders returns the distinct {{name}} tokens referenced by a URL
// template, in order of first appearance.
func Placeholders(tmpl string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Resolve substitutes placeholder tokens from the supplied values. Every
// token must resolve; a dangling token is an error naming the missing
// field.
func Resolve(tmpl string, values map[string]string) (string, error) {
	var missing []string
	resolved := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		v, ok := values[name]
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, name)
			return m
		}
		return strings.TrimSpace(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved placeholders: %s", strings.Join(missing, ", "))
	}
	return resolved, nil
}
