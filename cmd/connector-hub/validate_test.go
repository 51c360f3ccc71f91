package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const validDescriptorYAML = `
name: HubSpot
uniqueKey: hubspot
authSchemes:
  - schemeName: hubspot_oauth2
    authMode: OAUTH2
    authorizationUrl: https://app.hubspot.com/oauth/authorize
    tokenUrl: https://api.hubapi.com/oauth/v1/token
`

const invalidDescriptorYAML = `
name: Broken
uniqueKey: broken
authSchemes:
  - schemeName: broken_oauth2
    authMode: MAGIC_LINK
`

func writeTempDescriptor(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func newValidateCommand(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	return cmd
}

func TestRunValidateAcceptsValidDocument(t *testing.T) {
	t.Parallel()

	path := writeTempDescriptor(t, "hubspot.yaml", validDescriptorYAML)
	var out bytes.Buffer

	if err := runValidate(newValidateCommand(&out), []string{path}); err != nil {
		t.Fatalf("runValidate() error = %v", err)
	}
	if !strings.Contains(out.String(), "ok") {
		t.Fatalf("output = %q, want ok line", out.String())
	}
}

func TestRunValidateReportsEveryViolation(t *testing.T) {
	t.Parallel()

	good := writeTempDescriptor(t, "hubspot.yaml", validDescriptorYAML)
	bad := writeTempDescriptor(t, "broken.yaml", invalidDescriptorYAML)
	var out bytes.Buffer

	err := runValidate(newValidateCommand(&out), []string{good, bad})
	var ee *exitError
	if !errors.As(err, &ee) || ee.code != 1 {
		t.Fatalf("runValidate() error = %v, want exit code 1", err)
	}

	output := out.String()
	if !strings.Contains(output, "broken") || !strings.Contains(output, "MAGIC_LINK") {
		t.Fatalf("output = %q, want violation naming MAGIC_LINK", output)
	}
	if !strings.Contains(output, good) || !strings.Contains(output, "ok") {
		t.Fatalf("output = %q, want valid document still reported ok", output)
	}
}

func TestRunValidateMissingFileFails(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := runValidate(newValidateCommand(&out), []string{filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("runValidate() error = nil, want read error")
	}
}
