package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertFileExists fails the test if the file does not exist.
func (v *TestVault) AssertFileExists(relPath string) {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		v.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (v *TestVault) AssertFileNotExists(relPath string) {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	if _, err := os.Stat(fullPath); err == nil {
		v.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (v *TestVault) AssertFileContains(relPath, substr string) {
	v.t.Helper()
	content := v.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		v.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileNotContains fails the test if the file contains the substring.
func (v *TestVault) AssertFileNotContains(relPath, substr string) {
	v.t.Helper()
	content := v.ReadFile(relPath)
	if strings.Contains(content, substr) {
		v.t.Errorf("expected file %s to not contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertDirExists fails the test if the directory does not exist.
func (v *TestVault) AssertDirExists(relPath string) {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		v.t.Errorf("expected directory to exist: %s", relPath)
		return
	}
	if !info.IsDir() {
		v.t.Errorf("expected %s to be a directory, but it's a file", relPath)
	}
}

// AssertHasWarning checks that the result contains a warning with the given code.
func (r *CLIResult) AssertHasWarning(t *testing.T, code string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Code == code {
			return
		}
	}
	t.Errorf("expected warning with code %s, got warnings: %+v", code, r.Warnings)
}

// AssertNoWarnings checks that the result has no warnings.
func (r *CLIResult) AssertNoWarnings(t *testing.T) {
	t.Helper()
	if len(r.Warnings) > 0 {
		t.Errorf("expected no warnings, got: %+v", r.Warnings)
	}
}

// AssertDataNumber checks a numeric field of the response data. Nested
// fields are addressed with dots, as in "summary.created".
func (r *CLIResult) AssertDataNumber(t *testing.T, key string, expected int) {
	t.Helper()
	var value interface{} = r.Data
	for _, part := range strings.Split(key, ".") {
		m, ok := value.(map[string]interface{})
		if !ok {
			value = nil
			break
		}
		value = m[part]
	}
	got, ok := value.(float64)
	if !ok || int(got) != expected {
		t.Errorf("expected %s = %d, got %v\nRaw: %s", key, expected, value, r.RawJSON)
	}
}
