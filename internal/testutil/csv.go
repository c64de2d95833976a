package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// RosterHeader is the header every well-formed fixture starts with.
const RosterHeader = "id,name,age,email,is_active"

// WriteFile writes content to dir/name and returns the full path.
// Parent directories are created as needed.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// WriteCSV writes a data.csv into a fresh temp dir from the given lines,
// joined with newlines and terminated by one.
func WriteCSV(t testing.TB, lines ...string) string {
	t.Helper()

	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	return WriteFile(t, t.TempDir(), "data.csv", content)
}

// WriteRoster writes a data.csv with RosterHeader followed by rows.
func WriteRoster(t testing.TB, rows ...string) string {
	t.Helper()
	return WriteCSV(t, append([]string{RosterHeader}, rows...)...)
}
