//go:build integration

// Package integration contains integration tests for prism.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismscan/prism/analyzer/pattern"
	"github.com/prismscan/prism/schema"
)

// scannedRow is the slice element of the scan list JSON output.
type scannedRow struct {
	Rank        int     `json:"rank"`
	Label       string  `json:"label"`
	Filename    string  `json:"filename"`
	Language    string  `json:"language"`
	Status      string  `json:"status"`
	GlobalScore float64 `json:"global_score"`
	Issues      []struct {
		Type string `json:"type"`
		Line int    `json:"line"`
	} `json:"issues"`
}

// TestScanIssueCountVerification scans a fixture tree through the CLI and
// verifies every reported issue against a direct catalog scan of the same
// content.
func TestScanIssueCountVerification(t *testing.T) {
	prismPath := buildPrismBinary(t)
	workDir := t.TempDir()

	fixtures := map[string]string{
		"server.ts": "const handler = eval(payload);\nelement.innerHTML = raw;\n",
		"legacy.js": "document.write(html);\nvar token = \"abc123\";\n",
		"tasks.py":  "subprocess.call(cmd, shell=True)\nresult = pickle.loads(blob)\n",
		"clean.py":  "def add(a, b):\n    return a + b\n",
	}
	fixtureDir := filepath.Join(workDir, "fixtures")
	require.NoError(t, os.Mkdir(fixtureDir, 0o755))
	for name, body := range fixtures {
		require.NoError(t, os.WriteFile(filepath.Join(fixtureDir, name), []byte(body), 0o644))
	}

	rows := scanToJSON(t, prismPath, workDir, filepath.Join(workDir, "scan.json"), fixtureDir)
	require.Len(t, rows, len(fixtures))

	totalIssues := 0
	for _, row := range rows {
		t.Run(filepath.Base(row.Filename), func(t *testing.T) {
			require.Equal(t, "completed", row.Status)

			// Rerun the same catalog over the same bytes, independent of
			// the engine, plugins and stores the CLI went through.
			content, err := os.ReadFile(row.Filename)
			require.NoError(t, err)
			expected := pattern.Catalog(schema.Language(row.Language)).Scan(row.Filename, content)

			assert.Equal(t, len(expected), len(row.Issues),
				"issue count mismatch for %s", row.Filename)

			expectedKeys := make([]string, len(expected))
			for i, issue := range expected {
				expectedKeys[i] = fmt.Sprintf("%s:%d", issue.Type, issue.Line)
			}
			reportedKeys := make([]string, len(row.Issues))
			for i, issue := range row.Issues {
				reportedKeys[i] = fmt.Sprintf("%s:%d", issue.Type, issue.Line)
			}
			assert.ElementsMatch(t, expectedKeys, reportedKeys)
		})
		totalIssues += len(row.Issues)
	}
	assert.Positive(t, totalIssues, "fixtures should trigger at least one rule")
}

// TestRepeatedScanDeterminism scans a generated tree twice and requires
// identical scores, labels and ranking both times.
func TestRepeatedScanDeterminism(t *testing.T) {
	prismPath := buildPrismBinary(t)
	workDir := t.TempDir()

	targetDir := filepath.Join(workDir, "generated")
	require.NoError(t, os.Mkdir(targetDir, 0o755))
	for i := 0; i < 3; i++ {
		tsBody := strings.Repeat(fmt.Sprintf("const v%d = eval(input%d);\n", i, i), i+1)
		pyBody := strings.Repeat("subprocess.run(cmd, shell=True)\n", 3-i)
		require.NoError(t, os.WriteFile(filepath.Join(targetDir, fmt.Sprintf("svc_%d.ts", i)), []byte(tsBody), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(targetDir, fmt.Sprintf("job_%d.py", i)), []byte(pyBody), 0o644))
	}

	first := scanToJSON(t, prismPath, workDir, filepath.Join(workDir, "first.json"), targetDir)
	second := scanToJSON(t, prismPath, workDir, filepath.Join(workDir, "second.json"), targetDir)
	require.Len(t, first, 6)

	assert.Equal(t, outcomesByFile(first), outcomesByFile(second))
}

// fileOutcome captures the deterministic slice of one scan row.
type fileOutcome struct {
	Rank   int
	Score  float64
	Label  string
	Issues int
}

// outcomesByFile reduces scan rows to the fields that must not vary
// between runs.
func outcomesByFile(rows []scannedRow) map[string]fileOutcome {
	out := make(map[string]fileOutcome, len(rows))
	for _, row := range rows {
		out[row.Filename] = fileOutcome{
			Rank:   row.Rank,
			Score:  row.GlobalScore,
			Label:  row.Label,
			Issues: len(row.Issues),
		}
	}
	return out
}

// buildPrismBinary compiles the CLI into a per-test temp dir.
func buildPrismBinary(t *testing.T) string {
	t.Helper()
	prismPath := filepath.Join(t.TempDir(), "prism")
	buildCmd := exec.Command("go", "build", "-o", prismPath, "./cmd/prism")
	buildCmd.Dir = ".." // Project root
	output, err := buildCmd.CombinedOutput()
	require.NoError(t, err, string(output))
	return prismPath
}

// scanToJSON runs one scan over target and parses its JSON output file.
func scanToJSON(t *testing.T, prismPath, workDir, outFile, target string) []scannedRow {
	t.Helper()
	cmd := exec.Command(prismPath, "scan",
		"--backend", "memory",
		"--user", "verify",
		"--format", "json",
		"--output-file", outFile,
		target)
	cmd.Dir = workDir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))

	raw, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var rows []scannedRow
	require.NoError(t, json.Unmarshal(raw, &rows))
	return rows
}
