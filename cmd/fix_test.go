package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFixCleanProject(t *testing.T) {
	saveFlags(t)
	quiet = true

	code := runFix([]string{t.TempDir()})
	assert.Equal(t, 0, code)
}

func TestRunFixDryRunLeavesFiles(t *testing.T) {
	saveFlags(t)
	quiet = true
	oldDryRun := fixDryRun
	fixDryRun = true
	defer func() { fixDryRun = oldDryRun }()

	tmpDir := t.TempDir()
	ruleDir := filepath.Join(tmpDir, ".claude", "rules")
	require.NoError(t, os.MkdirAll(ruleDir, 0755))
	rulePath := filepath.Join(ruleDir, "style.md")
	content := `---
paths: ["**/*.go"]
bogus_key: value
---

Use tabs.
`
	require.NoError(t, os.WriteFile(rulePath, []byte(content), 0644))

	code := runFix([]string{tmpDir})
	assert.Equal(t, 0, code)

	after, err := os.ReadFile(rulePath)
	require.NoError(t, err)
	assert.Equal(t, content, string(after), "dry run must not modify files")
}

func TestRunFixMissingPath(t *testing.T) {
	saveFlags(t)
	quiet = true

	code := runFix([]string{filepath.Join(t.TempDir(), "nope")})
	assert.Equal(t, 2, code)
}
