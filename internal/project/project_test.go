package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotcommander/agentlint/internal/config"
	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/fsys"
	"github.com/dotcommander/agentlint/internal/lint"
)

func memProject(t *testing.T, files map[string]string) (*config.Config, string) {
	t.Helper()
	root := "/repo"
	fs := fsys.NewMem()
	for rel, content := range files {
		if err := fs.WriteFile(filepath.Join(root, rel), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.FS = fs
	return cfg, root
}

func hasRule(diags []diag.Diagnostic, rule string) bool {
	for _, d := range diags {
		if d.Rule == rule {
			return true
		}
	}
	return false
}

func TestRunDescendsHiddenConfigDirs(t *testing.T) {
	cfg, root := memProject(t, map[string]string{
		".claude/settings.json":          `{"hooks": "not-an-object"}`,
		".cursor/rules/style.mdc":        "",
		".github/copilot-instructions.md": "",
		".hidden/CLAUDE.md":              "# ignored",
	})
	res, err := Run(cfg, lint.NewRegistry(), root)
	if err != nil {
		t.Fatal(err)
	}
	var seen []string
	for _, d := range res.Diagnostics {
		seen = append(seen, d.File)
	}
	joined := strings.Join(seen, " ")
	if !strings.Contains(joined, ".cursor/rules/style.mdc") {
		t.Errorf("expected findings inside .cursor, got %v", seen)
	}
	if strings.Contains(joined, ".hidden/") {
		t.Errorf("must not descend into unrecognized dot dirs, got %v", seen)
	}
}

func TestRunSkipsArtifactDirs(t *testing.T) {
	cfg, root := memProject(t, map[string]string{
		"node_modules/pkg/SKILL.md": "broken",
		"vendor/lib/CLAUDE.md":      "x",
		"CLAUDE.md":                 "# Memory\n\nSome instructions here.",
	})
	res, err := Run(cfg, lint.NewRegistry(), root)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range res.Diagnostics {
		if strings.HasPrefix(d.File, "node_modules/") || strings.HasPrefix(d.File, "vendor/") {
			t.Errorf("artifact dir was not pruned: %s", d.File)
		}
	}
	if res.FilesChecked != 1 {
		t.Errorf("files checked = %d, want 1", res.FilesChecked)
	}
}

func TestRunHonorsGitignore(t *testing.T) {
	cfg, root := memProject(t, map[string]string{
		".gitignore":     "generated/\n",
		"generated/SKILL.md": "---\nbroken",
		"CLAUDE.md":      "# Memory",
	})
	res, err := Run(cfg, lint.NewRegistry(), root)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range res.Diagnostics {
		if strings.HasPrefix(d.File, "generated/") {
			t.Errorf("gitignored file was linted: %s", d.File)
		}
	}
}

func TestRunTooManyFiles(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 5; i++ {
		files[fmt.Sprintf("m%d/CLAUDE.md", i)] = "# memo"
	}
	cfg, root := memProject(t, files)
	cfg.MaxFilesToValidate = 3

	_, err := Run(cfg, lint.NewRegistry(), root)
	var tooMany *ErrTooManyFiles
	if !errors.As(err, &tooMany) {
		t.Fatalf("expected ErrTooManyFiles, got %v", err)
	}
	if tooMany.Limit != 3 {
		t.Errorf("limit = %d, want 3", tooMany.Limit)
	}
	if tooMany.Count <= tooMany.Limit {
		t.Errorf("count %d should exceed limit %d", tooMany.Count, tooMany.Limit)
	}
}

func TestUnknownFilesDoNotCountTowardLimit(t *testing.T) {
	files := map[string]string{"CLAUDE.md": "# memo"}
	for i := 0; i < 50; i++ {
		files[fmt.Sprintf("src/f%d.go", i)] = "package main"
	}
	cfg, root := memProject(t, files)
	cfg.MaxFilesToValidate = 2

	res, err := Run(cfg, lint.NewRegistry(), root)
	if err != nil {
		t.Fatalf("unrecognized files must not count toward the limit: %v", err)
	}
	if res.FilesChecked != 1 {
		t.Errorf("files checked = %d, want 1", res.FilesChecked)
	}
}

func TestOversizedFileGetsSingleWarning(t *testing.T) {
	cfg, root := memProject(t, map[string]string{
		"CLAUDE.md": strings.Repeat("x", 100),
	})
	cfg.MaxFileSize = 10
	cfg.DisabledRules = []string{"VER-001"}

	res, err := Run(cfg, lint.NewRegistry(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Rule != "file::size" {
		t.Fatalf("expected exactly one file::size warning, got %v", res.Diagnostics)
	}
	if res.Diagnostics[0].Level != diag.Warning {
		t.Errorf("level = %v, want warning", res.Diagnostics[0].Level)
	}
	if res.FilesChecked != 1 {
		t.Errorf("oversized recognized file still counts, got %d", res.FilesChecked)
	}
}

func TestRunSingleFile(t *testing.T) {
	cfg, root := memProject(t, map[string]string{
		"skills/deploy/SKILL.md": "---\nname: deploy\n---\nBody",
	})
	res, err := Run(cfg, lint.NewRegistry(), filepath.Join(root, "skills/deploy/SKILL.md"))
	if err != nil {
		t.Fatal(err)
	}
	if res.FilesChecked != 1 {
		t.Errorf("files checked = %d, want 1", res.FilesChecked)
	}
	for _, d := range res.Diagnostics {
		if d.File != "SKILL.md" {
			t.Errorf("single-file diagnostics use the file name, got %s", d.File)
		}
	}
}

func TestResultsAreSorted(t *testing.T) {
	cfg, root := memProject(t, map[string]string{
		"CLAUDE.md":     "# A\n\nalways be helpful and be concise\n",
		"sub/CLAUDE.md": "don't do that\n",
	})
	res, err := Run(cfg, lint.NewRegistry(), root)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(res.Diagnostics); i++ {
		if diag.Less(res.Diagnostics[i], res.Diagnostics[i-1]) {
			t.Fatalf("diagnostics out of order at %d: %+v before %+v",
				i, res.Diagnostics[i-1], res.Diagnostics[i])
		}
	}
}

func TestFilesConfigOverrides(t *testing.T) {
	cfg, root := memProject(t, map[string]string{
		"notes/BOT.md": "# Bot instructions\n\nalways be helpful\n",
		"SKILL.md":     "---\nname: root\n---\nBody",
	})
	cfg.Files.Exclude = []string{"SKILL.md"}
	cfg.Files.IncludeAsMemory = []string{"notes/*.md"}

	res, err := Run(cfg, lint.NewRegistry(), root)
	if err != nil {
		t.Fatal(err)
	}
	if res.FilesChecked != 1 {
		t.Errorf("files checked = %d, want 1 (excluded skill, included memory)", res.FilesChecked)
	}
	for _, d := range res.Diagnostics {
		if d.File == "SKILL.md" {
			t.Errorf("excluded file was linted: %+v", d)
		}
	}
	if !hasRule(res.Diagnostics, "CC-MEM-005") {
		t.Error("include_as_memory file should get memory rules")
	}
}

func TestCrossFileChecksRunInProjectMode(t *testing.T) {
	cfg, root := memProject(t, map[string]string{
		"AGENTS.md":     "# Root agents\n\nGuidance.",
		"sub/AGENTS.md": "# Sub agents\n\nMore guidance.",
	})
	res, err := Run(cfg, lint.NewRegistry(), root)
	if err != nil {
		t.Fatal(err)
	}
	if !hasRule(res.Diagnostics, "AGM-006") {
		t.Error("expected AGM-006 for duplicate AGENTS.md files")
	}
}
