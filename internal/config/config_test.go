package config

import (
	"strings"
	"testing"

	"github.com/dotcommander/agentlint/internal/fsys"
)

func TestDefaultEnablesEverything(t *testing.T) {
	cfg := Default()
	for _, rule := range []string{
		"AS-001", "CC-SK-006", "CC-HK-001", "CC-AG-003", "CC-MEM-004",
		"MCP-009", "CUR-007", "COP-005", "CDX-001", "GM-002", "XP-004",
		"PE-001", "XML-001", "REF-001", "AGM-006", "VER-001",
	} {
		if !cfg.IsRuleEnabled(rule) {
			t.Errorf("default config should enable %s", rule)
		}
	}
}

func TestDisabledRulesWin(t *testing.T) {
	cfg := Default()
	cfg.DisabledRules = []string{"CC-SK-006"}
	if cfg.IsRuleEnabled("CC-SK-006") {
		t.Error("explicitly disabled rule is enabled")
	}
	if !cfg.IsRuleEnabled("CC-SK-007") {
		t.Error("sibling rule should stay enabled")
	}
}

func TestCategoryToggles(t *testing.T) {
	cfg := Default()
	cfg.Rules.Hooks = false
	cfg.Rules.MCP = false
	if cfg.IsRuleEnabled("CC-HK-001") {
		t.Error("hooks toggle off but CC-HK-001 enabled")
	}
	if cfg.IsRuleEnabled("MCP-003") {
		t.Error("mcp toggle off but MCP-003 enabled")
	}
	if !cfg.IsRuleEnabled("CC-AG-001") {
		t.Error("agents rules should be unaffected")
	}
}

func TestToolsFiltering(t *testing.T) {
	cfg := Default()
	cfg.Tools = []string{"cursor"}
	if cfg.IsRuleEnabled("CC-SK-001") {
		t.Error("CC rules should be off when tools=[cursor]")
	}
	if !cfg.IsRuleEnabled("CUR-007") {
		t.Error("CUR rules should be on when tools=[cursor]")
	}
	if !cfg.IsRuleEnabled("XML-001") {
		t.Error("vendor-neutral rules are never tool-filtered")
	}

	// Alias: copilot stands for github-copilot.
	cfg.Tools = []string{"copilot"}
	if !cfg.IsRuleEnabled("COP-001") {
		t.Error("copilot alias should enable COP rules")
	}
	if cfg.IsRuleEnabled("CUR-001") {
		t.Error("CUR rules should be off when tools=[copilot]")
	}

	// Case-insensitive matching.
	cfg.Tools = []string{"Claude-Code"}
	if !cfg.IsRuleEnabled("CC-HK-001") {
		t.Error("tool matching must be case-insensitive")
	}
}

func TestLegacyTarget(t *testing.T) {
	cfg := Default()
	cfg.Target = TargetCursor
	if cfg.IsRuleEnabled("CC-SK-001") {
		t.Error("target=Cursor should disable CC rules")
	}
	if !cfg.IsRuleEnabled("CUR-001") {
		t.Error("target=Cursor should keep CUR rules")
	}

	cfg.Target = TargetClaudeCode
	if cfg.IsRuleEnabled("CUR-001") || cfg.IsRuleEnabled("COP-001") {
		t.Error("target=ClaudeCode should disable CUR and COP rules")
	}
	if !cfg.IsRuleEnabled("CC-MEM-001") {
		t.Error("target=ClaudeCode should keep CC rules")
	}

	// Non-empty tools overrides target entirely.
	cfg.Tools = []string{"cursor"}
	if !cfg.IsRuleEnabled("CUR-001") {
		t.Error("tools should override target")
	}
}

func TestUnknownRulesEnabled(t *testing.T) {
	cfg := Default()
	cfg.Tools = []string{"cursor"}
	if !cfg.IsRuleEnabled("ZZ-999") {
		t.Error("unknown rule ids are enabled for forward compatibility")
	}
}

func TestIsToolAlias(t *testing.T) {
	if !IsToolAlias("copilot", "github-copilot") {
		t.Error("copilot should alias github-copilot")
	}
	if IsToolAlias("copilot", "copilot") {
		t.Error("an alias never matches itself")
	}
	if IsToolAlias("github-copilot", "copilot") {
		t.Error("aliasing is one-directional")
	}
}

func TestLoadLenient(t *testing.T) {
	fs := fsys.NewMem()

	// Missing file: defaults, no warning.
	cfg, warn := Load(fs, "proj/agentlint.toml")
	if warn != "" {
		t.Errorf("missing file should not warn: %q", warn)
	}
	if cfg.MaxFilesToValidate != DefaultMaxFiles {
		t.Errorf("MaxFilesToValidate = %d", cfg.MaxFilesToValidate)
	}

	// Malformed file: defaults plus one warning.
	fs.WriteFile("proj/agentlint.toml", []byte("tools = [not valid"), 0o644)
	cfg, warn = Load(fs, "proj/agentlint.toml")
	if warn == "" || !strings.Contains(warn, "Using defaults") {
		t.Errorf("malformed file should warn with defaults notice: %q", warn)
	}
	if !cfg.Rules.Skills {
		t.Error("fallback config should carry default toggles")
	}

	// Valid file.
	fs.WriteFile("proj/agentlint.toml", []byte(`
tools = ["claude-code"]
disabled_rules = ["CC-SK-006"]

[rules]
prompt_engineering = false
`), 0o644)
	cfg, warn = Load(fs, "proj/agentlint.toml")
	if warn != "" {
		t.Fatalf("unexpected warning: %q", warn)
	}
	if len(cfg.Tools) != 1 || cfg.Tools[0] != "claude-code" {
		t.Errorf("Tools = %v", cfg.Tools)
	}
	if cfg.IsRuleEnabled("CC-SK-006") {
		t.Error("disabled rule survived loading")
	}
	if cfg.Rules.PromptEngineering {
		t.Error("toggle from file ignored")
	}
	if !cfg.Rules.Skills {
		t.Error("unset toggles should stay at their defaults")
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	fs := fsys.NewMem()
	fs.WriteFile("repo/agentlint.toml", []byte(`tools = ["cursor"]`), 0o644)
	fs.WriteFile("repo/sub/dir/file.md", []byte("x"), 0o644)

	cfg, _ := Discover(fs, "repo/sub/dir")
	if len(cfg.Tools) != 1 || cfg.Tools[0] != "cursor" {
		t.Errorf("Discover did not find the root config: %v", cfg.Tools)
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := Default()
	cfg.Tools = []string{"claude-code", "nonesuch"}
	cfg.DisabledRules = []string{"CC-SK-001", "not a rule"}
	cfg.Target = "Weird"
	cfg.Files.Exclude = []string{"[bad", "../escape/**"}
	cfg.MCPProtocolVersion = "2024-11-05"
	cfg.SpecRevisions = map[string]string{"mcp_protocol": "2025-11-25"}

	warnings := cfg.Validate()
	wantSubstrings := []string{
		`Unknown tool "nonesuch"`,
		`"not a rule"`,
		`Unknown target "Weird"`,
		`Invalid glob "[bad"`,
		`escapes the project root`,
		`spec_revisions wins`,
	}
	for _, want := range wantSubstrings {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing warning containing %q in %v", want, warnings)
		}
	}
}

func TestMCPPinnedRevision(t *testing.T) {
	cfg := Default()
	if cfg.MCPPinnedRevision() != "" {
		t.Error("unpinned config should return empty")
	}
	cfg.MCPProtocolVersion = "2024-11-05"
	if cfg.MCPPinnedRevision() != "2024-11-05" {
		t.Error("legacy field should apply when spec_revisions is empty")
	}
	cfg.SpecRevisions = map[string]string{"mcp_protocol": "2025-11-25"}
	if cfg.MCPPinnedRevision() != "2025-11-25" {
		t.Error("spec_revisions should win over the legacy field")
	}
}

func TestExcluded(t *testing.T) {
	cfg := Default()
	cfg.Files.Exclude = []string{"vendor/**", "**/*.gen.md"}
	if !cfg.Excluded("vendor/pkg/CLAUDE.md") {
		t.Error("vendor path should be excluded")
	}
	if !cfg.Excluded("a/b/file.gen.md") {
		t.Error("suffix glob should match")
	}
	if cfg.Excluded("src/CLAUDE.md") {
		t.Error("unrelated path excluded")
	}
}

func TestGenerateSchemaOmitsRuntimeFields(t *testing.T) {
	raw, err := GenerateSchema()
	if err != nil {
		t.Fatalf("GenerateSchema: %v", err)
	}
	s := string(raw)
	for _, field := range []string{"disabled_rules", "tools", "max_files_to_validate"} {
		if !strings.Contains(s, field) {
			t.Errorf("schema missing field %q", field)
		}
	}
	for _, runtime := range []string{"ProjectRoot", "ImportCache", "\"FS\""} {
		if strings.Contains(s, runtime) {
			t.Errorf("schema leaks runtime field %q", runtime)
		}
	}
}

func TestImportCache(t *testing.T) {
	ic := NewImportCache()
	if _, ok := ic.Get("a.md"); ok {
		t.Error("empty cache hit")
	}
	ic.Put("a.md", "content")
	if got, ok := ic.Get("a.md"); !ok || got != "content" {
		t.Errorf("Get = (%q, %v)", got, ok)
	}
	var nilCache *ImportCache
	if _, ok := nilCache.Get("x"); ok {
		t.Error("nil cache should miss")
	}
	nilCache.Put("x", "y") // must not panic
}
