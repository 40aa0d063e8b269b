package lint

import (
	"strings"
	"testing"

	"github.com/dotcommander/agentlint/internal/diag"
)

func validateCursor(t *testing.T, path, content string) []diag.Diagnostic {
	t.Helper()
	return (&CursorValidator{}).Validate(testCtx(t, path, content))
}

func TestCursorLegacyDeprecated(t *testing.T) {
	diags := validateCursor(t, ".cursorrules", "Always write tests.\n")
	d := wantRule(t, diags, "CUR-006")
	if d.Level != diag.Warning {
		t.Errorf("expected warning, got %v", d.Level)
	}
	wantNoRule(t, diags, "CUR-001")
}

func TestCursorLegacyEmpty(t *testing.T) {
	diags := validateCursor(t, ".cursorrules", "")
	wantRule(t, diags, "CUR-006")
	wantRule(t, diags, "CUR-001")
}

func TestCursorRuleValid(t *testing.T) {
	diags := validateCursor(t, ".cursor/rules/style.mdc",
		"---\ndescription: Go style conventions\nglobs: \"**/*.go\"\n---\nUse gofmt defaults.\n")
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCursorRuleEmptyFile(t *testing.T) {
	wantRule(t, validateCursor(t, ".cursor/rules/style.mdc", ""), "CUR-001")
}

func TestCursorRuleMissingFrontmatter(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/rules/style.mdc", "Use gofmt defaults.\n"), "CUR-002")
	if len(d.Fixes) != 1 {
		t.Fatalf("expected a template fix, got %+v", d.Fixes)
	}
	fix := d.Fixes[0]
	if !fix.IsInsertion() || fix.StartByte != 0 {
		t.Errorf("expected insertion at start, got %+v", fix)
	}
	if !strings.HasPrefix(fix.Replacement, "---\n") {
		t.Errorf("unexpected template: %q", fix.Replacement)
	}
}

func TestCursorRuleUnclosedFrontmatter(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/rules/style.mdc",
		"---\ndescription: Go style\n"), "CUR-003")
	if !strings.Contains(d.Message, "missing closing ---") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorRuleBadYAML(t *testing.T) {
	wantRule(t, validateCursor(t, ".cursor/rules/style.mdc",
		"---\nglobs: [\n---\nbody\n"), "CUR-003")
}

func TestCursorRuleEmptyBody(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/rules/style.mdc",
		"---\nglobs: \"**/*.go\"\n---\n"), "CUR-001")
	if !strings.Contains(d.Message, "no content after frontmatter") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorRuleBadGlob(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/rules/style.mdc",
		"---\nglobs: \"src/***\"\n---\nbody\n"), "CUR-004")
	if !strings.Contains(d.Message, "'***' is not a valid wildcard") {
		t.Errorf("unexpected message: %s", d.Message)
	}
	if d.Line != 2 {
		t.Errorf("expected line 2, got %d", d.Line)
	}
}

func TestCursorRuleUnknownKey(t *testing.T) {
	content := "---\ndescription: Style rules\npriority: high\n---\nbody\n"
	d := wantRule(t, validateCursor(t, ".cursor/rules/style.mdc", content), "CUR-005")
	if !strings.Contains(d.Message, `"priority"`) {
		t.Errorf("unexpected message: %s", d.Message)
	}
	if len(d.Fixes) != 1 {
		t.Fatalf("expected a deletion fix, got %+v", d.Fixes)
	}
	fix := d.Fixes[0]
	if !fix.Safe || !fix.IsDeletion() {
		t.Errorf("expected safe deletion, got %+v", fix)
	}
	if got := content[fix.StartByte:fix.EndByte]; got != "priority: high\n" {
		t.Errorf("fix span = %q", got)
	}
}

func TestCursorRuleQuotedAlwaysApply(t *testing.T) {
	content := "---\ndescription: Style rules\nalwaysApply: \"true\"\n---\nbody\n"
	d := wantRule(t, validateCursor(t, ".cursor/rules/style.mdc", content), "CUR-008")
	if len(d.Fixes) != 1 {
		t.Fatalf("expected an unquoting fix, got %+v", d.Fixes)
	}
	fix := d.Fixes[0]
	if got := content[fix.StartByte:fix.EndByte]; got != `"true"` || fix.Replacement != "true" {
		t.Errorf("fix = %q -> %q", got, fix.Replacement)
	}
	if !fix.Safe {
		t.Error("unquoting a boolean should be safe")
	}
}

func TestCursorRuleGlobsIgnoredWhenAlwaysApply(t *testing.T) {
	content := "---\nalwaysApply: true\nglobs:\n  - \"**/*.go\"\n---\nbody\n"
	d := wantRule(t, validateCursor(t, ".cursor/rules/style.mdc", content), "CUR-007")
	if len(d.Fixes) != 1 {
		t.Fatalf("expected a deletion fix, got %+v", d.Fixes)
	}
	fix := d.Fixes[0]
	if got := content[fix.StartByte:fix.EndByte]; got != "globs:\n  - \"**/*.go\"\n" {
		t.Errorf("fix span = %q", got)
	}
	if !fix.Safe || !fix.IsDeletion() {
		t.Errorf("expected safe deletion, got %+v", fix)
	}
}

func TestCursorRuleNoTriggerNoDescription(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/rules/style.mdc",
		"---\ndescription: \"\"\n---\nbody\n"), "CUR-009")
	if d.Level != diag.Warning {
		t.Errorf("expected warning, got %v", d.Level)
	}
}

func TestCursorHooksValid(t *testing.T) {
	diags := validateCursor(t, ".cursor/hooks.json",
		`{"version": 1, "hooks": {"preToolUse": [{"type": "command", "command": "./check.sh"}]}}`)
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCursorHooksInvalidJSON(t *testing.T) {
	wantRule(t, validateCursor(t, ".cursor/hooks.json", "{not json"), "CUR-010")
}

func TestCursorHooksMissingVersion(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/hooks.json", `{"hooks": {}}`), "CUR-010")
	if !strings.Contains(d.Message, "'version'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorHooksMissingHooks(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/hooks.json", `{"version": 1}`), "CUR-010")
	if !strings.Contains(d.Message, "'hooks'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorHooksNotAnObject(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/hooks.json", `{"version": 1, "hooks": []}`), "CUR-010")
	if !strings.Contains(d.Message, "keyed by event name") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorHooksUnknownEvent(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/hooks.json",
		`{"version": 1, "hooks": {"onSave": [{"command": "./fmt.sh"}]}}`), "CUR-011")
	if !strings.Contains(d.Message, `"onSave"`) {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorHooksInvalidType(t *testing.T) {
	wantRule(t, validateCursor(t, ".cursor/hooks.json",
		`{"version": 1, "hooks": {"preToolUse": [{"type": "shell", "command": "./check.sh"}]}}`), "CUR-013")
}

func TestCursorHooksMissingCommand(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/hooks.json",
		`{"version": 1, "hooks": {"preToolUse": [{}]}}`), "CUR-012")
	if !strings.Contains(d.Message, "'command'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

const cursorAgentPath = ".cursor/agents/reviewer/AGENT.md"

func TestCursorAgentValid(t *testing.T) {
	diags := validateCursor(t, cursorAgentPath,
		"---\nname: code-reviewer\ndescription: Reviews diffs for style issues\n---\nReview every change carefully.\n")
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCursorAgentMissingFrontmatter(t *testing.T) {
	d := wantRule(t, validateCursor(t, cursorAgentPath, "Just a prompt.\n"), "CUR-014")
	if !strings.Contains(d.Message, "missing frontmatter") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorAgentMissingName(t *testing.T) {
	d := wantRule(t, validateCursor(t, cursorAgentPath,
		"---\ndescription: Reviews diffs\n---\nbody\n"), "CUR-014")
	if !strings.Contains(d.Message, "'name'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorAgentBadName(t *testing.T) {
	d := wantRule(t, validateCursor(t, cursorAgentPath,
		"---\nname: Code Reviewer\ndescription: Reviews diffs\n---\nbody\n"), "CUR-014")
	if !strings.Contains(d.Message, "Invalid subagent name") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorAgentBadModel(t *testing.T) {
	d := wantRule(t, validateCursor(t, cursorAgentPath,
		"---\nname: code-reviewer\ndescription: Reviews diffs\nmodel: \"gpt 4\"\n---\nbody\n"), "CUR-014")
	if !strings.Contains(d.Message, "Invalid subagent model") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorAgentModelAliases(t *testing.T) {
	for _, model := range []string{"fast", "inherit", "claude-4.5-sonnet"} {
		diags := validateCursor(t, cursorAgentPath,
			"---\nname: code-reviewer\ndescription: Reviews diffs\nmodel: "+model+"\n---\nbody\n")
		if len(diags) != 0 {
			t.Errorf("model %q: expected clean run, got %+v", model, diags)
		}
	}
}

func TestCursorAgentBooleanFields(t *testing.T) {
	d := wantRule(t, validateCursor(t, cursorAgentPath,
		"---\nname: code-reviewer\ndescription: Reviews diffs\nreadonly: \"yes\"\n---\nbody\n"), "CUR-014")
	if !strings.Contains(d.Message, "'readonly' must be a boolean") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorAgentEmptyBody(t *testing.T) {
	diags := validateCursor(t, cursorAgentPath,
		"---\nname: code-reviewer\ndescription: Reviews diffs\n---\n")
	wantNoRule(t, diags, "CUR-014")
	wantRule(t, diags, "CUR-015")
}

func TestCursorEnvironmentValid(t *testing.T) {
	diags := validateCursor(t, ".cursor/environment.json",
		`{"snapshot": "snap-1", "install": "npm ci", "terminals": [{"name": "dev", "command": "npm run dev"}]}`)
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCursorEnvironmentInvalidJSON(t *testing.T) {
	wantRule(t, validateCursor(t, ".cursor/environment.json", "nope"), "CUR-016")
}

func TestCursorEnvironmentMissingFields(t *testing.T) {
	diags := validateCursor(t, ".cursor/environment.json", `{"terminals": []}`)
	if got := len(findRules(diags, "CUR-016")); got != 2 {
		t.Fatalf("expected findings for snapshot and install, got %+v", diags)
	}
}

func TestCursorEnvironmentMissingTerminals(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/environment.json",
		`{"snapshot": "s", "install": "i"}`), "CUR-016")
	if !strings.Contains(d.Message, "'terminals'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorEnvironmentBadTerminal(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/environment.json",
		`{"snapshot": "s", "install": "i", "terminals": [{"name": "dev"}]}`), "CUR-016")
	if !strings.Contains(d.Message, "Terminal 1") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCursorEnvironmentStartType(t *testing.T) {
	d := wantRule(t, validateCursor(t, ".cursor/environment.json",
		`{"snapshot": "s", "install": "i", "start": 5, "terminals": []}`), "CUR-016")
	if !strings.Contains(d.Message, "'start'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestIsValidCursorAgentName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"code-reviewer", true},
		{"agent2", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"Upper", false},
		{"has space", false},
	}
	for _, tc := range cases {
		if got := isValidCursorAgentName(tc.name); got != tc.want {
			t.Errorf("isValidCursorAgentName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
