package lint

import (
	"strings"
	"testing"

	"github.com/dotcommander/agentlint/internal/diag"
)

func validateCopilot(t *testing.T, path, content string) []diag.Diagnostic {
	t.Helper()
	return (&CopilotValidator{}).Validate(testCtx(t, path, content))
}

func TestCopilotGlobalEmpty(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/copilot-instructions.md", "  \n"), "COP-001")
	if d.Level != diag.Error {
		t.Errorf("expected error, got %v", d.Level)
	}
}

func TestCopilotGlobalLength(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/copilot-instructions.md", strings.Repeat("a", 4100)), "COP-006")
	if !strings.Contains(d.Message, "over 4000 characters") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotGlobalFine(t *testing.T) {
	diags := validateCopilot(t, ".github/copilot-instructions.md", "Use table-driven tests.\n")
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCopilotScopedValid(t *testing.T) {
	diags := validateCopilot(t, ".github/instructions/ts.instructions.md",
		"---\napplyTo: \"**/*.ts\"\n---\nEnable strict mode everywhere.\n")
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCopilotScopedMissingFrontmatter(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/instructions/ts.instructions.md", "No frontmatter here.\n"), "COP-002")
	if !strings.Contains(d.Message, "missing required frontmatter") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotScopedBadYAML(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/instructions/ts.instructions.md",
		"---\napplyTo: [\n---\nbody\n"), "COP-002")
	if !strings.Contains(d.Message, "Invalid YAML frontmatter") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotScopedMissingApplyTo(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/instructions/ts.instructions.md",
		"---\ndescription: TypeScript rules\n---\nbody\n"), "COP-002")
	if !strings.Contains(d.Message, "'applyTo'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotScopedBadGlob(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/instructions/ts.instructions.md",
		"---\napplyTo: \"src/***\"\n---\nbody\n"), "COP-003")
	if !strings.Contains(d.Message, "'***' is not a valid wildcard") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotScopedEmptyBody(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/instructions/ts.instructions.md",
		"---\napplyTo: \"**/*.ts\"\n---\n"), "COP-001")
	if !strings.Contains(d.Message, "no content after frontmatter") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotScopedUnknownKey(t *testing.T) {
	content := "---\napplyTo: \"**/*.go\"\nexclude: vendor\n---\nbody\n"
	d := wantRule(t, validateCopilot(t, ".github/instructions/go.instructions.md", content), "COP-004")
	if !strings.Contains(d.Message, `"exclude"`) {
		t.Errorf("unexpected message: %s", d.Message)
	}
	if len(d.Fixes) != 1 {
		t.Fatalf("expected a deletion fix, got %+v", d.Fixes)
	}
	fix := d.Fixes[0]
	if !fix.Safe || !fix.IsDeletion() {
		t.Errorf("expected safe deletion, got %+v", fix)
	}
	if got := content[fix.StartByte:fix.EndByte]; got != "exclude: vendor\n" {
		t.Errorf("fix span = %q", got)
	}
}

func TestCopilotScopedExcludeAgent(t *testing.T) {
	content := "---\napplyTo: \"**/*.go\"\nexcludeAgent: code-reviw\n---\nbody\n"
	d := wantRule(t, validateCopilot(t, ".github/instructions/go.instructions.md", content), "COP-005")
	if len(d.Fixes) != 1 {
		t.Fatalf("expected a closest-match fix, got %+v", d.Fixes)
	}
	fix := d.Fixes[0]
	if got := content[fix.StartByte:fix.EndByte]; got != "code-reviw" || fix.Replacement != "code-review" {
		t.Errorf("fix = %q -> %q", got, fix.Replacement)
	}
}

func TestCopilotAgentValid(t *testing.T) {
	diags := validateCopilot(t, ".github/agents/reviewer.agent.md",
		"---\ndescription: Reviews pull requests\ntools: [read]\n---\nYou review pull requests carefully.\n")
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCopilotAgentMissingFrontmatter(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/agents/reviewer.agent.md", "Just a prompt.\n"), "COP-007")
	if !strings.Contains(d.Message, "agent file") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotAgentTargetType(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/agents/reviewer.agent.md",
		"---\ndescription: d\ntarget: [vscode]\n---\nbody\n"), "COP-008")
	if !strings.Contains(d.Message, "must be a string") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotPromptWithoutFrontmatter(t *testing.T) {
	diags := validateCopilot(t, ".github/prompts/fix.prompt.md", "Fix the failing test.\n")
	if len(diags) != 0 {
		t.Errorf("frontmatter is optional for prompts, got %+v", diags)
	}
}

func TestCopilotPromptEmptyBody(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/prompts/fix.prompt.md", "---\ndescription: d\n---\n"), "COP-001")
	if !strings.Contains(d.Message, "no content after frontmatter") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotPromptAgentMode(t *testing.T) {
	content := "---\nagent: alwys\n---\nFix the bug.\n"
	d := wantRule(t, validateCopilot(t, ".github/prompts/fix.prompt.md", content), "COP-008")
	if len(d.Fixes) != 1 {
		t.Fatalf("expected a closest-match fix, got %+v", d.Fixes)
	}
	if got := content[d.Fixes[0].StartByte:d.Fixes[0].EndByte]; got != "alwys" || d.Fixes[0].Replacement != "always" {
		t.Errorf("fix = %q -> %q", got, d.Fixes[0].Replacement)
	}

	diags := validateCopilot(t, ".github/prompts/fix.prompt.md", "---\nagent: always\n---\nFix the bug.\n")
	wantNoRule(t, diags, "COP-008")
}

func TestCopilotHooksValid(t *testing.T) {
	diags := validateCopilot(t, ".github/hooks.json",
		`{"version": 1, "hooks": [{"type": "command", "events": ["preToolUse"], "command": {"bash": "echo hi"}}]}`)
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCopilotHooksMissingVersion(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/hooks.json", `{"hooks": []}`), "COP-009")
	if !strings.Contains(d.Message, "'version'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotHooksWrongVersion(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/hooks.json", `{"version": 2, "hooks": []}`), "COP-009")
	if !strings.Contains(d.Message, "must be the number 1") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotHooksInvalidMapEvent(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/hooks.json",
		`{"version": 1, "hooks": {"onSave": [{"type": "command", "command": {"bash": "x"}}]}}`), "COP-009")
	if !strings.Contains(d.Message, `"onSave"`) {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotHooksMissingCommand(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/hooks.json",
		`{"version": 1, "hooks": [{"type": "command", "events": ["preToolUse"]}]}`), "COP-009")
	if !strings.Contains(d.Message, "'command'") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotHooksBadType(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/hooks.json",
		`{"version": 1, "hooks": [{"type": "script", "events": ["preToolUse"], "command": {"bash": "x"}}]}`), "COP-009")
	if !strings.Contains(d.Message, `must be the string "command"`) {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

const setupStepsValid = `jobs:
  copilot-setup-steps:
    runs-on: ubuntu-latest
    steps:
      - run: make deps
`

func TestCopilotSetupStepsValid(t *testing.T) {
	diags := validateCopilot(t, ".github/workflows/copilot-setup-steps.yml", setupStepsValid)
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCopilotSetupStepsMissingJob(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/workflows/copilot-setup-steps.yml",
		"jobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make\n"), "COP-010")
	if !strings.Contains(d.Message, "copilot-setup-steps") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotSetupStepsNoSteps(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/workflows/copilot-setup-steps.yml",
		"jobs:\n  copilot-setup-steps:\n    runs-on: ubuntu-latest\n"), "COP-010")
	if !strings.Contains(d.Message, "no steps") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCopilotSetupStepsWrongRunner(t *testing.T) {
	d := wantRule(t, validateCopilot(t, ".github/workflows/copilot-setup-steps.yml",
		"jobs:\n  copilot-setup-steps:\n    runs-on: windows-latest\n    steps:\n      - run: make\n"), "COP-010")
	if !strings.Contains(d.Message, "ubuntu runner") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}
