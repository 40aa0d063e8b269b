package lint

import (
	"strings"
	"testing"

	"github.com/dotcommander/agentlint/internal/diag"
)

func validateCodexConfig(t *testing.T, content string) []diag.Diagnostic {
	t.Helper()
	return (&CodexValidator{}).Validate(testCtx(t, ".codex/config.toml", content))
}

func TestCodexValidConfig(t *testing.T) {
	diags := validateCodexConfig(t, "model = \"o4-mini\"\napprovalMode = \"suggest\"\nproject_doc_max_bytes = 32768\n")
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestCodexInvalidTOML(t *testing.T) {
	d := wantRule(t, validateCodexConfig(t, "approvalMode = \n"), "CDX-000")
	if d.Level != diag.Error || !strings.Contains(d.Message, "Invalid TOML syntax") {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
}

func TestCodexUnknownKey(t *testing.T) {
	d := wantRule(t, validateCodexConfig(t, "aprovalMode = \"suggest\"\n"), "CDX-004")
	if !strings.Contains(d.Message, `"aprovalMode"`) || d.Line != 1 {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
}

func TestCodexApprovalModeEnum(t *testing.T) {
	content := "approvalMode = \"full_auto\"\n"
	d := wantRule(t, validateCodexConfig(t, content), "CDX-001")
	if !strings.Contains(d.Message, `"full_auto"`) {
		t.Errorf("unexpected message: %s", d.Message)
	}
	if len(d.Fixes) != 1 {
		t.Fatalf("expected a closest-match fix, got %+v", d.Fixes)
	}
	fix := d.Fixes[0]
	if got := content[fix.StartByte:fix.EndByte]; got != `"full_auto"` {
		t.Errorf("fix span = %q", got)
	}
	if fix.Replacement != `"full-auto"` || fix.Safe {
		t.Errorf("unexpected fix: %+v", fix)
	}
}

func TestCodexApprovalModeType(t *testing.T) {
	d := wantRule(t, validateCodexConfig(t, "approvalMode = 3\n"), "CDX-001")
	if !strings.Contains(d.Message, "must be a string") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCodexFullAutoErrorMode(t *testing.T) {
	wantRule(t, validateCodexConfig(t, "fullAutoErrorMode = \"ignore\"\n"), "CDX-002")
	wantNoRule(t, validateCodexConfig(t, "fullAutoErrorMode = \"ask-user\"\n"), "CDX-002")
}

func TestCodexProjectDocMaxBytes(t *testing.T) {
	d := wantRule(t, validateCodexConfig(t, "project_doc_max_bytes = 100000\n"), "CDX-005")
	if !strings.Contains(d.Message, "exceeds the 65536 byte limit") {
		t.Errorf("unexpected message: %s", d.Message)
	}

	d = wantRule(t, validateCodexConfig(t, "project_doc_max_bytes = \"big\"\n"), "CDX-005")
	if !strings.Contains(d.Message, "must be an integer") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestCodexOverrideFileTracked(t *testing.T) {
	d := wantRule(t, (&CodexValidator{}).Validate(testCtx(t, "AGENTS.override.md", "# Personal overrides\n")), "CDX-003")
	if d.Level != diag.Warning {
		t.Errorf("expected warning, got %v", d.Level)
	}
}

func TestCodexPlainAgentsMdIgnored(t *testing.T) {
	diags := (&CodexValidator{}).Validate(testCtx(t, "AGENTS.md", "# Root\n"))
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %+v", diags)
	}
}

func TestTomlKeyLines(t *testing.T) {
	lines := tomlKeyLines("model = \"x\"\n\"quoted\" = 1\nmodel = \"y\"\n")
	if lines["model"] != 1 {
		t.Errorf("model line = %d, want 1", lines["model"])
	}
	if lines["quoted"] != 2 {
		t.Errorf("quoted line = %d, want 2", lines["quoted"])
	}
}
