package lint

import (
	"strings"
	"testing"

	"github.com/dotcommander/agentlint/internal/diag"
)

func validateGemini(t *testing.T, content string) []diag.Diagnostic {
	t.Helper()
	return (&GeminiValidator{}).Validate(testCtx(t, "GEMINI.md", content))
}

func TestGeminiValid(t *testing.T) {
	diags := validateGemini(t, "# Project Overview\n\nA data pipeline CLI.\n\n## Commands\n\nmake test\n")
	if len(diags) != 0 {
		t.Errorf("expected clean run, got %+v", diags)
	}
}

func TestGeminiUnclosedCodeBlock(t *testing.T) {
	d := wantRule(t, validateGemini(t, "# Project Overview\n```sh\nmake build\n"), "GM-001")
	if d.Level != diag.Error || !strings.Contains(d.Message, "Unclosed code block") {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
}

func TestGeminiMalformedLink(t *testing.T) {
	d := wantRule(t, validateGemini(t, "# Project Overview\nSee [setup](docs/setup\n"), "GM-001")
	if !strings.Contains(d.Message, "Malformed markdown link") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestGeminiNoHeaders(t *testing.T) {
	diags := validateGemini(t, "unstructured instructions\n")
	wantRule(t, diags, "GM-002")
	wantRule(t, diags, "GM-003")
}

func TestGeminiMissingProjectContext(t *testing.T) {
	diags := validateGemini(t, "# Commands\n\nmake build\n")
	wantRule(t, diags, "GM-003")
	wantNoRule(t, diags, "GM-002")
}
