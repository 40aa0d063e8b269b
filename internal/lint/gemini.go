package lint

import (
	"fmt"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/frontend"
)

// Header words that indicate the file explains what the project is before
// diving into commands.
var projectContextWords = []string{"project", "overview", "about", "context"}

// GeminiValidator checks GEMINI.md and GEMINI.local.md instruction files
// for structural problems the Gemini CLI trips over.
type GeminiValidator struct{}

func (v *GeminiValidator) Name() string { return "gemini-md" }

func (v *GeminiValidator) Rules() []string {
	return []string{"GM-001", "GM-002", "GM-003"}
}

func (v *GeminiValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic

	if ctx.Enabled("GM-001") {
		if line, open := frontend.HasUnclosedCodeBlock(ctx.Content); open {
			diags = append(diags, diag.New(ctx.Path, line, 0, "GM-001", diag.Error,
				"Invalid markdown structure: Unclosed code block").
				WithSuggestion("Close the fence; unclosed tags make the model treat the rest of the file as code"))
		}
		if line, bad := frontend.MalformedLinkLine(ctx.Content); bad {
			diags = append(diags, diag.New(ctx.Path, line, 0, "GM-001", diag.Error,
				"Invalid markdown structure: Malformed markdown link").
				WithSuggestion("Close the link with a parenthesis; unclosed tags confuse instruction parsing"))
		}
	}

	headers := frontend.Headers(ctx.Content)

	if ctx.Enabled("GM-002") && len(headers) == 0 {
		diags = append(diags, diag.New(ctx.Path, 1, 0, "GM-002", diag.Warning,
			"Instruction file has no section headers").
			WithSuggestion("Structure the file with # and ## headers so instructions stay grouped"))
	}

	if ctx.Enabled("GM-003") && !hasProjectContext(headers) {
		diags = append(diags, diag.New(ctx.Path, 1, 0, "GM-003", diag.Warning,
			"Instruction file has no project context section").
			WithSuggestion(fmt.Sprintf("Add a section describing the project (for example %q) before command listings", "# Project")))
	}

	return diags
}

func hasProjectContext(headers []frontend.Header) bool {
	for _, h := range headers {
		lower := strings.ToLower(h.Text)
		for _, word := range projectContextWords {
			if strings.Contains(lower, word) {
				return true
			}
		}
	}
	return false
}
