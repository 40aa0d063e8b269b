package lint

import (
	"fmt"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/frontend"
)

// agentsMdCharLimit is the size past which AGENTS.md readers start
// truncating or ignoring content.
const agentsMdCharLimit = 12000

// Header words that mark a section as deliberately platform-scoped.
// Vendor features under such a header are guarded.
var platformSectionWords = []string{
	"claude", "cursor", "copilot", "codex", "gemini", "cline",
	"windsurf", "opencode", "amp", "kiro", "roo",
}

// AgentsMdValidator checks AGENTS.md (and its .local/.override variants)
// as a document every agent reads: structure, size, and platform features
// that only work when fenced into a clearly platform-scoped section.
type AgentsMdValidator struct{}

func (v *AgentsMdValidator) Name() string { return "agents-md" }

func (v *AgentsMdValidator) Rules() []string {
	return []string{"AGM-001", "AGM-002", "AGM-003", "AGM-004", "AGM-005"}
}

func (v *AgentsMdValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic

	if ctx.Enabled("AGM-001") {
		if line, open := frontend.HasUnclosedCodeBlock(ctx.Content); open {
			diags = append(diags, diag.New(ctx.Path, line, 0, "AGM-001", diag.Error,
				"Invalid markdown structure: Unclosed code block").
				WithSuggestion("Close the fence so readers do not treat the rest of the file as code"))
		}
		if line, bad := frontend.MalformedLinkLine(ctx.Content); bad {
			diags = append(diags, diag.New(ctx.Path, line, 0, "AGM-001", diag.Error,
				"Invalid markdown structure: Malformed markdown link").
				WithSuggestion("Close the link with a parenthesis"))
		}
	}

	headers := frontend.Headers(ctx.Content)

	if ctx.Enabled("AGM-002") && len(headers) == 0 && strings.TrimSpace(ctx.Content) != "" {
		diags = append(diags, diag.New(ctx.Path, 1, 0, "AGM-002", diag.Warning,
			"AGENTS.md has no section headers").
			WithSuggestion("Structure the file with # and ## headers; agents navigate by section"))
	}

	if ctx.Enabled("AGM-003") {
		if n := len([]rune(ctx.Content)); n > agentsMdCharLimit {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "AGM-003", diag.Warning,
				fmt.Sprintf("AGENTS.md is %d characters; readers may truncate files over %d characters", n, agentsMdCharLimit)).
				WithSuggestion("Split detail into linked documents and keep AGENTS.md to the essentials"))
		}
	}

	if ctx.Enabled("AGM-004") && !hasProjectContext(headers) {
		diags = append(diags, diag.New(ctx.Path, 1, 0, "AGM-004", diag.Warning,
			"AGENTS.md has no project context section").
			WithSuggestion("Open with a section describing what the project is before listing commands"))
	}

	if ctx.Enabled("AGM-005") {
		for _, feature := range findVendorFeatures(ctx.Content) {
			if featureGuarded(headers, feature.Line) {
				continue
			}
			diags = append(diags, diag.New(ctx.Path, feature.Line, feature.Column, "AGM-005", diag.Warning,
				fmt.Sprintf("Platform-specific feature '%s' outside a platform-scoped section", feature.Feature)).
				WithSuggestion("Move the feature under a header naming its platform, for example \"## Claude Code Specific\""))
		}
	}

	return diags
}

// featureGuarded reports whether the nearest header above the line names a
// platform, marking the section as intentionally vendor-scoped.
func featureGuarded(headers []frontend.Header, line int) bool {
	var governing *frontend.Header
	for i := range headers {
		if headers[i].Line > line {
			break
		}
		governing = &headers[i]
	}
	if governing == nil {
		return false
	}
	lower := strings.ToLower(governing.Text)
	for _, word := range platformSectionWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
