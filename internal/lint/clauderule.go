package lint

import (
	"fmt"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/frontend"
	"github.com/dotcommander/agentlint/internal/textutil"
)

// ClaudeRuleValidator checks .claude/rules/*.md frontmatter: the paths
// globs must compile (CC-MEM-011) and paths is the only known key
// (CC-MEM-012).
type ClaudeRuleValidator struct{}

func (v *ClaudeRuleValidator) Name() string { return "claude-rules" }

func (v *ClaudeRuleValidator) Rules() []string {
	return []string{"CC-MEM-011", "CC-MEM-012"}
}

func (v *ClaudeRuleValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic

	parsed, hasFM, err := frontend.Parse(ctx.Content)
	if !hasFM {
		if startsWithFence(ctx.Content) && ctx.Enabled("CC-MEM-011") {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "CC-MEM-011", diag.Error,
				"Invalid frontmatter: missing closing ---").
				WithSuggestion("Close frontmatter with a line containing only `---`"))
		}
		return diags
	}
	if err != nil {
		if ctx.Enabled("CC-MEM-011") {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "CC-MEM-011", diag.Error,
				fmt.Sprintf("Invalid frontmatter: %v", err)).
				WithSuggestion("Close frontmatter with a line containing only `---`"))
		}
		return diags
	}

	if ctx.Enabled("CC-MEM-011") {
		patterns, _ := parsed.StringList("paths")
		for i, pattern := range patterns {
			reason, bad := globPatternError(pattern)
			if !bad {
				continue
			}
			line := rulePatternLine(parsed, pattern)
			diags = append(diags, diag.New(ctx.Path, line, 0, "CC-MEM-011", diag.Error,
				fmt.Sprintf("Invalid paths glob '%s' at position %d: %s", pattern, i+1, reason)).
				WithSuggestion("Use glob syntax like src/**/*.ts or {src,lib}/**/*.js"))
		}
	}

	if ctx.Enabled("CC-MEM-012") {
		for _, key := range parsed.KeyOrder {
			if key == "paths" {
				continue
			}
			d := diag.New(ctx.Path, parsed.KeyLine(key), 0, "CC-MEM-012", diag.Warning,
				fmt.Sprintf("Unknown frontmatter key '%s' in rules file", key)).
				WithSuggestion(fmt.Sprintf("Remove '%s'; rules files only support 'paths'", key))
			// Single-line delete may orphan a multi-line value, so the
			// fix stays unsafe.
			if span, ok := textutil.YAMLKeyLineSpan(ctx.Content, key); ok {
				d = d.WithFix(diag.Fix{
					StartByte:   span.Start,
					EndByte:     span.End,
					Replacement: "",
					Description: fmt.Sprintf("Remove unknown frontmatter key '%s'", key),
					Safe:        false,
				})
			}
			diags = append(diags, d)
		}
	}

	return diags
}

// rulePatternLine locates a paths list entry in the frontmatter by its
// unquoted value, falling back to the paths key line.
func rulePatternLine(parsed *frontend.Parsed, pattern string) int {
	for i, line := range strings.Split(parsed.Raw, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "-")
		if !ok {
			continue
		}
		value := strings.Trim(strings.TrimSpace(rest), `'"`)
		if value == pattern {
			return parsed.StartLine + 1 + i
		}
	}
	return parsed.KeyLine("paths")
}
