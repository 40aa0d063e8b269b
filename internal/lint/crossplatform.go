package lint

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
)

var (
	claudeHooksPattern  = regexp.MustCompile(`(?i)^\s*-?\s*(?:type|event):\s*(?:PreToolExecution|PostToolExecution|Notification|Stop|SubagentStop)\b`)
	contextForkPattern  = regexp.MustCompile(`(?i)^\s*context:\s*fork\b`)
	agentFieldPattern   = regexp.MustCompile(`(?i)^\s*agent:\s*(?:Explore|Plan|general-purpose)\b`)
	allowedToolsPattern = regexp.MustCompile(`(?i)^\s*allowed-tools:\s*.+`)
	platformPathPattern = regexp.MustCompile(`(?i)(?:\.claude/|\.opencode/|\.cursor/|\.cline/|\.github/copilot/)`)
)

// platformFeature is a vendor-specific construct found in a shared file.
type platformFeature struct {
	Line        int
	Column      int
	Feature     string
	Description string
}

// findVendorFeatures locates constructs that only Claude Code understands.
// Other AGENTS.md readers (Codex CLI, OpenCode, Copilot, Cursor, Cline)
// ignore or misread them.
func findVendorFeatures(content string) []platformFeature {
	var out []platformFeature
	for i, line := range strings.Split(content, "\n") {
		if loc := claudeHooksPattern.FindStringIndex(line); loc != nil {
			out = append(out, platformFeature{i + 1, loc[0], "hooks",
				"Claude Code hooks are not supported by other AGENTS.md readers"})
		}
		if loc := contextForkPattern.FindStringIndex(line); loc != nil {
			out = append(out, platformFeature{i + 1, loc[0], "context:fork",
				"Context forking is Claude Code specific"})
		}
		if loc := agentFieldPattern.FindStringIndex(line); loc != nil {
			out = append(out, platformFeature{i + 1, loc[0], "agent",
				"Agent field is Claude Code specific"})
		}
		if loc := allowedToolsPattern.FindStringIndex(line); loc != nil {
			out = append(out, platformFeature{i + 1, loc[0], "allowed-tools",
				"Tool restrictions are Claude Code specific"})
		}
	}
	return out
}

// hardCodedPath is a vendor config directory mentioned in shared content.
type hardCodedPath struct {
	Line     int
	Column   int
	Path     string
	Platform string
}

func findHardCodedPaths(content string) []hardCodedPath {
	var out []hardCodedPath
	for i, line := range strings.Split(content, "\n") {
		for _, loc := range platformPathPattern.FindAllStringIndex(line, -1) {
			match := line[loc[0]:loc[1]]
			lower := strings.ToLower(match)
			platform := "Unknown"
			switch {
			case strings.Contains(lower, ".claude"):
				platform = "Claude Code"
			case strings.Contains(lower, ".opencode"):
				platform = "OpenCode"
			case strings.Contains(lower, ".cursor"):
				platform = "Cursor"
			case strings.Contains(lower, ".cline"):
				platform = "Cline"
			case strings.Contains(lower, ".github/copilot"):
				platform = "GitHub Copilot"
			}
			out = append(out, hardCodedPath{i + 1, loc[0], match, platform})
		}
	}
	return out
}

// CrossPlatformValidator flags vendor lock-in inside shared AGENTS.md files
// and hard-coded vendor paths anywhere it runs.
type CrossPlatformValidator struct{}

func (v *CrossPlatformValidator) Name() string { return "cross-platform" }

func (v *CrossPlatformValidator) Rules() []string {
	return []string{"XP-001", "XP-002", "XP-003"}
}

func (v *CrossPlatformValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic
	filename := path.Base(slashPath(ctx.Path))
	isAgentsMd := filename == "AGENTS.md" || filename == "AGENTS.local.md" ||
		filename == "AGENTS.override.md"

	if ctx.Enabled("XP-001") && isAgentsMd {
		for _, feature := range findVendorFeatures(ctx.Content) {
			diags = append(diags, diag.New(ctx.Path, feature.Line, feature.Column, "XP-001", diag.Error,
				fmt.Sprintf("Claude-specific feature '%s' in %s: %s", feature.Feature, filename, feature.Description)).
				WithSuggestion("Move Claude-specific features to CLAUDE.md or use platform guards"))
		}
	}

	if ctx.Enabled("XP-002") && isAgentsMd {
		for _, issue := range markdownStructureIssues(ctx.Content) {
			diags = append(diags, diag.New(ctx.Path, issue.Line, issue.Column, "XP-002", diag.Warning,
				fmt.Sprintf("%s structure issue: %s", filename, issue.Issue)).
				WithSuggestion(issue.Suggestion))
		}
	}

	if ctx.Enabled("XP-003") {
		for _, hit := range findHardCodedPaths(ctx.Content) {
			diags = append(diags, diag.New(ctx.Path, hit.Line, hit.Column, "XP-003", diag.Warning,
				fmt.Sprintf("Hard-coded %s path '%s' may cause portability issues", hit.Platform, hit.Path)).
				WithSuggestion("Use environment variables or relative paths for better portability"))
		}
	}

	return diags
}

// markdownIssue is a structural problem in a shared markdown document.
type markdownIssue struct {
	Line       int
	Column     int
	Issue      string
	Suggestion string
}

var headerLinePattern = regexp.MustCompile(`^#+\s+.+`)

// markdownStructureIssues reports a missing-headers issue and any header
// level that jumps more than one step down.
func markdownStructureIssues(content string) []markdownIssue {
	var out []markdownIssue

	hasHeaders := false
	for _, line := range strings.Split(content, "\n") {
		if headerLinePattern.MatchString(line) {
			hasHeaders = true
			break
		}
	}
	if !hasHeaders && strings.TrimSpace(content) != "" {
		out = append(out, markdownIssue{1, 0,
			"No markdown headers found",
			"Add headers (# Section) to structure the document for better readability"})
	}

	lastLevel := 0
	for i, line := range strings.Split(content, "\n") {
		if !headerLinePattern.MatchString(line) {
			continue
		}
		level := 0
		for _, r := range line {
			if r != '#' {
				break
			}
			level++
		}
		if lastLevel > 0 && level > lastLevel+1 {
			out = append(out, markdownIssue{i + 1, 0,
				fmt.Sprintf("Header level skipped from %d to %d", lastLevel, level),
				fmt.Sprintf("Use h%d instead of h%d for proper hierarchy", lastLevel+1, level)})
		}
		lastLevel = level
	}

	return out
}
