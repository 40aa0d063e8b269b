package lint

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/frontend"
	"github.com/dotcommander/agentlint/internal/textutil"
)

// Enumerations for skill frontmatter fields.
var (
	validModels   = []string{"sonnet", "opus", "haiku", "inherit"}
	builtinAgents = []string{"Explore", "Plan", "general-purpose"}

	knownSkillTools = []string{
		"Bash", "Read", "Write", "Edit", "Grep", "Glob", "Task",
		"WebFetch", "WebSearch", "AskUserQuestion", "TodoRead", "TodoWrite",
		"MultiTool", "NotebookEdit", "EnterPlanMode", "ExitPlanMode",
		"Skill", "StatusBarMessageTool", "TaskOutput",
	}

	dangerousSkillNames = []string{"deploy", "ship", "publish", "delete", "release", "push"}
)

const (
	maxInjections      = 3
	maxSkillBodyLines  = 500
	maxDescriptionLen  = 1024
	maxCompatLen       = 500
	maxSkillDirBytes   = 8 * 1024 * 1024
	maxReferenceDepth  = 2
	skillNameMaxLength = 64
)

var (
	skillNamePattern         = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	repeatHyphenPattern      = regexp.MustCompile(`-{2,}`)
	descriptionXMLTagPattern = regexp.MustCompile(`<[^>]+>`)
	referencePathPattern     = regexp.MustCompile(`(?i)\b(?:references?|refs)[/\\][^\s)\]}>"']+`)
	windowsPathPattern       = regexp.MustCompile(`(?i)\b(?:[a-z]:)?[a-z0-9._-]+(?:\\[a-z0-9._-]+)+\b`)
	plainBashPattern         = regexp.MustCompile(`\bBash\b`)
	imperativeVerbRe         = regexp.MustCompile(`(?i)\b(run|execute|create|build|deploy|install|configure|update|delete|remove|add|write|read|check|test|validate|ensure|make|use|call|invoke|start|stop|send|fetch|generate|implement|fix|analyze|review|search|find|move|copy|replace|push|pull|commit|clean|format|lint|parse|process|handle|prepare|download|upload|export|import|open|save|load|connect|verify|apply|enable|disable)\b`)
)

// SkillValidator checks SKILL.md manifests: frontmatter shape, name and
// description grammar, Claude Code extension fields, body budgets, and the
// per-client unsupported-field rules.
type SkillValidator struct{}

func (*SkillValidator) Name() string { return "skill" }

func (*SkillValidator) Rules() []string {
	return []string{
		"AS-001", "AS-002", "AS-003", "AS-004", "AS-005", "AS-006", "AS-007",
		"AS-008", "AS-009", "AS-010", "AS-011", "AS-012", "AS-013", "AS-014",
		"AS-015", "AS-016",
		"CC-SK-001", "CC-SK-002", "CC-SK-003", "CC-SK-004", "CC-SK-005",
		"CC-SK-006", "CC-SK-007", "CC-SK-008", "CC-SK-009", "CC-SK-010",
		"CC-SK-011", "CC-SK-012", "CC-SK-013", "CC-SK-014", "CC-SK-015",
		"CR-SK-001", "CL-SK-001", "CP-SK-001", "CX-SK-001", "OC-SK-001",
		"WS-SK-001", "KR-SK-001", "RC-SK-001", "AMP-SK-001",
	}
}

func (v *SkillValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var out []diag.Diagnostic

	// Quoted booleans are detected on the raw text first since they would
	// otherwise just look like strings to the YAML round-trip.
	_, hasFM := frontend.Split(ctx.Content)
	if hasFM {
		out = append(out, checkQuotedBoolean(ctx, "disable-model-invocation", "CC-SK-014")...)
		out = append(out, checkQuotedBoolean(ctx, "user-invocable", "CC-SK-015")...)
	}

	if !hasFM && ctx.Enabled("AS-001") {
		d := diag.New(ctx.Path, 1, 0, "AS-001", diag.Error,
			"SKILL.md must start with YAML frontmatter").
			WithSuggestion("Add a frontmatter block delimited by --- lines with name and description")
		return append(out, d)
	}

	parsed, _, err := frontend.Parse(ctx.Content)
	if err != nil {
		if ctx.Enabled("AS-016") {
			out = append(out, diag.New(ctx.Path, 1, 0, "AS-016", diag.Error,
				fmt.Sprintf("Failed to parse SKILL.md frontmatter: %v", err)).
				WithSuggestion("Fix the YAML syntax in the frontmatter block"))
		}
		return out
	}

	name, hasName := parsed.StringField("name")
	description, hasDesc := parsed.StringField("description")

	if ctx.Enabled("AS-002") && !hasName {
		out = append(out, diag.New(ctx.Path, parsed.StartLine, 0, "AS-002", diag.Error,
			"Missing required field 'name'").
			WithSuggestion("Add a name field with a lowercase kebab-case identifier"))
	}
	if ctx.Enabled("AS-003") && !hasDesc {
		out = append(out, diag.New(ctx.Path, parsed.StartLine, 0, "AS-003", diag.Error,
			"Missing required field 'description'").
			WithSuggestion("Add a description explaining when to use this skill"))
	}

	if hasName {
		out = append(out, v.checkName(ctx, parsed, name)...)
	}
	if hasDesc {
		out = append(out, v.checkDescription(ctx, parsed, description)...)
	}

	if compat, ok := parsed.StringField("compatibility"); ok && ctx.Enabled("AS-011") {
		if n := len(compat); n == 0 || n > maxCompatLen {
			out = append(out, diag.New(ctx.Path, parsed.KeyLine("compatibility"), 0, "AS-011", diag.Error,
				fmt.Sprintf("Compatibility must be 1-%d characters, got %d", maxCompatLen, n)))
		}
	}

	out = append(out, v.checkHooksField(ctx, parsed)...)
	out = append(out, v.checkReachability(ctx, parsed)...)
	out = append(out, v.checkArgumentHint(ctx, parsed)...)
	out = append(out, v.checkForkInstructions(ctx, parsed)...)

	if hasName && hasDesc && name != "" && description != "" {
		out = append(out, v.checkSafety(ctx, parsed, name)...)
		out = append(out, v.checkTools(ctx, parsed)...)
		out = append(out, v.checkModelContext(ctx, parsed)...)
		out = append(out, v.checkAgentType(ctx, parsed)...)
	}

	out = append(out, v.checkBody(ctx, parsed)...)
	out = append(out, v.checkDirectorySize(ctx)...)
	out = append(out, v.checkPerClientFields(ctx, parsed)...)

	return out
}

func (v *SkillValidator) checkName(ctx *FileContext, p *frontend.Parsed, name string) []diag.Diagnostic {
	var out []diag.Diagnostic
	line := p.KeyLine("name")

	if ctx.Enabled("AS-004") && (len(name) > skillNameMaxLength || !skillNamePattern.MatchString(name)) {
		d := diag.New(ctx.Path, line, 0, "AS-004", diag.Error,
			fmt.Sprintf("Name '%s' must be lowercase kebab-case, 1-%d characters", name, skillNameMaxLength)).
			WithSuggestion("Use only lowercase letters, digits, and single hyphens")
		if fixed := toKebabCase(name); fixed != "" && skillNamePattern.MatchString(fixed) {
			if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "name"); ok {
				// Only case folding preserves identity; anything structural is unsafe.
				caseOnly := strings.ToLower(name) == fixed && !strings.ContainsAny(name, "_ ")
				d = d.WithFix(diag.Fix{
					StartByte:   span.Start,
					EndByte:     span.End,
					Replacement: fixed,
					Description: fmt.Sprintf("Rename to '%s'", fixed),
					Safe:        caseOnly,
				})
			}
		}
		out = append(out, d)
	}

	if ctx.Enabled("AS-005") && (strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-")) {
		d := diag.New(ctx.Path, line, 0, "AS-005", diag.Error,
			fmt.Sprintf("Name '%s' cannot start or end with hyphen", name))
		if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "name"); ok {
			fixed := strings.Trim(name, "-")
			if fixed != "" && fixed != name && skillNamePattern.MatchString(fixed) {
				d = d.WithFix(diag.Fix{
					StartByte: span.Start, EndByte: span.End, Replacement: fixed,
					Description: "Remove leading/trailing hyphens from skill name",
					Safe:        true,
				})
			}
		}
		out = append(out, d)
	}

	if ctx.Enabled("AS-006") && strings.Contains(name, "--") {
		d := diag.New(ctx.Path, line, 0, "AS-006", diag.Error,
			fmt.Sprintf("Name '%s' cannot contain consecutive hyphens", name))
		if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "name"); ok {
			fixed := repeatHyphenPattern.ReplaceAllString(name, "-")
			if fixed != "" && fixed != name && skillNamePattern.MatchString(fixed) {
				d = d.WithFix(diag.Fix{
					StartByte: span.Start, EndByte: span.End, Replacement: fixed,
					Description: "Collapse consecutive hyphens in skill name",
					Safe:        true,
				})
			}
		}
		out = append(out, d)
	}

	if ctx.Enabled("AS-007") && name != "" {
		switch strings.ToLower(name) {
		case "anthropic", "claude", "skill":
			out = append(out, diag.New(ctx.Path, line, 0, "AS-007", diag.Error,
				fmt.Sprintf("Name '%s' is reserved", name)).
				WithSuggestion("Pick a name that describes what the skill does"))
		}
	}

	return out
}

func (v *SkillValidator) checkDescription(ctx *FileContext, p *frontend.Parsed, description string) []diag.Diagnostic {
	var out []diag.Diagnostic
	line := p.KeyLine("description")

	if ctx.Enabled("AS-008") {
		if n := len(description); n == 0 || n > maxDescriptionLen {
			out = append(out, diag.New(ctx.Path, line, 0, "AS-008", diag.Error,
				fmt.Sprintf("Description must be 1-%d characters, got %d", maxDescriptionLen, n)))
		}
	}

	if ctx.Enabled("AS-009") && descriptionXMLTagPattern.MatchString(description) {
		out = append(out, diag.New(ctx.Path, line, 0, "AS-009", diag.Error,
			"Description contains XML tags").
			WithSuggestion("Remove XML-like markup from the description"))
	}

	if ctx.Enabled("AS-010") && description != "" &&
		!strings.Contains(strings.ToLower(description), "use when") {
		d := diag.New(ctx.Path, line, 0, "AS-010", diag.Warning,
			"Description should include a trigger phrase starting with 'use when'").
			WithSuggestion("Describe the situation the skill applies to, e.g. 'Use when ...'")
		if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "description"); ok {
			fixed := "Use when user wants to " + description
			if len(fixed) <= maxDescriptionLen {
				d = d.WithFix(diag.Fix{
					StartByte: span.Start, EndByte: span.End, Replacement: fixed,
					Description: "Prepend a trigger phrase to the description",
					Safe:        false,
				})
			}
		}
		out = append(out, d)
	}

	return out
}

func (v *SkillValidator) checkModelContext(ctx *FileContext, p *frontend.Parsed) []diag.Diagnostic {
	var out []diag.Diagnostic

	model, hasModel := p.StringField("model")
	if ctx.Enabled("CC-SK-001") && hasModel && !contains(validModels, model) {
		d := diag.New(ctx.Path, p.KeyLine("model"), 0, "CC-SK-001", diag.Error,
			fmt.Sprintf("Invalid model '%s', must be one of: %s", model, strings.Join(validModels, ", "))).
			WithSuggestion("Use one of: " + strings.Join(validModels, ", "))
		if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "model"); ok {
			d = d.WithFix(diag.Fix{
				StartByte: span.Start, EndByte: span.End, Replacement: "sonnet",
				Description: "Replace invalid model with 'sonnet'", Safe: false,
			})
		}
		out = append(out, d)
	}

	context, hasContext := p.StringField("context")
	_, hasAgent := p.StringField("agent")

	if ctx.Enabled("CC-SK-002") && hasContext && context != "fork" {
		d := diag.New(ctx.Path, p.KeyLine("context"), 0, "CC-SK-002", diag.Error,
			fmt.Sprintf("Invalid context '%s', the only supported value is 'fork'", context))
		if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "context"); ok {
			d = d.WithFix(diag.Fix{
				StartByte: span.Start, EndByte: span.End, Replacement: "fork",
				Description: "Replace invalid context with 'fork'", Safe: false,
			})
		}
		out = append(out, d)
	}

	if ctx.Enabled("CC-SK-003") && context == "fork" && !hasAgent {
		d := diag.New(ctx.Path, p.KeyLine("context"), 0, "CC-SK-003", diag.Error,
			"context: fork requires an agent field").
			WithSuggestion("Add an agent field naming the agent that runs the fork")
		if span, ok := textutil.YAMLKeyLineSpan(ctx.Content, "context"); ok {
			d = d.WithFix(diag.Fix{
				StartByte: span.End, EndByte: span.End,
				Replacement: "agent: general-purpose\n",
				Description: "Add required 'agent' for context: fork",
				Safe:        false,
			})
		}
		out = append(out, d)
	}

	if ctx.Enabled("CC-SK-004") && hasAgent && context != "fork" {
		d := diag.New(ctx.Path, p.KeyLine("agent"), 0, "CC-SK-004", diag.Error,
			"agent requires context: fork")
		if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "context"); ok && hasContext {
			d = d.WithFix(diag.Fix{
				StartByte: span.Start, EndByte: span.End, Replacement: "fork",
				Description: "Set context to 'fork' when agent is configured", Safe: false,
			})
		} else if span, ok := textutil.YAMLKeyLineSpan(ctx.Content, "agent"); ok {
			d = d.WithFix(diag.Fix{
				StartByte: span.Start, EndByte: span.Start,
				Replacement: "context: fork\n",
				Description: "Add required 'context: fork' for agent usage",
				Safe:        false,
			})
		}
		out = append(out, d)
	}

	return out
}

func (v *SkillValidator) checkAgentType(ctx *FileContext, p *frontend.Parsed) []diag.Diagnostic {
	agent, ok := p.StringField("agent")
	if !ok || !ctx.Enabled("CC-SK-005") {
		return nil
	}
	if contains(builtinAgents, agent) {
		return nil
	}
	if len(agent) >= 1 && len(agent) <= skillNameMaxLength && skillNamePattern.MatchString(agent) {
		return nil
	}
	d := diag.New(ctx.Path, p.KeyLine("agent"), 0, "CC-SK-005", diag.Error,
		fmt.Sprintf("Invalid agent '%s', expected a built-in agent (%s) or a kebab-case custom agent name",
			agent, strings.Join(builtinAgents, ", ")))
	if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "agent"); ok {
		d = d.WithFix(diag.Fix{
			StartByte: span.Start, EndByte: span.End, Replacement: "general-purpose",
			Description: "Replace invalid agent with 'general-purpose'", Safe: false,
		})
	}
	return []diag.Diagnostic{d}
}

// splitToolList accepts both the comma-separated and the legacy
// space-separated allowed-tools formats.
func splitToolList(tools string) []string {
	if strings.Contains(tools, ",") {
		var out []string
		for _, t := range strings.Split(tools, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
		return out
	}
	return strings.Fields(tools)
}

func (v *SkillValidator) checkTools(ctx *FileContext, p *frontend.Parsed) []diag.Diagnostic {
	raw, ok := p.StringField("allowed-tools")
	if !ok {
		return nil
	}
	var out []diag.Diagnostic
	line := p.KeyLine("allowed-tools")
	tools := splitToolList(raw)

	if ctx.Enabled("CC-SK-007") {
		// Anchor fixes to the plain Bash occurrences on the allowed-tools
		// line; a Bash followed by '(' is scoped and fine.
		var bashSpans []textutil.Span
		if lineStart, lineEnd, ok := textutil.LineSpan(ctx.Content, line); ok {
			lineText := ctx.Content[lineStart:lineEnd]
			for _, m := range plainBashPattern.FindAllStringIndex(lineText, -1) {
				end := lineStart + m[1]
				if end < len(ctx.Content) && ctx.Content[end] == '(' {
					continue
				}
				bashSpans = append(bashSpans, textutil.Span{Start: lineStart + m[0], End: end})
			}
		}
		spanIdx := 0
		for _, tool := range tools {
			if tool != "Bash" {
				continue
			}
			d := diag.New(ctx.Path, line, 0, "CC-SK-007", diag.Warning,
				"Unrestricted Bash access granted").
				WithSuggestion("Scope Bash to the commands the skill needs, e.g. Bash(git:*)")
			if spanIdx < len(bashSpans) {
				s := bashSpans[spanIdx]
				spanIdx++
				d = d.WithFix(diag.Fix{
					StartByte: s.Start, EndByte: s.End, Replacement: "Bash(git:*)",
					Description: "Scope Bash to git commands", Safe: false,
				})
			}
			out = append(out, d)
		}
	}

	if ctx.Enabled("CC-SK-008") {
		for _, tool := range tools {
			base := tool
			if idx := strings.Index(tool, "("); idx >= 0 {
				base = tool[:idx]
			}
			if contains(knownSkillTools, base) || strings.HasPrefix(base, "mcp__") {
				continue
			}
			d := diag.New(ctx.Path, line, 0, "CC-SK-008", diag.Error,
				fmt.Sprintf("Unknown tool '%s'", base)).
				WithSuggestion("Known tools: " + strings.Join(knownSkillTools, ", "))
			if match, ok := textutil.ClosestMatch(base, knownSkillTools); ok {
				d = d.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", match))
			}
			out = append(out, d)
		}
	}

	return out
}

func (v *SkillValidator) checkSafety(ctx *FileContext, p *frontend.Parsed, name string) []diag.Diagnostic {
	var out []diag.Diagnostic

	if ctx.Enabled("CC-SK-006") {
		disabled, _ := p.Data["disable-model-invocation"].(bool)
		lower := strings.ToLower(name)
		dangerous := false
		for _, d := range dangerousSkillNames {
			if strings.Contains(lower, d) {
				dangerous = true
				break
			}
		}
		if dangerous && !disabled {
			out = append(out, diag.New(ctx.Path, p.KeyLine("name"), 0, "CC-SK-006", diag.Error,
				fmt.Sprintf("Skill '%s' has a dangerous name and can be auto-invoked by the model", name)).
				WithSuggestion("Set disable-model-invocation: true for destructive skills"))
		}
	}

	if ctx.Enabled("CC-SK-009") {
		if count := strings.Count(ctx.Content, "!`"); count > maxInjections {
			out = append(out, diag.New(ctx.Path, p.StartLine, 0, "CC-SK-009", diag.Warning,
				fmt.Sprintf("%d dynamic injections exceed the recommended maximum of %d", count, maxInjections)).
				WithSuggestion("Precompute values in the body instead of injecting commands"))
		}
	}

	return out
}

func (v *SkillValidator) checkHooksField(ctx *FileContext, p *frontend.Parsed) []diag.Diagnostic {
	if !ctx.Enabled("CC-SK-010") {
		return nil
	}
	hooksVal, ok := p.Data["hooks"]
	if !ok {
		return nil
	}
	var out []diag.Diagnostic
	line := p.KeyLine("hooks")

	hooksMap, ok := hooksVal.(map[string]any)
	if !ok {
		return append(out, diag.New(ctx.Path, line, 0, "CC-SK-010", diag.Error,
			"Invalid hooks field: hooks must be a mapping of event names to hook arrays"))
	}
	for _, event := range sortedKeys(hooksMap) {
		val := hooksMap[event]
		if !contains(validHookEvents, event) {
			out = append(out, diag.New(ctx.Path, line, 0, "CC-SK-010", diag.Error,
				fmt.Sprintf("Invalid hooks field: invalid hook event '%s', valid events: %s",
					event, strings.Join(validHookEvents, ", "))))
		}
		if _, isSeq := val.([]any); !isSeq {
			out = append(out, diag.New(ctx.Path, line, 0, "CC-SK-010", diag.Error,
				fmt.Sprintf("Invalid hooks field: hooks for event '%s' must be an array", event)))
		}
	}
	return out
}

func (v *SkillValidator) checkReachability(ctx *FileContext, p *frontend.Parsed) []diag.Diagnostic {
	if !ctx.Enabled("CC-SK-011") {
		return nil
	}
	userInvocable := true
	if b, ok := p.Data["user-invocable"].(bool); ok {
		userInvocable = b
	}
	disableModel, _ := p.Data["disable-model-invocation"].(bool)
	if userInvocable || !disableModel {
		return nil
	}
	d := diag.New(ctx.Path, p.KeyLine("user-invocable"), 0, "CC-SK-011", diag.Error,
		"Skill is unreachable: user-invocable is false and model invocation is disabled")
	if span, ok := textutil.YAMLKeyLineSpan(ctx.Content, "disable-model-invocation"); ok {
		d = d.WithFix(diag.Fix{
			StartByte: span.Start, EndByte: span.End,
			Description: "Remove disable-model-invocation to restore model access",
			Safe:        false,
		})
	}
	return []diag.Diagnostic{d}
}

func (v *SkillValidator) checkArgumentHint(ctx *FileContext, p *frontend.Parsed) []diag.Diagnostic {
	if !ctx.Enabled("CC-SK-012") {
		return nil
	}
	if _, ok := p.Data["argument-hint"]; !ok {
		return nil
	}
	if strings.Contains(p.Body, "$ARGUMENTS") {
		return nil
	}
	return []diag.Diagnostic{
		diag.New(ctx.Path, p.KeyLine("argument-hint"), 0, "CC-SK-012", diag.Warning,
			"argument-hint is set but the body never uses $ARGUMENTS").
			WithSuggestion("Reference $ARGUMENTS in the body or drop the hint"),
	}
}

func (v *SkillValidator) checkForkInstructions(ctx *FileContext, p *frontend.Parsed) []diag.Diagnostic {
	if !ctx.Enabled("CC-SK-013") {
		return nil
	}
	if context, _ := p.StringField("context"); context != "fork" {
		return nil
	}
	body := strings.TrimSpace(p.Body)
	if body != "" && imperativeVerbRe.MatchString(body) {
		return nil
	}
	return []diag.Diagnostic{
		diag.New(ctx.Path, p.KeyLine("context"), 0, "CC-SK-013", diag.Warning,
			"context: fork but the body has no actionable instructions").
			WithSuggestion("Forked skills need imperative instructions the agent can follow"),
	}
}

// checkQuotedBoolean flags "true"/"false" strings on boolean fields and
// offers a safe fix to the bare boolean.
func checkQuotedBoolean(ctx *FileContext, field, rule string) []diag.Diagnostic {
	if !ctx.Enabled(rule) {
		return nil
	}
	fm, ok := frontend.Split(ctx.Content)
	if !ok {
		return nil
	}
	var out []diag.Diagnostic
	for i, line := range strings.Split(fm.Raw, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		rest, found := strings.CutPrefix(trimmed, field)
		if !found {
			continue
		}
		rest = strings.TrimLeft(rest, " \t")
		rest, found = strings.CutPrefix(rest, ":")
		if !found {
			continue
		}
		value := strings.TrimSpace(strings.SplitN(rest, "#", 2)[0])
		switch value {
		case `"true"`, `"false"`, `'true'`, `'false'`:
		default:
			continue
		}
		inner := strings.Trim(value, `"'`)
		lineNum := fm.StartLine + i + 1
		d := diag.New(ctx.Path, lineNum, 0, rule, diag.Error,
			fmt.Sprintf("%s is the string \"%s\", not a boolean", field, inner)).
			WithSuggestion("Remove the quotes so YAML parses the value as a boolean")
		if span, ok := textutil.FrontmatterValueSpan(ctx.Content, field); ok {
			start, end := span.Start, span.End
			if start > 0 && (ctx.Content[start-1] == '"' || ctx.Content[start-1] == '\'') {
				start--
			}
			if end < len(ctx.Content) && (ctx.Content[end] == '"' || ctx.Content[end] == '\'') {
				end++
			}
			d = d.WithFix(diag.Fix{
				StartByte: start, EndByte: end, Replacement: inner,
				Description: fmt.Sprintf("Unquote %s", field), Safe: true,
			})
		}
		out = append(out, d)
	}
	return out
}

func (v *SkillValidator) checkBody(ctx *FileContext, p *frontend.Parsed) []diag.Diagnostic {
	var out []diag.Diagnostic
	body := p.Body
	bodyLine := p.BodyLine

	if ctx.Enabled("AS-012") {
		if n := textutil.CountLines(body); n > maxSkillBodyLines {
			out = append(out, diag.New(ctx.Path, bodyLine, 0, "AS-012", diag.Warning,
				fmt.Sprintf("Skill body is %d lines, above the recommended %d", n, maxSkillBodyLines)).
				WithSuggestion("Move heavy documentation into a references/ subdirectory"))
		}
	}

	if ctx.Enabled("AS-013") {
		for _, m := range referencePathPattern.FindAllStringIndex(body, -1) {
			ref := body[m[0]:m[1]]
			if referenceTooDeep(ref) {
				line := bodyLine + strings.Count(body[:m[0]], "\n")
				out = append(out, diag.New(ctx.Path, line, 0, "AS-013", diag.Error,
					fmt.Sprintf("Reference path '%s' is nested too deeply", ref)).
					WithSuggestion("Keep references at most two directories below references/"))
			}
		}
	}

	if ctx.Enabled("AS-014") {
		bodyOffset := len(ctx.Content) - len(body)
		for _, m := range windowsPathPattern.FindAllStringIndex(body, -1) {
			winPath := body[m[0]:m[1]]
			line := bodyLine + strings.Count(body[:m[0]], "\n")
			d := diag.New(ctx.Path, line, 0, "AS-014", diag.Error,
				fmt.Sprintf("Path '%s' uses Windows separators", winPath)).
				WithSuggestion("Use forward slashes so references resolve on every platform")
			replacement := strings.ReplaceAll(winPath, `\`, "/")
			if replacement != winPath {
				d = d.WithFix(diag.Fix{
					StartByte:   bodyOffset + m[0],
					EndByte:     bodyOffset + m[1],
					Replacement: replacement,
					Description: "Normalize Windows path separators to '/'",
					Safe:        true,
				})
			}
			out = append(out, d)
		}
	}

	return out
}

// referenceTooDeep reports whether a references/ path nests more than
// maxReferenceDepth directories below the references root.
func referenceTooDeep(ref string) bool {
	norm := strings.ReplaceAll(ref, `\`, "/")
	parts := strings.Split(norm, "/")
	return len(parts)-2 > maxReferenceDepth
}

// checkDirectorySize enforces the 8 MiB skill-directory ceiling with a
// short-circuit traversal.
func (v *SkillValidator) checkDirectorySize(ctx *FileContext) []diag.Diagnostic {
	if !ctx.Enabled("AS-015") || ctx.AbsPath == "" || !ctx.Cfg.FS.IsFile(ctx.AbsPath) {
		return nil
	}
	dir := filepath.Dir(ctx.AbsPath)
	size := directorySizeUntil(ctx, dir, maxSkillDirBytes)
	if size <= maxSkillDirBytes {
		return nil
	}
	return []diag.Diagnostic{
		diag.New(ctx.Path, 1, 0, "AS-015", diag.Error,
			fmt.Sprintf("Skill directory exceeds 8 MiB (%d bytes and counting)", size)).
			WithSuggestion("Move large assets out of the skill directory"),
	}
}

// toKebabCase rewrites an arbitrary name into kebab-case: lowercase,
// separators collapsed to single hyphens, invalid characters dropped,
// truncated to the name length limit.
func toKebabCase(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			b.WriteRune(c)
			lastHyphen = false
		case c >= 'A' && c <= 'Z':
			b.WriteRune(c + ('a' - 'A'))
			lastHyphen = false
		case (c == '_' || c == '-' || c == ' ') && !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > skillNameMaxLength {
		out = strings.TrimRight(out[:skillNameMaxLength], "-")
	}
	return out
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
