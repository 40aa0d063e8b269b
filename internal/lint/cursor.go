package lint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dotcommander/agentlint/internal/classify"
	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/frontend"
	"github.com/dotcommander/agentlint/internal/textutil"
)

// Events .cursor/hooks.json may key hooks on.
var cursorHookEvents = []string{
	"sessionStart", "sessionEnd", "preToolUse", "postToolUse",
	"postToolUseFailure", "subagentStart", "subagentStop",
	"beforeShellExecution", "afterShellExecution",
	"beforeMCPExecution", "afterMCPExecution",
	"beforeReadFile", "afterFileEdit", "beforeSubmitPrompt",
	"preCompact", "stop", "afterAgentResponse", "afterAgentThought",
	"beforeTabFileRead", "afterTabFileEdit",
}

var cursorHookTypes = []string{"command", "prompt"}

// Frontmatter keys Cursor reads from .mdc rule files.
var knownMdcKeys = []string{"description", "globs", "alwaysApply"}

// CursorValidator covers Cursor's artifact families: .mdc project rules,
// legacy .cursorrules, hooks.json, subagent AGENT.md files, and
// environment.json.
type CursorValidator struct{}

func (v *CursorValidator) Name() string { return "cursor" }

func (v *CursorValidator) Rules() []string {
	return []string{
		"CUR-001", "CUR-002", "CUR-003", "CUR-004", "CUR-005", "CUR-006",
		"CUR-007", "CUR-008", "CUR-009", "CUR-010", "CUR-011", "CUR-012",
		"CUR-013", "CUR-014", "CUR-015", "CUR-016",
	}
}

func (v *CursorValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	switch ctx.Kind {
	case classify.CursorHooks:
		return v.validateHooks(ctx)
	case classify.CursorAgent:
		return v.validateAgent(ctx)
	case classify.CursorEnvironment:
		return v.validateEnvironment(ctx)
	case classify.CursorRulesLegacy:
		return v.validateLegacy(ctx)
	default:
		return v.validateRule(ctx)
	}
}

func (v *CursorValidator) validateLegacy(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic
	if ctx.Enabled("CUR-006") {
		diags = append(diags, diag.New(ctx.Path, 1, 0, "CUR-006", diag.Warning,
			"Legacy .cursorrules file detected").
			WithSuggestion("Migrate to .cursor/rules/*.mdc files with frontmatter; .cursorrules is deprecated"))
	}
	if ctx.Enabled("CUR-001") && strings.TrimSpace(ctx.Content) == "" {
		diags = append(diags, diag.New(ctx.Path, 1, 0, "CUR-001", diag.Error,
			"Legacy .cursorrules file is empty").
			WithSuggestion("Delete the empty file or move its intent into .cursor/rules"))
	}
	return diags
}

func (v *CursorValidator) validateRule(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic

	parsed, hasFM, err := frontend.Parse(ctx.Content)
	if !hasFM {
		// An opening fence without a closing one is broken frontmatter,
		// not missing frontmatter.
		if startsWithFence(ctx.Content) {
			if ctx.Enabled("CUR-003") {
				diags = append(diags, diag.New(ctx.Path, 1, 0, "CUR-003", diag.Error,
					"Invalid YAML frontmatter: missing closing ---").
					WithSuggestion("Close the frontmatter block with a --- line"))
			}
			return diags
		}
		if strings.TrimSpace(ctx.Content) == "" {
			if ctx.Enabled("CUR-001") {
				diags = append(diags, diag.New(ctx.Path, 1, 0, "CUR-001", diag.Error,
					"Rule file is empty").
					WithSuggestion("Add frontmatter and rule content, or delete the file"))
			}
			return diags
		}
		if ctx.Enabled("CUR-002") {
			d := diag.New(ctx.Path, 1, 0, "CUR-002", diag.Warning,
				"Rule file is missing recommended frontmatter").
				WithSuggestion("Add frontmatter declaring when the rule applies (description, globs, or alwaysApply)").
				WithFix(diag.Fix{
					StartByte:   0,
					EndByte:     0,
					Replacement: "---\ndescription: \nglobs: \n---\n",
					Description: "Insert frontmatter template",
					Safe:        false,
				})
			diags = append(diags, d)
		}
		return diags
	}
	if err != nil {
		if ctx.Enabled("CUR-003") {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "CUR-003", diag.Error,
				fmt.Sprintf("Invalid YAML frontmatter: %v", err)).
				WithSuggestion("Fix the YAML syntax in the frontmatter block"))
		}
		return diags
	}

	if ctx.Enabled("CUR-001") && strings.TrimSpace(parsed.Body) == "" {
		diags = append(diags, diag.New(ctx.Path, parsed.BodyLine, 0, "CUR-001", diag.Error,
			"Rule file has no content after frontmatter").
			WithSuggestion("Add the rule text below the frontmatter block"))
	}

	globs, hasGlobs := v.globPatterns(parsed)

	if ctx.Enabled("CUR-004") && hasGlobs {
		globsLine := parsed.KeyLine("globs")
		for _, pattern := range globs {
			if reason, bad := globPatternError(pattern); bad {
				diags = append(diags, diag.New(ctx.Path, globsLine, 0, "CUR-004", diag.Error,
					fmt.Sprintf("Invalid glob pattern %q: %s", pattern, reason)).
					WithSuggestion("Use doublestar glob syntax, for example \"**/*.ts\""))
			}
		}
	}

	if ctx.Enabled("CUR-005") {
		for _, key := range parsed.KeyOrder {
			if contains(knownMdcKeys, key) {
				continue
			}
			d := diag.New(ctx.Path, parsed.KeyLine(key), 0, "CUR-005", diag.Warning,
				fmt.Sprintf("Unknown frontmatter key %q", key)).
				WithSuggestion(fmt.Sprintf("Remove %q; Cursor only reads description, globs, and alwaysApply", key))
			if start, end, ok := textutil.LineSpan(ctx.Content, parsed.KeyLine(key)); ok {
				d = d.WithFix(diag.Fix{
					StartByte:   start,
					EndByte:     end,
					Description: fmt.Sprintf("Remove unknown frontmatter key '%s'", key),
					Safe:        true,
				})
			}
			diags = append(diags, d)
		}
	}

	diags = append(diags, checkQuotedBoolean(ctx, "alwaysApply", "CUR-008")...)

	alwaysApply, hasAlwaysApply := parsed.Data["alwaysApply"]
	if ctx.Enabled("CUR-007") {
		if b, ok := alwaysApply.(bool); ok && b && hasGlobs {
			globsLine := parsed.KeyLine("globs")
			d := diag.New(ctx.Path, globsLine, 0, "CUR-007", diag.Warning,
				"globs are ignored when alwaysApply is true").
				WithSuggestion("Remove the globs field, or drop alwaysApply to scope the rule by glob")
			if start, end, ok := yamlBlockSpan(ctx.Content, globsLine); ok {
				d = d.WithFix(diag.Fix{
					StartByte:   start,
					EndByte:     end,
					Description: "Remove redundant globs field",
					Safe:        true,
				})
			}
			diags = append(diags, d)
		}
	}

	if ctx.Enabled("CUR-009") {
		description, _ := parsed.StringField("description")
		if !hasAlwaysApply && !hasGlobs && description == "" {
			diags = append(diags, diag.New(ctx.Path, parsed.StartLine, 0, "CUR-009", diag.Warning,
				"Agent-requested rule has no description").
				WithSuggestion("Without globs or alwaysApply the agent picks this rule by its description; add one"))
		}
	}

	return diags
}

// globPatterns returns the globs field as a pattern list. Accepts a single
// string (optionally comma separated) or a YAML list.
func (v *CursorValidator) globPatterns(parsed *frontend.Parsed) ([]string, bool) {
	if _, present := parsed.Data["globs"]; !present {
		return nil, false
	}
	patterns, ok := parsed.StringList("globs")
	if !ok {
		return nil, true
	}
	return patterns, true
}

func (v *CursorValidator) validateHooks(ctx *FileContext) []diag.Diagnostic {
	report := func(rule string, level diag.Level, msg string) diag.Diagnostic {
		return diag.New(ctx.Path, 1, 0, rule, level, msg).
			WithSuggestion("hooks.json must be an object with a numeric version and an event-keyed hooks object")
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(ctx.Content), &root); err != nil {
		if !ctx.Enabled("CUR-010") {
			return nil
		}
		return []diag.Diagnostic{report("CUR-010", diag.Error,
			fmt.Sprintf("Invalid hooks JSON: %v", err))}
	}

	var diags []diag.Diagnostic
	if ctx.Enabled("CUR-010") {
		var version int64
		raw, ok := root["version"]
		if !ok || json.Unmarshal(raw, &version) != nil {
			diags = append(diags, report("CUR-010", diag.Error,
				"Missing or non-numeric 'version' field"))
		}
	}

	rawHooks, ok := root["hooks"]
	if !ok {
		if ctx.Enabled("CUR-010") {
			diags = append(diags, report("CUR-010", diag.Error,
				"Missing required 'hooks' object"))
		}
		return diags
	}
	var hooks map[string]json.RawMessage
	if err := json.Unmarshal(rawHooks, &hooks); err != nil {
		if ctx.Enabled("CUR-010") {
			diags = append(diags, report("CUR-010", diag.Error,
				"Field 'hooks' must be an object keyed by event name"))
		}
		return diags
	}

	for _, event := range sortedStringSliceMapKeys(hooks) {
		if ctx.Enabled("CUR-011") && !contains(cursorHookEvents, event) {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "CUR-011", diag.Warning,
				fmt.Sprintf("Unknown hook event %q", event)).
				WithSuggestion("Check the Cursor hooks documentation for the supported event names"))
		}

		var entries []map[string]json.RawMessage
		if err := json.Unmarshal(hooks[event], &entries); err != nil {
			if ctx.Enabled("CUR-010") {
				diags = append(diags, report("CUR-010", diag.Error,
					fmt.Sprintf("hooks.%s must be an array of hook objects", event)))
			}
			continue
		}

		for i, entry := range entries {
			if entry == nil {
				if ctx.Enabled("CUR-010") {
					diags = append(diags, report("CUR-010", diag.Error,
						fmt.Sprintf("hooks.%s entry %d must be an object", event, i+1)))
				}
				continue
			}

			if raw, present := entry["type"]; present && ctx.Enabled("CUR-013") {
				var hookType string
				if json.Unmarshal(raw, &hookType) != nil || !contains(cursorHookTypes, hookType) {
					diags = append(diags, diag.New(ctx.Path, 1, 0, "CUR-013", diag.Error,
						fmt.Sprintf("hooks.%s entry %d has an invalid type", event, i+1)).
						WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(cursorHookTypes, ", "))))
				}
			}

			if ctx.Enabled("CUR-012") {
				var command string
				raw, present := entry["command"]
				if !present || json.Unmarshal(raw, &command) != nil || strings.TrimSpace(command) == "" {
					diags = append(diags, diag.New(ctx.Path, 1, 0, "CUR-012", diag.Error,
						fmt.Sprintf("hooks.%s entry %d is missing a non-empty 'command' string", event, i+1)).
						WithSuggestion("Set command to the script or executable the hook runs"))
				}
			}
		}
	}

	return diags
}

func (v *CursorValidator) validateAgent(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic

	report := func(msg, suggestion string) diag.Diagnostic {
		return diag.New(ctx.Path, 1, 0, "CUR-014", diag.Error, msg).WithSuggestion(suggestion)
	}

	parsed, hasFM, err := frontend.Parse(ctx.Content)
	if ctx.Enabled("CUR-014") {
		switch {
		case !hasFM:
			diags = append(diags, report(
				"Subagent file is missing frontmatter",
				"Open the file with a frontmatter block declaring name and description"))
		case err != nil:
			diags = append(diags, report(
				fmt.Sprintf("Invalid subagent frontmatter: %v", err),
				"Fix the YAML syntax in the frontmatter block"))
		default:
			diags = append(diags, v.checkAgentFields(ctx, parsed, report)...)
		}
	}

	if ctx.Enabled("CUR-015") && hasFM && err == nil && strings.TrimSpace(parsed.Body) == "" {
		diags = append(diags, diag.New(ctx.Path, 1, 0, "CUR-015", diag.Warning,
			"Subagent file has no prompt content after frontmatter").
			WithSuggestion("Add the subagent's instructions below the frontmatter block"))
	}

	return diags
}

func (v *CursorValidator) checkAgentFields(ctx *FileContext, parsed *frontend.Parsed, report func(msg, suggestion string) diag.Diagnostic) []diag.Diagnostic {
	var diags []diag.Diagnostic

	if raw, present := parsed.Data["name"]; !present {
		diags = append(diags, report("Subagent frontmatter is missing 'name'",
			"Add a lowercase kebab-case name"))
	} else if name, ok := raw.(string); !ok {
		diags = append(diags, report("Subagent 'name' must be a string",
			"Use a lowercase kebab-case name"))
	} else if !isValidCursorAgentName(name) {
		diags = append(diags, report(fmt.Sprintf("Invalid subagent name %q", name),
			"Use lowercase letters, digits, and single hyphens, with no leading or trailing hyphen"))
	}

	if raw, present := parsed.Data["description"]; !present {
		diags = append(diags, report("Subagent frontmatter is missing 'description'",
			"Describe what the subagent does so the main agent can delegate to it"))
	} else if _, ok := raw.(string); !ok {
		diags = append(diags, report("Subagent 'description' must be a string",
			"Describe what the subagent does in a plain string"))
	}

	if raw, present := parsed.Data["model"]; present {
		if model, ok := raw.(string); !ok {
			diags = append(diags, report("Subagent 'model' must be a string",
				"Use a model id, or the aliases fast or inherit"))
		} else if model != "fast" && model != "inherit" && !isValidCursorModelID(model) {
			diags = append(diags, report(fmt.Sprintf("Invalid subagent model %q", model),
				"Use a model id, or the aliases fast or inherit"))
		}
	}

	for _, field := range []string{"readonly", "is_background"} {
		if raw, present := parsed.Data[field]; present {
			if _, ok := raw.(bool); !ok {
				diags = append(diags, report(fmt.Sprintf("Subagent '%s' must be a boolean", field),
					"Use an unquoted true or false"))
			}
		}
	}

	return diags
}

// cursorTerminal is one entry in environment.json's terminals array.
type cursorTerminal struct {
	Name    *string `json:"name"`
	Command *string `json:"command"`
}

type cursorEnvironment struct {
	Snapshot  *string          `json:"snapshot"`
	Install   *string          `json:"install"`
	Start     json.RawMessage  `json:"start"`
	Terminals *json.RawMessage `json:"terminals"`
}

func (v *CursorValidator) validateEnvironment(ctx *FileContext) []diag.Diagnostic {
	if !ctx.Enabled("CUR-016") {
		return nil
	}
	report := func(msg string) diag.Diagnostic {
		return diag.New(ctx.Path, 1, 0, "CUR-016", diag.Error, msg).
			WithSuggestion("environment.json needs snapshot and install strings plus a terminals array of {name, command} objects")
	}

	var env cursorEnvironment
	if err := json.Unmarshal([]byte(ctx.Content), &env); err != nil {
		return []diag.Diagnostic{report(fmt.Sprintf("Invalid environment JSON: %v", err))}
	}

	var diags []diag.Diagnostic
	if env.Snapshot == nil {
		diags = append(diags, report("Missing required 'snapshot' string"))
	}
	if env.Install == nil {
		diags = append(diags, report("Missing required 'install' string"))
	}
	if env.Start != nil {
		var start string
		if json.Unmarshal(env.Start, &start) != nil {
			diags = append(diags, report("Field 'start' must be a string"))
		}
	}

	if env.Terminals == nil {
		diags = append(diags, report("Missing required 'terminals' array"))
		return diags
	}
	var terminals []json.RawMessage
	if json.Unmarshal(*env.Terminals, &terminals) != nil {
		diags = append(diags, report("Field 'terminals' must be an array"))
		return diags
	}
	for i, raw := range terminals {
		var term cursorTerminal
		if json.Unmarshal(raw, &term) != nil || term.Name == nil || term.Command == nil {
			diags = append(diags, report(
				fmt.Sprintf("Terminal %d must be an object with 'name' and 'command' strings", i+1)))
		}
	}
	return diags
}

func isValidCursorAgentName(name string) bool {
	if name == "" || strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") ||
		strings.Contains(name, "--") {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

func isValidCursorModelID(model string) bool {
	if strings.TrimSpace(model) == "" {
		return false
	}
	for _, r := range model {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == ':' || r == '/':
		default:
			return false
		}
	}
	return true
}

// startsWithFence reports whether the first non-empty line is an opening
// frontmatter fence, matching what frontend.Split accepts.
func startsWithFence(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return trimmed == "---"
	}
	return false
}

// yamlBlockSpan returns the byte range of a key's line plus any indented
// continuation lines below it (list items under the key).
func yamlBlockSpan(content string, startLine int) (int, int, bool) {
	start, end, ok := textutil.LineSpan(content, startLine)
	if !ok {
		return 0, 0, false
	}
	line := startLine + 1
	for {
		next, nextEnd, ok := textutil.LineSpan(content, line)
		if !ok {
			break
		}
		text := content[next:nextEnd]
		if !strings.HasPrefix(text, " ") && !strings.HasPrefix(text, "\t") {
			break
		}
		end = nextEnd
		line++
	}
	return start, end, true
}
