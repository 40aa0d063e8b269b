package lint

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/frontend"
	"github.com/dotcommander/agentlint/internal/textutil"
)

var validPermissionModes = []string{
	"default", "acceptEdits", "dontAsk", "bypassPermissions", "plan",
}

var validMemoryScopes = []string{"user", "project", "local"}

// knownAgentTools is the tool surface agents can grant or deny. Skills have
// a couple of extras (Skill, StatusBarMessageTool, TaskOutput) not valid
// here.
var knownAgentTools = []string{
	"Bash", "Read", "Write", "Edit", "Grep", "Glob", "Task",
	"WebFetch", "WebSearch", "AskUserQuestion", "TodoRead", "TodoWrite",
	"MultiTool", "NotebookEdit", "EnterPlanMode", "ExitPlanMode",
}

// Cap on upward directory traversal when locating the project root.
const maxRootTraversalDepth = 10

// AgentValidator checks agent definition files under agents/ directories:
// required fields, model and permission mode enums, tool lists, inline
// hooks, and that referenced skills actually exist.
type AgentValidator struct{}

func (*AgentValidator) Name() string { return "agent" }

func (*AgentValidator) Rules() []string {
	return []string{
		"CC-AG-001", "CC-AG-002", "CC-AG-003", "CC-AG-004", "CC-AG-005",
		"CC-AG-006", "CC-AG-007", "CC-AG-008", "CC-AG-009", "CC-AG-010",
		"CC-AG-011", "CC-AG-012", "CC-AG-013",
	}
}

func (v *AgentValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var out []diag.Diagnostic

	if !strings.HasPrefix(strings.TrimLeft(ctx.Content, " \t\r\n"), "---") {
		if ctx.Enabled("CC-AG-007") {
			out = append(out, diag.New(ctx.Path, 1, 0, "CC-AG-007", diag.Error,
				"Agent file must start with YAML frontmatter").
				WithSuggestion("Add a frontmatter block with name and description"))
		}
		return out
	}

	parsed, hasFM, err := frontend.Parse(ctx.Content)
	if err != nil || !hasFM {
		if ctx.Enabled("CC-AG-007") {
			if err == nil {
				err = fmt.Errorf("frontmatter block is not closed")
			}
			out = append(out, diag.New(ctx.Path, 1, 0, "CC-AG-007", diag.Error,
				fmt.Sprintf("Failed to parse agent frontmatter: %v", err)))
		}
		return out
	}

	name, _ := parsed.StringField("name")
	if ctx.Enabled("CC-AG-001") && strings.TrimSpace(name) == "" {
		out = append(out, diag.New(ctx.Path, 1, 0, "CC-AG-001", diag.Error,
			"Agent is missing required field 'name'").
			WithSuggestion("Add a name field identifying the agent"))
	}

	description, _ := parsed.StringField("description")
	if ctx.Enabled("CC-AG-002") && strings.TrimSpace(description) == "" {
		out = append(out, diag.New(ctx.Path, 1, 0, "CC-AG-002", diag.Error,
			"Agent is missing required field 'description'").
			WithSuggestion("Describe what the agent does and when to delegate to it"))
	}

	if model, ok := parsed.StringField("model"); ok && ctx.Enabled("CC-AG-003") {
		if !contains(validModels, model) {
			d := diag.New(ctx.Path, 1, 0, "CC-AG-003", diag.Error,
				fmt.Sprintf("Invalid model '%s', must be one of: %s", model, strings.Join(validModels, ", "))).
				WithSuggestion("Use one of: " + strings.Join(validModels, ", "))
			if span, found := textutil.FrontmatterValueSpan(ctx.Content, "model"); found {
				d = d.WithFix(diag.Fix{
					StartByte: span.Start, EndByte: span.End, Replacement: "sonnet",
					Description: "Replace invalid model with 'sonnet'", Safe: false,
				})
			}
			out = append(out, d)
		}
	}

	mode, hasMode := parsed.StringField("permissionMode")
	if hasMode && ctx.Enabled("CC-AG-004") && !contains(validPermissionModes, mode) {
		d := diag.New(ctx.Path, 1, 0, "CC-AG-004", diag.Error,
			fmt.Sprintf("Invalid permissionMode '%s', must be one of: %s",
				mode, strings.Join(validPermissionModes, ", "))).
			WithSuggestion("Use one of: " + strings.Join(validPermissionModes, ", "))
		if span, found := textutil.FrontmatterValueSpan(ctx.Content, "permissionMode"); found {
			d = d.WithFix(diag.Fix{
				StartByte: span.Start, EndByte: span.End, Replacement: "default",
				Description: "Replace invalid permissionMode with 'default'", Safe: false,
			})
		}
		out = append(out, d)
	}

	skills, _ := parsed.StringList("skills")
	if ctx.Enabled("CC-AG-005") {
		if root, found := findProjectRoot(ctx); found {
			for _, skill := range skills {
				if !skillExists(ctx, root, skill) {
					out = append(out, diag.New(ctx.Path, 1, 0, "CC-AG-005", diag.Error,
						fmt.Sprintf("Referenced skill '%s' not found", skill)).
						WithSuggestion(fmt.Sprintf("Create .claude/skills/%s/SKILL.md or remove the reference", skill)))
				}
			}
		}
	}

	tools, _ := parsed.StringList("tools")
	disallowed, _ := parsed.StringList("disallowedTools")

	if ctx.Enabled("CC-AG-006") && len(tools) > 0 && len(disallowed) > 0 {
		var conflicts []string
		for _, t := range tools {
			if contains(disallowed, t) {
				conflicts = append(conflicts, t)
			}
		}
		if len(conflicts) > 0 {
			out = append(out, diag.New(ctx.Path, 1, 0, "CC-AG-006", diag.Error,
				fmt.Sprintf("Tools listed as both allowed and disallowed: %s", strings.Join(conflicts, ", "))).
				WithSuggestion("Remove the conflicting entries from one of the lists"))
		}
	}

	if memory, ok := parsed.StringField("memory"); ok && ctx.Enabled("CC-AG-008") {
		if !contains(validMemoryScopes, memory) {
			out = append(out, diag.New(ctx.Path, 1, 0, "CC-AG-008", diag.Error,
				fmt.Sprintf("Invalid memory scope '%s'", memory)).
				WithSuggestion("Valid scopes: " + strings.Join(validMemoryScopes, ", ")))
		}
	}

	if ctx.Enabled("CC-AG-009") {
		out = append(out, checkAgentToolList(ctx, tools, "CC-AG-009", "tools")...)
	}
	if ctx.Enabled("CC-AG-010") {
		out = append(out, checkAgentToolList(ctx, disallowed, "CC-AG-010", "disallowedTools")...)
	}

	if ctx.Enabled("CC-AG-011") {
		out = append(out, checkAgentHooks(ctx, parsed)...)
	}

	if ctx.Enabled("CC-AG-012") && mode == "bypassPermissions" {
		out = append(out, diag.New(ctx.Path, 1, 0, "CC-AG-012", diag.Warning,
			"permissionMode: bypassPermissions disables all permission prompts").
			WithSuggestion("Prefer acceptEdits or an explicit tool allowlist"))
	}

	if ctx.Enabled("CC-AG-013") {
		for _, skill := range skills {
			if !isValidSkillNameFormat(skill) {
				out = append(out, diag.New(ctx.Path, 1, 0, "CC-AG-013", diag.Warning,
					fmt.Sprintf("Skill name '%s' is not kebab-case", skill)).
					WithSuggestion("Skill names use lowercase letters, digits, and single hyphens"))
			}
		}
	}

	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func checkAgentToolList(ctx *FileContext, tools []string, rule, field string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, tool := range tools {
		base := tool
		if idx := strings.Index(tool, "("); idx >= 0 {
			base = tool[:idx]
		}
		if contains(knownAgentTools, base) {
			continue
		}
		out = append(out, diag.New(ctx.Path, 1, 0, rule, diag.Error,
			fmt.Sprintf("Unknown tool '%s' in %s, known tools: %s",
				tool, field, strings.Join(knownAgentTools, ", "))).
			WithSuggestion("Use a known tool name or remove the entry"))
	}
	return out
}

// checkAgentHooks validates the hooks frontmatter block shape: a map of
// valid event names to arrays of matchers, each matcher holding a hooks
// array of typed hook objects. Agent hooks only support command and prompt
// types.
func checkAgentHooks(ctx *FileContext, parsed *frontend.Parsed) []diag.Diagnostic {
	hooksVal, ok := parsed.Data["hooks"]
	if !ok {
		return nil
	}
	agHooksErr := func(detail string) diag.Diagnostic {
		return diag.New(ctx.Path, 1, 0, "CC-AG-011", diag.Error,
			fmt.Sprintf("Invalid hooks in agent frontmatter: %s", detail)).
			WithSuggestion("Hooks map event names to arrays of {matcher, hooks} objects")
	}

	var out []diag.Diagnostic
	hooksMap, ok := hooksVal.(map[string]any)
	if !ok {
		return append(out, agHooksErr("hooks must be an object mapping event names to hook arrays"))
	}

	for _, event := range sortedKeys(hooksMap) {
		eventVal := hooksMap[event]
		if !contains(validHookEvents, event) {
			out = append(out, agHooksErr(fmt.Sprintf(
				"unknown event '%s', valid events: %s", event, strings.Join(validHookEvents, ", "))))
			continue
		}
		matchers, ok := eventVal.([]any)
		if !ok {
			out = append(out, agHooksErr(fmt.Sprintf(
				"event '%s' must map to an array of hook matchers", event)))
			continue
		}
		for i, m := range matchers {
			matcherObj, ok := m.(map[string]any)
			if !ok {
				out = append(out, agHooksErr(fmt.Sprintf(
					"matcher in %s.matchers[%d] must be an object", event, i)))
				continue
			}
			hooksField, ok := matcherObj["hooks"]
			if !ok {
				out = append(out, agHooksErr(fmt.Sprintf(
					"matcher in %s.matchers[%d] is missing required 'hooks' array", event, i)))
				continue
			}
			hookList, ok := hooksField.([]any)
			if !ok {
				out = append(out, agHooksErr(fmt.Sprintf(
					"'hooks' field in %s.matchers[%d] must be an array", event, i)))
				continue
			}
			for j, h := range hookList {
				hookObj, ok := h.(map[string]any)
				if !ok {
					out = append(out, agHooksErr(fmt.Sprintf(
						"hook in %s.matchers[%d].hooks[%d] must be an object", event, i, j)))
					continue
				}
				switch t, _ := hookObj["type"].(string); t {
				case "command", "prompt":
				case "":
					out = append(out, agHooksErr(fmt.Sprintf(
						"hook in %s.matchers[%d].hooks[%d] is missing required 'type' field", event, i, j)))
				default:
					out = append(out, agHooksErr(fmt.Sprintf(
						"hook type '%s' in %s.matchers[%d].hooks[%d] is invalid, must be 'command' or 'prompt'",
						t, event, i, j)))
				}
			}
		}
	}
	return out
}

// findProjectRoot walks up from the agent file looking for a directory
// containing .claude, bounded so a stray file deep in the tree cannot scan
// the whole filesystem.
func findProjectRoot(ctx *FileContext) (string, bool) {
	dir := filepath.Dir(ctx.AbsPath)
	for depth := 0; depth < maxRootTraversalDepth && dir != "" && dir != "."; depth++ {
		if filepath.Base(dir) == ".claude" {
			return filepath.Dir(dir), true
		}
		if ctx.Cfg.FS.IsDir(filepath.Join(dir, ".claude")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// isSafeSkillName rejects names that could traverse outside the skills
// directory.
func isSafeSkillName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

func isValidSkillNameFormat(name string) bool {
	if name == "" || strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return false
	}
	if strings.Contains(name, "--") {
		return false
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}

func skillExists(ctx *FileContext, projectRoot, skillName string) bool {
	if !isSafeSkillName(skillName) {
		return false
	}
	return ctx.Cfg.FS.IsFile(filepath.Join(projectRoot, ".claude", "skills", skillName, "SKILL.md"))
}
