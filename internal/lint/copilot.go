package lint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/agentlint/internal/classify"
	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/frontend"
	"github.com/dotcommander/agentlint/internal/textutil"
)

// Character budget for the global instruction file. Copilot truncates
// long instruction files silently, so anything past this warns.
const copilotGlobalLengthLimit = 4000

var validExcludeAgents = []string{"code-review", "coding-agent"}

// Frontmatter keys Copilot reads from scoped instruction files.
var knownScopedInstructionKeys = []string{"applyTo", "excludeAgent", "description"}

// Frontmatter keys Copilot reads from .agent.md files.
var knownCopilotAgentKeys = []string{
	"description", "tools", "model", "mcp-servers", "target",
	"argument-hint", "handoffs", "infer",
}

// Frontmatter keys Copilot reads from .prompt.md files.
var knownCopilotPromptKeys = []string{
	"description", "name", "argument-hint", "agent", "model", "tools",
}

var validPromptAgentModes = []string{"none", "ask", "always"}

// Event names the Copilot coding agent dispatches hooks on.
var validCopilotHookEvents = []string{
	"sessionStart", "sessionEnd", "userPromptSubmitted",
	"preToolUse", "postToolUse", "errorOccurred",
}

// CopilotValidator covers the GitHub Copilot artifact families: the global
// instruction file, scoped *.instructions.md files, custom agents, reusable
// prompts, coding-agent hooks JSON, and the setup-steps workflow.
type CopilotValidator struct{}

func (v *CopilotValidator) Name() string { return "copilot" }

func (v *CopilotValidator) Rules() []string {
	return []string{
		"COP-001", "COP-002", "COP-003", "COP-004", "COP-005",
		"COP-006", "COP-007", "COP-008", "COP-009", "COP-010",
	}
}

func (v *CopilotValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	switch ctx.Kind {
	case classify.CopilotScoped:
		return v.validateScoped(ctx)
	case classify.CopilotAgent:
		return v.validateAgentDoc(ctx)
	case classify.CopilotPrompt:
		return v.validatePromptDoc(ctx)
	case classify.CopilotHooks:
		return v.validateHooksJSON(ctx)
	case classify.CopilotSetupSteps:
		return v.validateSetupSteps(ctx)
	default:
		return v.validateGlobal(ctx)
	}
}

func (v *CopilotValidator) validateGlobal(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic
	if ctx.Enabled("COP-001") && strings.TrimSpace(ctx.Content) == "" {
		diags = append(diags, diag.New(ctx.Path, 1, 0, "COP-001", diag.Error,
			"Instruction file is empty").
			WithSuggestion("Add project coding guidelines or delete the file"))
	}
	if ctx.Enabled("COP-006") {
		if n := len([]rune(ctx.Content)); n > copilotGlobalLengthLimit {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "COP-006", diag.Warning,
				fmt.Sprintf("Instruction file is %d characters; Copilot may truncate files over %d characters", n, copilotGlobalLengthLimit)).
				WithSuggestion("Move detailed guidance into scoped .instructions.md files"))
		}
	}
	return diags
}

func (v *CopilotValidator) validateScoped(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic

	parsed, hasFM, err := frontend.Parse(ctx.Content)
	if !hasFM {
		if strings.TrimSpace(ctx.Content) == "" {
			if ctx.Enabled("COP-001") {
				diags = append(diags, diag.New(ctx.Path, 1, 0, "COP-001", diag.Error,
					"Instruction file is empty").
					WithSuggestion("Add frontmatter with an applyTo glob and instruction content"))
			}
		} else if ctx.Enabled("COP-002") {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "COP-002", diag.Error,
				"Scoped instruction file is missing required frontmatter").
				WithSuggestion("Add a frontmatter block with an applyTo glob, for example: ---\napplyTo: \"**/*.ts\"\n---"))
		}
		return diags
	}
	if err != nil {
		if ctx.Enabled("COP-002") {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "COP-002", diag.Error,
				fmt.Sprintf("Invalid YAML frontmatter: %v", err)).
				WithSuggestion("Fix the YAML syntax in the frontmatter block"))
		}
		return diags
	}

	if ctx.Enabled("COP-001") && strings.TrimSpace(parsed.Body) == "" {
		diags = append(diags, diag.New(ctx.Path, parsed.BodyLine, 0, "COP-001", diag.Error,
			"Instruction file has no content after frontmatter").
			WithSuggestion("Add instruction content below the frontmatter block"))
	}

	applyTo, hasApplyTo := parsed.StringField("applyTo")
	if ctx.Enabled("COP-002") && !hasApplyTo {
		diags = append(diags, diag.New(ctx.Path, parsed.StartLine, 0, "COP-002", diag.Error,
			"Frontmatter is missing required 'applyTo' field").
			WithSuggestion("Add applyTo with a glob selecting the files these instructions cover"))
	}

	if ctx.Enabled("COP-003") && hasApplyTo {
		if reason, ok := globPatternError(applyTo); ok {
			diags = append(diags, diag.New(ctx.Path, parsed.KeyLine("applyTo"), 0, "COP-003", diag.Error,
				fmt.Sprintf("Invalid glob pattern %q: %s", applyTo, reason)).
				WithSuggestion("Use doublestar glob syntax, for example \"**/*.ts\""))
		}
	}

	diags = append(diags, v.checkUnknownKeys(ctx, parsed, knownScopedInstructionKeys)...)

	if ctx.Enabled("COP-005") {
		if agent, ok := parsed.StringField("excludeAgent"); ok && !contains(validExcludeAgents, agent) {
			d := diag.New(ctx.Path, parsed.KeyLine("excludeAgent"), 0, "COP-005", diag.Error,
				fmt.Sprintf("Invalid excludeAgent value %q", agent)).
				WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(validExcludeAgents, ", ")))
			if closest, found := textutil.ClosestMatch(agent, validExcludeAgents); found {
				if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "excludeAgent"); ok {
					d = d.WithFix(diag.Fix{
						StartByte:   span.Start,
						EndByte:     span.End,
						Replacement: closest,
						Description: fmt.Sprintf("Replace with %q", closest),
						Safe:        false,
					})
				}
			}
			diags = append(diags, d)
		}
	}

	return diags
}

// checkUnknownKeys warns per unrecognized top-level frontmatter key with a
// safe line-deletion fix.
func (v *CopilotValidator) checkUnknownKeys(ctx *FileContext, parsed *frontend.Parsed, known []string) []diag.Diagnostic {
	if !ctx.Enabled("COP-004") {
		return nil
	}
	var diags []diag.Diagnostic
	for _, key := range parsed.KeyOrder {
		if contains(known, key) {
			continue
		}
		d := diag.New(ctx.Path, parsed.KeyLine(key), 0, "COP-004", diag.Warning,
			fmt.Sprintf("Unknown frontmatter key %q", key)).
			WithSuggestion(fmt.Sprintf("Remove %q or check the Copilot documentation for the supported spelling", key))
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
	return diags
}

// validateAgentDoc checks .github/agents/*.agent.md files.
func (v *CopilotValidator) validateAgentDoc(ctx *FileContext) []diag.Diagnostic {
	parsed, diags, done := v.parseDocFrontmatter(ctx, "agent")
	if done {
		return diags
	}

	if ctx.Enabled("COP-001") && strings.TrimSpace(parsed.Body) == "" {
		diags = append(diags, diag.New(ctx.Path, parsed.BodyLine, 0, "COP-001", diag.Error,
			"Agent file has no prompt content after frontmatter").
			WithSuggestion("Add the agent's system prompt below the frontmatter block"))
	}

	diags = append(diags, v.checkUnknownKeys(ctx, parsed, knownCopilotAgentKeys)...)

	if ctx.Enabled("COP-008") {
		if target, ok := parsed.Data["target"]; ok {
			if _, isString := target.(string); !isString {
				diags = append(diags, diag.New(ctx.Path, parsed.KeyLine("target"), 0, "COP-008", diag.Error,
					"Agent 'target' must be a string").
					WithSuggestion("Set target to the surface the agent runs in, for example vscode"))
			}
		}
	}

	return diags
}

// validatePromptDoc checks .github/prompts/*.prompt.md files. Frontmatter
// is optional for prompts.
func (v *CopilotValidator) validatePromptDoc(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic

	parsed, hasFM, err := frontend.Parse(ctx.Content)
	if !hasFM {
		if ctx.Enabled("COP-001") && strings.TrimSpace(ctx.Content) == "" {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "COP-001", diag.Error,
				"Prompt file is empty").
				WithSuggestion("Add the prompt text, optionally with descriptive frontmatter"))
		}
		return diags
	}
	if err != nil {
		if ctx.Enabled("COP-007") {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "COP-007", diag.Error,
				fmt.Sprintf("Invalid prompt frontmatter: %v", err)).
				WithSuggestion("Fix the YAML syntax in the frontmatter block"))
		}
		return diags
	}

	if ctx.Enabled("COP-001") && strings.TrimSpace(parsed.Body) == "" {
		diags = append(diags, diag.New(ctx.Path, parsed.BodyLine, 0, "COP-001", diag.Error,
			"Prompt file has no content after frontmatter").
			WithSuggestion("Add the prompt text below the frontmatter block"))
	}

	diags = append(diags, v.checkUnknownKeys(ctx, parsed, knownCopilotPromptKeys)...)

	if ctx.Enabled("COP-008") {
		if mode, ok := parsed.StringField("agent"); ok && !contains(validPromptAgentModes, mode) {
			d := diag.New(ctx.Path, parsed.KeyLine("agent"), 0, "COP-008", diag.Error,
				fmt.Sprintf("Invalid agent mode %q", mode)).
				WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(validPromptAgentModes, ", ")))
			if closest, found := textutil.ClosestMatch(mode, validPromptAgentModes); found {
				if span, ok := textutil.FrontmatterValueSpan(ctx.Content, "agent"); ok {
					d = d.WithFix(diag.Fix{
						StartByte:   span.Start,
						EndByte:     span.End,
						Replacement: closest,
						Description: fmt.Sprintf("Replace with %q", closest),
						Safe:        false,
					})
				}
			}
			diags = append(diags, d)
		}
	}

	return diags
}

// parseDocFrontmatter handles the shared missing/broken frontmatter cases
// for agent documents. done is true when validation cannot proceed.
func (v *CopilotValidator) parseDocFrontmatter(ctx *FileContext, label string) (*frontend.Parsed, []diag.Diagnostic, bool) {
	parsed, hasFM, err := frontend.Parse(ctx.Content)
	if !hasFM {
		var diags []diag.Diagnostic
		if ctx.Enabled("COP-007") {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "COP-007", diag.Error,
				fmt.Sprintf("Missing or unclosed frontmatter in %s file", label)).
				WithSuggestion("Open the file with a frontmatter block delimited by --- lines"))
		}
		return nil, diags, true
	}
	if err != nil {
		var diags []diag.Diagnostic
		if ctx.Enabled("COP-007") {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "COP-007", diag.Error,
				fmt.Sprintf("Invalid %s frontmatter: %v", label, err)).
				WithSuggestion("Fix the YAML syntax in the frontmatter block"))
		}
		return nil, diags, true
	}
	return parsed, nil, false
}

// copilotHook is one entry in hooks JSON, either shape.
type copilotHook struct {
	Type    json.RawMessage `json:"type"`
	Events  json.RawMessage `json:"events"`
	Command json.RawMessage `json:"command"`
}

type copilotHooksFile struct {
	Version json.RawMessage `json:"version"`
	Hooks   json.RawMessage `json:"hooks"`
}

// validateHooksJSON checks the coding-agent hooks file. Two shapes are
// accepted: a flat hook array carrying per-hook event lists, and an
// event-keyed map of hook arrays.
func (v *CopilotValidator) validateHooksJSON(ctx *FileContext) []diag.Diagnostic {
	if !ctx.Enabled("COP-009") {
		return nil
	}
	report := func(msg, suggestion string) diag.Diagnostic {
		return diag.New(ctx.Path, 1, 0, "COP-009", diag.Error, msg).WithSuggestion(suggestion)
	}

	var file copilotHooksFile
	if err := json.Unmarshal([]byte(ctx.Content), &file); err != nil {
		return []diag.Diagnostic{report(
			fmt.Sprintf("Invalid hooks JSON: %v", err),
			"Fix the JSON syntax; the file must be a single object with version and hooks fields")}
	}

	var diags []diag.Diagnostic
	var version int
	if file.Version == nil {
		diags = append(diags, report("Missing required field 'version'",
			"Add \"version\": 1 at the top level"))
	} else if err := json.Unmarshal(file.Version, &version); err != nil || version != 1 {
		diags = append(diags, report("Field 'version' must be the number 1",
			"Set \"version\": 1; no other schema versions exist"))
	}

	if file.Hooks == nil {
		diags = append(diags, report("Missing required field 'hooks'",
			"Add a hooks array or an event-keyed hooks object"))
		return diags
	}

	var hookList []copilotHook
	if err := json.Unmarshal(file.Hooks, &hookList); err == nil {
		for i, h := range hookList {
			diags = append(diags, v.checkCopilotHook(ctx, h, fmt.Sprintf("hooks[%d]", i), true)...)
		}
		return diags
	}

	var hookMap map[string][]copilotHook
	if err := json.Unmarshal(file.Hooks, &hookMap); err != nil {
		diags = append(diags, report("Field 'hooks' must be an array or an event-keyed object",
			"Use either a hook array with per-hook events or a map from event name to hook list"))
		return diags
	}
	for _, event := range sortedStringSliceMapKeys(hookMap) {
		if !contains(validCopilotHookEvents, event) {
			diags = append(diags, report(
				fmt.Sprintf("Invalid hook event %q", event),
				fmt.Sprintf("Use one of: %s", strings.Join(validCopilotHookEvents, ", "))))
			continue
		}
		for i, h := range hookMap[event] {
			diags = append(diags, v.checkCopilotHook(ctx, h, fmt.Sprintf("hooks.%s[%d]", event, i), false)...)
		}
	}
	return diags
}

func (v *CopilotValidator) checkCopilotHook(ctx *FileContext, h copilotHook, loc string, wantEvents bool) []diag.Diagnostic {
	report := func(msg, suggestion string) diag.Diagnostic {
		return diag.New(ctx.Path, 1, 0, "COP-009", diag.Error, msg).WithSuggestion(suggestion)
	}
	var diags []diag.Diagnostic

	if wantEvents {
		var events []string
		if h.Events == nil || json.Unmarshal(h.Events, &events) != nil {
			diags = append(diags, report(
				fmt.Sprintf("%s is missing the required 'events' string array", loc),
				"List the events the hook fires on"))
		} else if len(events) == 0 {
			diags = append(diags, report(
				fmt.Sprintf("%s.events must not be empty", loc),
				"List at least one event"))
		} else {
			for _, e := range events {
				if !contains(validCopilotHookEvents, e) {
					diags = append(diags, report(
						fmt.Sprintf("%s has invalid event %q", loc, e),
						fmt.Sprintf("Use one of: %s", strings.Join(validCopilotHookEvents, ", "))))
				}
			}
		}
	}

	var hookType string
	if h.Type == nil {
		diags = append(diags, report(
			fmt.Sprintf("%s is missing the required 'type' field", loc),
			"Set \"type\": \"command\""))
	} else if json.Unmarshal(h.Type, &hookType) != nil || hookType != "command" {
		diags = append(diags, report(
			fmt.Sprintf("%s.type must be the string \"command\"", loc),
			"Copilot hooks only support command execution"))
	}

	if h.Command == nil {
		diags = append(diags, report(
			fmt.Sprintf("%s is missing the required 'command' field", loc),
			"Add a command object with a bash or powershell script"))
		return diags
	}
	var cmd struct {
		Bash       *string `json:"bash"`
		Powershell *string `json:"powershell"`
	}
	if json.Unmarshal(h.Command, &cmd) != nil {
		diags = append(diags, report(
			fmt.Sprintf("%s.command must be an object", loc),
			"Use {\"bash\": \"...\"} or {\"powershell\": \"...\"}"))
		return diags
	}
	hasBash := cmd.Bash != nil && strings.TrimSpace(*cmd.Bash) != ""
	hasPowershell := cmd.Powershell != nil && strings.TrimSpace(*cmd.Powershell) != ""
	if !hasBash && !hasPowershell {
		diags = append(diags, report(
			fmt.Sprintf("%s.command must include a non-empty 'bash' or 'powershell' script", loc),
			"Add the script to run when the hook fires"))
	}
	return diags
}

// copilotWorkflow is the minimal slice of a GitHub Actions workflow the
// setup-steps check needs.
type copilotWorkflow struct {
	Jobs map[string]struct {
		RunsOn any   `yaml:"runs-on"`
		Steps  []any `yaml:"steps"`
	} `yaml:"jobs"`
}

// validateSetupSteps checks that the workflow declares a usable
// copilot-setup-steps job: present, with steps, on an ubuntu runner.
func (v *CopilotValidator) validateSetupSteps(ctx *FileContext) []diag.Diagnostic {
	if !ctx.Enabled("COP-010") {
		return nil
	}
	warn := func(msg, suggestion string) []diag.Diagnostic {
		return []diag.Diagnostic{
			diag.New(ctx.Path, 1, 0, "COP-010", diag.Warning, msg).WithSuggestion(suggestion),
		}
	}

	var wf copilotWorkflow
	if err := yaml.Unmarshal([]byte(ctx.Content), &wf); err != nil {
		return warn(fmt.Sprintf("Invalid workflow YAML: %v", frontend.HumanizeYAMLError(err)),
			"Fix the YAML syntax so the setup workflow can run")
	}
	job, ok := wf.Jobs["copilot-setup-steps"]
	if !ok {
		return warn("Workflow does not define a 'copilot-setup-steps' job",
			"The coding agent only runs setup from a job named copilot-setup-steps")
	}
	if len(job.Steps) == 0 {
		return warn("The copilot-setup-steps job has no steps",
			"Add the setup commands the coding agent should run before tasks")
	}
	if !copilotRunnerSupported(job.RunsOn) {
		return warn("The copilot-setup-steps job does not run on an ubuntu runner",
			"Use an ubuntu-* runner label; the coding agent runs on Linux")
	}
	return nil
}

// copilotRunnerSupported accepts ubuntu labels and matrix expressions.
func copilotRunnerSupported(runsOn any) bool {
	label := func(s string) bool {
		lower := strings.ToLower(s)
		return strings.Contains(lower, "ubuntu") || strings.Contains(lower, "${{")
	}
	switch val := runsOn.(type) {
	case string:
		return label(val)
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok && label(s) {
				return true
			}
		}
	}
	return false
}

// globPatternError reports why a doublestar pattern is invalid. Bare
// triple-star runs are rejected even though they tokenize, matching glob
// engines that treat them as malformed.
func globPatternError(pattern string) (string, bool) {
	if strings.TrimSpace(pattern) == "" {
		return "pattern is empty", true
	}
	if strings.Contains(pattern, "***") {
		return "'***' is not a valid wildcard", true
	}
	if !doublestar.ValidatePattern(pattern) {
		return "pattern fails to compile", true
	}
	return "", false
}

// sortedStringSliceMapKeys returns the keys of an event-keyed hook map in
// sorted order for deterministic output.
func sortedStringSliceMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
