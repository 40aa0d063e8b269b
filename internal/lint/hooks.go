package lint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/textutil"
)

// Hook event names are case-sensitive.
var validHookEvents = []string{
	"PreToolUse",
	"PermissionRequest",
	"PostToolUse",
	"PostToolUseFailure",
	"Notification",
	"UserPromptSubmit",
	"Stop",
	"SubagentStart",
	"SubagentStop",
	"PreCompact",
	"Setup",
	"SessionStart",
	"SessionEnd",
	"TeammateIdle",
	"TaskCompleted",
}

// toolHookEvents take a matcher selecting which tools they fire for.
var toolHookEvents = []string{
	"PreToolUse", "PermissionRequest", "PostToolUse", "PostToolUseFailure",
}

// promptHookEvents are the only events that run prompt hooks.
var promptHookEvents = []string{"Stop", "SubagentStop"}

// matcherIgnoredEvents accept a matcher but silently ignore it.
var matcherIgnoredEvents = []string{"UserPromptSubmit", "Stop"}

var validHookTypes = []string{"command", "prompt", "agent"}

// Defaults from the official hook documentation.
const (
	commandHookDefaultTimeout = 600
	promptHookDefaultTimeout  = 30
)

type dangerousPattern struct {
	re     *regexp.Regexp
	text   string
	reason string
}

func mustDangerous(pattern, reason string) dangerousPattern {
	return dangerousPattern{re: regexp.MustCompile("(?i)" + pattern), text: pattern, reason: reason}
}

var dangerousCommandPatterns = []dangerousPattern{
	mustDangerous(`rm\s+-rf\s+/`, "Recursive delete from root is extremely dangerous"),
	mustDangerous(`rm\s+-rf\s+\*`, "Recursive delete with wildcard could delete unintended files"),
	mustDangerous(`rm\s+-rf\s+\.\.`, "Recursive delete of parent directories is dangerous"),
	mustDangerous(`git\s+reset\s+--hard`, "Hard reset discards uncommitted changes permanently"),
	mustDangerous(`git\s+clean\s+-fd`, "Git clean -fd removes untracked files permanently"),
	mustDangerous(`git\s+push\s+.*--force`, "Force push can overwrite remote history"),
	mustDangerous(`drop\s+database`, "Dropping database is irreversible"),
	mustDangerous(`drop\s+table`, "Dropping table is irreversible"),
	mustDangerous(`truncate\s+table`, "Truncating table deletes all data"),
	mustDangerous(`curl\s+.*\|\s*sh`, "Piping curl to shell is a security risk"),
	mustDangerous(`curl\s+.*\|\s*bash`, "Piping curl to bash is a security risk"),
	mustDangerous(`wget\s+.*\|\s*sh`, "Piping wget to shell is a security risk"),
	mustDangerous(`chmod\s+777`, "chmod 777 gives everyone full access"),
	mustDangerous(`>\s*/dev/sd[a-z]`, "Writing directly to block devices can destroy data"),
	mustDangerous(`mkfs\.`, "Formatting filesystem destroys all data"),
	mustDangerous(`dd\s+if=.*of=/dev/`, "dd to device can destroy data"),
	mustDangerous(`\|\|\s*true\s*$`, "Error suppression with '|| true' silently hides hook failures"),
	mustDangerous(`2>\s*/dev/null`, "Redirecting stderr to /dev/null hides error messages"),
}

var scriptPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`["']?([^\s"']+\.sh)["']?\b`),
	regexp.MustCompile(`["']?([^\s"']+\.bash)["']?\b`),
	regexp.MustCompile(`["']?([^\s"']+\.py)["']?\b`),
	regexp.MustCompile(`["']?([^\s"']+\.js)["']?\b`),
	regexp.MustCompile(`["']?([^\s"']+\.ts)["']?\b`),
}

// hookEntry is one hook object parsed leniently so that shape errors can be
// reported field by field instead of failing the whole file.
type hookEntry struct {
	raw map[string]json.RawMessage
}

func (h hookEntry) has(field string) bool {
	_, ok := h.raw[field]
	return ok
}

func (h hookEntry) str(field string) (string, bool) {
	rawVal, ok := h.raw[field]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(rawVal, &s); err != nil {
		return "", false
	}
	return s, true
}

// timeout returns (seconds, present, valid). Valid timeouts are positive
// integers; floats, strings, zero, and negatives are all invalid.
func (h hookEntry) timeout() (int64, bool, bool) {
	rawVal, ok := h.raw["timeout"]
	if !ok {
		return 0, false, true
	}
	dec := json.NewDecoder(bytes.NewReader(rawVal))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return 0, true, false
	}
	if strings.ContainsAny(num.String(), ".eE") {
		return 0, true, false
	}
	n, err := num.Int64()
	if err != nil || n <= 0 {
		return 0, true, false
	}
	return n, true, true
}

type hookMatcher struct {
	Matcher *string           `json:"matcher"`
	Hooks   []json.RawMessage `json:"hooks"`
}

type hooksDocument struct {
	Hooks map[string][]hookMatcher `json:"hooks"`
}

// HooksValidator checks hooks blocks in settings.json and standalone
// hooks.json files: event names, matcher placement, hook shapes, timeout
// policy, and dangerous command patterns.
type HooksValidator struct{}

func (*HooksValidator) Name() string { return "hooks" }

func (*HooksValidator) Rules() []string {
	return []string{
		"CC-HK-001", "CC-HK-002", "CC-HK-003", "CC-HK-004", "CC-HK-005",
		"CC-HK-006", "CC-HK-007", "CC-HK-008", "CC-HK-009", "CC-HK-010",
		"CC-HK-011", "CC-HK-012", "CC-HK-013", "CC-HK-014", "CC-HK-016",
		"CC-HK-018",
	}
}

func (v *HooksValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var out []diag.Diagnostic

	var doc hooksDocument
	if err := json.Unmarshal([]byte(ctx.Content), &doc); err != nil {
		if ctx.Enabled("CC-HK-012") {
			out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-012", diag.Error,
				fmt.Sprintf("Invalid JSON in hooks configuration: %v", err)))
		}
		return out
	}

	// Hooks missing a type cannot be classified, so stop after reporting.
	if ctx.Enabled("CC-HK-005") {
		missing := v.checkMissingType(ctx, doc)
		if len(missing) > 0 {
			return append(out, missing...)
		}
	}

	events := make([]string, 0, len(doc.Hooks))
	for event := range doc.Hooks {
		events = append(events, event)
	}
	sort.Strings(events)

	projectDir := hooksProjectDir(ctx)

	for _, event := range events {
		if !contains(validHookEvents, event) {
			if ctx.Enabled("CC-HK-001") {
				out = append(out, v.invalidEvent(ctx, event))
			}
			continue
		}

		for matcherIdx, matcher := range doc.Hooks[event] {
			out = append(out, v.checkMatcher(ctx, event, matcher, matcherIdx)...)

			for hookIdx, rawHook := range matcher.Hooks {
				entry := hookEntry{}
				if err := json.Unmarshal(rawHook, &entry.raw); err != nil {
					continue
				}
				loc := hookLocation(event, matcher.Matcher, matcherIdx, hookIdx)
				out = append(out, v.checkHook(ctx, event, entry, loc, projectDir)...)
			}
		}
	}

	return out
}

func (v *HooksValidator) checkMissingType(ctx *FileContext, doc hooksDocument) []diag.Diagnostic {
	var out []diag.Diagnostic
	events := make([]string, 0, len(doc.Hooks))
	for event := range doc.Hooks {
		events = append(events, event)
	}
	sort.Strings(events)
	for _, event := range events {
		for matcherIdx, matcher := range doc.Hooks[event] {
			for hookIdx, rawHook := range matcher.Hooks {
				entry := hookEntry{}
				if err := json.Unmarshal(rawHook, &entry.raw); err != nil {
					continue
				}
				if !entry.has("type") {
					out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-005", diag.Error,
						fmt.Sprintf("Hook at hooks.%s[%d].hooks[%d] is missing the required 'type' field",
							event, matcherIdx, hookIdx)).
						WithSuggestion("Add \"type\": \"command\" or \"type\": \"prompt\""))
				}
			}
		}
	}
	return out
}

func (v *HooksValidator) invalidEvent(ctx *FileContext, event string) diag.Diagnostic {
	d := diag.New(ctx.Path, 1, 0, "CC-HK-001", diag.Error,
		fmt.Sprintf("Unknown hook event '%s', valid events: %s",
			event, strings.Join(validHookEvents, ", ")))

	corrected, caseOnly := closestHookEvent(event)
	if corrected == "" {
		return d.WithSuggestion("Valid events are: " + strings.Join(validHookEvents, ", "))
	}
	if caseOnly {
		d = d.WithSuggestion(fmt.Sprintf("Did you mean '%s'? Event names are case-sensitive.", corrected))
	} else {
		d = d.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", corrected))
	}
	if span, ok := textutil.JSONKeySpan(ctx.Content, event); ok {
		d = d.WithFix(diag.Fix{
			StartByte:   span.Start,
			EndByte:     span.End,
			Replacement: fmt.Sprintf("%q", corrected),
			Description: fmt.Sprintf("Rename event '%s' to '%s'", event, corrected),
			Safe:        caseOnly,
		})
	}
	return d
}

// closestHookEvent returns the best replacement for an invalid event name.
// A case-insensitive exact match is high confidence; substring overlap is a
// guess.
func closestHookEvent(event string) (corrected string, caseOnly bool) {
	lower := strings.ToLower(event)
	for _, valid := range validHookEvents {
		if strings.ToLower(valid) == lower {
			return valid, true
		}
	}
	for _, valid := range validHookEvents {
		vl := strings.ToLower(valid)
		if strings.Contains(vl, lower) || strings.Contains(lower, vl) {
			return valid, false
		}
	}
	return "", false
}

func (v *HooksValidator) checkMatcher(ctx *FileContext, event string, matcher hookMatcher, matcherIdx int) []diag.Diagnostic {
	var out []diag.Diagnostic
	isTool := contains(toolHookEvents, event)

	// Omitting the matcher on tool events is legal and means "all tools";
	// surface it as a hint only.
	if ctx.Enabled("CC-HK-003") && isTool && matcher.Matcher == nil {
		out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-003", diag.Info,
			fmt.Sprintf("Hook at hooks.%s[%d] has no matcher and will fire for every tool", event, matcherIdx)).
			WithSuggestion("Add a matcher to scope the hook to specific tools"))
	}

	if matcher.Matcher != nil && !isTool {
		if contains(matcherIgnoredEvents, event) {
			if ctx.Enabled("CC-HK-018") {
				out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-018", diag.Info,
					fmt.Sprintf("Matcher on hooks.%s[%d] is ignored for this event", event, matcherIdx)).
					WithSuggestion("Remove the matcher; it has no effect here"))
			}
		} else if ctx.Enabled("CC-HK-004") {
			d := diag.New(ctx.Path, 1, 0, "CC-HK-004", diag.Error,
				fmt.Sprintf("Event '%s' does not support matchers (hooks.%s[%d])", event, event, matcherIdx)).
				WithSuggestion("Matchers only apply to tool events")
			if span, ok := uniqueMatcherLineSpan(ctx.Content, *matcher.Matcher); ok {
				d = d.WithFix(diag.Fix{
					StartByte:   span.Start,
					EndByte:     span.End,
					Description: "Remove matcher from non-tool event",
					Safe:        true,
				})
			}
			out = append(out, d)
		}
	}

	return out
}

func (v *HooksValidator) checkHook(ctx *FileContext, event string, entry hookEntry, loc, projectDir string) []diag.Diagnostic {
	var out []diag.Diagnostic

	hookType, typeIsString := entry.str("type")
	if !typeIsString || !contains(validHookTypes, hookType) {
		if ctx.Enabled("CC-HK-016") {
			display := hookType
			if !typeIsString {
				display = strings.TrimSpace(string(entry.raw["type"]))
			}
			d := diag.New(ctx.Path, 1, 0, "CC-HK-016", diag.Error,
				fmt.Sprintf("Unknown hook type '%s' at %s", display, loc)).
				WithSuggestion("Valid hook types: " + strings.Join(validHookTypes, ", "))
			if typeIsString {
				if match, ok := textutil.ClosestMatch(hookType, validHookTypes); ok {
					if span, ok := textutil.JSONStringValueSpan(ctx.Content, "type", hookType); ok {
						d = d.WithFix(diag.Fix{
							StartByte: span.Start, EndByte: span.End, Replacement: `"` + match + `"`,
							Description: fmt.Sprintf("Change hook type to '%s'", match), Safe: false,
						})
					}
				}
			}
			out = append(out, d)
		}
		return out
	}

	if ctx.Enabled("CC-HK-011") {
		if _, present, valid := entry.timeout(); present && !valid {
			d := diag.New(ctx.Path, 1, 0, "CC-HK-011", diag.Error,
				fmt.Sprintf("Invalid timeout at %s, must be a positive integer number of seconds", loc)).
				WithSuggestion("Use a positive integer timeout in seconds")
			if rawVal, ok := entry.raw["timeout"]; ok {
				if span, found := uniqueJSONKeyValueSpan(ctx.Content, "timeout", string(rawVal)); found {
					d = d.WithFix(diag.Fix{
						StartByte: span.Start, EndByte: span.End, Replacement: "30",
						Description: "Set timeout to 30 seconds", Safe: false,
					})
				}
			}
			out = append(out, d)
		}
	}

	// Only command hooks run asynchronously.
	if ctx.Enabled("CC-HK-013") && entry.has("async") && hookType != "command" {
		d := diag.New(ctx.Path, 1, 0, "CC-HK-013", diag.Error,
			fmt.Sprintf("'async' is not supported on %s hooks (%s)", hookType, loc)).
			WithSuggestion("Remove the async field or use a command hook")
		if span, ok := textutil.JSONFieldLineSpan(ctx.Content, "async"); ok {
			d = d.WithFix(diag.Fix{
				StartByte: span.Start, EndByte: span.End,
				Description: "Remove unsupported async field", Safe: true,
			})
		}
		out = append(out, d)
	}

	if ctx.Enabled("CC-HK-014") && entry.has("once") {
		out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-014", diag.Warning,
			fmt.Sprintf("'once' only applies to hooks declared in skill or agent frontmatter (%s)", loc)).
			WithSuggestion("Remove the once field from settings-level hooks"))
	}

	switch hookType {
	case "command":
		out = append(out, v.checkCommandHook(ctx, entry, loc, projectDir)...)
	case "prompt", "agent":
		out = append(out, v.checkPromptHook(ctx, event, entry, loc)...)
	}

	return out
}

func (v *HooksValidator) checkCommandHook(ctx *FileContext, entry hookEntry, loc, projectDir string) []diag.Diagnostic {
	var out []diag.Diagnostic

	if ctx.Enabled("CC-HK-010") {
		out = append(out, v.checkTimeoutPolicy(ctx, entry, loc, commandHookDefaultTimeout, "command")...)
	}

	command, hasCommand := entry.str("command")
	if ctx.Enabled("CC-HK-006") && !hasCommand {
		out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-006", diag.Error,
			fmt.Sprintf("Command hook at %s is missing required 'command' field", loc)).
			WithSuggestion("Add a command string to run"))
	}
	if !hasCommand {
		return out
	}

	if ctx.Enabled("CC-HK-008") {
		for _, script := range extractScriptPaths(command) {
			if hasUnresolvedEnvVars(script) {
				continue
			}
			resolved := resolveScriptPath(script, projectDir)
			if !ctx.Cfg.FS.Exists(resolved) {
				out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-008", diag.Error,
					fmt.Sprintf("Script '%s' not found (resolved to %s)", script, resolved)).
					WithSuggestion("Create the script or fix the path in the hook command"))
			}
		}
	}

	if ctx.Enabled("CC-HK-009") {
		if pattern, reason := matchDangerousCommand(command); pattern != "" {
			out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-009", diag.Warning,
				fmt.Sprintf("Hook command matches a dangerous pattern: %s", reason)).
				WithSuggestion(fmt.Sprintf("Review the command matching '%s' before keeping it in a hook", pattern)))
		}
	}

	return out
}

func (v *HooksValidator) checkPromptHook(ctx *FileContext, event string, entry hookEntry, loc string) []diag.Diagnostic {
	var out []diag.Diagnostic

	if ctx.Enabled("CC-HK-010") {
		out = append(out, v.checkTimeoutPolicy(ctx, entry, loc, promptHookDefaultTimeout, "prompt")...)
	}

	if ctx.Enabled("CC-HK-002") && !contains(promptHookEvents, event) {
		out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-002", diag.Error,
			fmt.Sprintf("Prompt hook at %s is not supported on event '%s'", loc, event)).
			WithSuggestion("Prompt hooks only run on: "+strings.Join(promptHookEvents, ", ")))
	}

	if _, hasPrompt := entry.str("prompt"); ctx.Enabled("CC-HK-007") && !hasPrompt {
		out = append(out, diag.New(ctx.Path, 1, 0, "CC-HK-007", diag.Error,
			fmt.Sprintf("Prompt hook at %s is missing required 'prompt' field", loc)).
			WithSuggestion("Add the prompt text to evaluate"))
	}

	return out
}

// checkTimeoutPolicy warns when a hook has no explicit timeout or exceeds
// the documented default for its type. Behavior may drift across releases,
// so unpinned configs get an assumption note.
func (v *HooksValidator) checkTimeoutPolicy(ctx *FileContext, entry hookEntry, loc string, defaultTimeout int64, kind string) []diag.Diagnostic {
	var out []diag.Diagnostic
	pinned := ctx.Cfg.ToolVersions["claude-code"] != ""
	assumption := "Assuming current claude-code hook timeout defaults; pin tool_versions.claude-code to silence this note"

	seconds, present, valid := entry.timeout()
	if !present {
		d := diag.New(ctx.Path, 1, 0, "CC-HK-010", diag.Warning,
			fmt.Sprintf("Hook at %s has no timeout and defaults to %ds", loc, defaultTimeout)).
			WithSuggestion("Set an explicit timeout so slow hooks fail fast")
		if !pinned {
			d = d.WithAssumption(assumption)
		}
		return append(out, d)
	}
	if valid && seconds > defaultTimeout {
		d := diag.New(ctx.Path, 1, 0, "CC-HK-010", diag.Warning,
			fmt.Sprintf("Hook at %s sets timeout %ds above the %s hook default of %ds",
				loc, seconds, kind, defaultTimeout)).
			WithSuggestion(fmt.Sprintf("Keep %s hook timeouts at or below %ds", kind, defaultTimeout))
		if !pinned {
			d = d.WithAssumption(assumption)
		}
		out = append(out, d)
	}
	return out
}

func hookLocation(event string, matcher *string, matcherIdx, hookIdx int) string {
	sel := fmt.Sprintf("[%d]", matcherIdx)
	if matcher != nil {
		sel = fmt.Sprintf("[matcher=%s]", *matcher)
	}
	return fmt.Sprintf("hooks.%s%s.hooks[%d]", event, sel, hookIdx)
}

// hooksProjectDir resolves the root against which relative hook script
// paths are interpreted: the directory containing .claude, or the file's
// own directory.
func hooksProjectDir(ctx *FileContext) string {
	dir := filepath.Dir(ctx.AbsPath)
	if dir == "" || dir == "." {
		dir = filepath.Dir(ctx.Path)
	}
	if filepath.Base(dir) == ".claude" {
		return filepath.Dir(dir)
	}
	return dir
}

func matchDangerousCommand(command string) (pattern, reason string) {
	for _, dp := range dangerousCommandPatterns {
		if dp.re.MatchString(command) {
			return dp.text, dp.reason
		}
	}
	return "", ""
}

// extractScriptPaths pulls candidate script file paths out of a shell
// command, skipping URLs, regex fragments, and glob patterns that merely
// end in a script extension.
func extractScriptPaths(command string) []string {
	var paths []string
	for _, re := range scriptPathPatterns {
		for _, m := range re.FindAllStringSubmatch(command, -1) {
			p := strings.Trim(m[1], `"'`)
			if strings.Contains(p, "://") || strings.HasPrefix(p, "http") {
				continue
			}
			if strings.HasPrefix(p, `\`) || strings.HasPrefix(p, "[") ||
				strings.HasPrefix(p, "*") || strings.HasPrefix(p, "(") ||
				strings.Contains(p, "]*") {
				continue
			}
			paths = append(paths, p)
		}
	}
	return paths
}

func resolveScriptPath(script, projectDir string) string {
	resolved := strings.ReplaceAll(script, "$CLAUDE_PROJECT_DIR", projectDir)
	resolved = strings.ReplaceAll(resolved, "${CLAUDE_PROJECT_DIR}", projectDir)
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(projectDir, resolved)
	}
	return filepath.Clean(resolved)
}

// hasUnresolvedEnvVars reports whether a path still references environment
// variables other than CLAUDE_PROJECT_DIR, which cannot be resolved
// statically.
func hasUnresolvedEnvVars(path string) bool {
	stripped := strings.ReplaceAll(path, "$CLAUDE_PROJECT_DIR", "")
	stripped = strings.ReplaceAll(stripped, "${CLAUDE_PROJECT_DIR}", "")
	return strings.Contains(stripped, "$")
}

// uniqueMatcherLineSpan locates the single line holding a matcher with the
// given value, including the trailing newline. Ambiguity yields no span.
func uniqueMatcherLineSpan(content, matcherValue string) (textutil.Span, bool) {
	re := regexp.MustCompile(`(?m)^[ \t]*"matcher"[ \t]*:[ \t]*"` +
		regexp.QuoteMeta(matcherValue) + `"[ \t]*,?[ \t]*\n?`)
	matches := re.FindAllStringIndex(content, -1)
	if len(matches) != 1 {
		return textutil.Span{}, false
	}
	return textutil.Span{Start: matches[0][0], End: matches[0][1]}, true
}

// uniqueJSONKeyValueSpan finds the value span of `"key": value` when the
// exact pair occurs exactly once.
func uniqueJSONKeyValueSpan(content, key, serializedValue string) (textutil.Span, bool) {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"[ \t]*:[ \t]*(` +
		regexp.QuoteMeta(serializedValue) + `)`)
	matches := re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) != 1 {
		return textutil.Span{}, false
	}
	return textutil.Span{Start: matches[0][2], End: matches[0][3]}, true
}
