package lint

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/textutil"
)

var validApprovalModes = []string{"suggest", "auto-edit", "full-auto"}

var validFullAutoErrorModes = []string{"ask-user", "ignore-and-continue"}

// Top-level keys Codex CLI reads from .codex/config.toml. Anything else
// gets a CDX-004 warning.
var knownCodexKeys = []string{
	"model",
	"provider",
	"providers",
	"approvalMode",
	"fullAutoErrorMode",
	"notify",
	"history",
	"project_doc_max_bytes",
	"mcp_servers",
	"sandbox_permissions",
	"disable_response_storage",
	"flex_mode",
}

const maxProjectDocBytes = 65536

// CodexValidator checks .codex/config.toml and flags AGENTS.override.md
// files that have been committed instead of ignored.
type CodexValidator struct{}

func (v *CodexValidator) Name() string { return "codex" }

func (v *CodexValidator) Rules() []string {
	return []string{"CDX-000", "CDX-001", "CDX-002", "CDX-003", "CDX-004", "CDX-005"}
}

func (v *CodexValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	if strings.HasSuffix(ctx.Path, ".md") {
		return v.validateOverrideFile(ctx)
	}
	return v.validateConfig(ctx)
}

// validateOverrideFile handles the markdown side: AGENTS.override.md holds
// personal overrides and belongs in .gitignore, not version control.
func (v *CodexValidator) validateOverrideFile(ctx *FileContext) []diag.Diagnostic {
	if !ctx.Enabled("CDX-003") || path.Base(slashPath(ctx.Path)) != "AGENTS.override.md" {
		return nil
	}
	d := diag.New(ctx.Path, 1, 0, "CDX-003", diag.Warning,
		"AGENTS.override.md appears to be tracked in version control").
		WithSuggestion("Add AGENTS.override.md to .gitignore; override files carry per-developer settings")
	return []diag.Diagnostic{d}
}

// slashPath normalizes separators so path.Base works on Windows-style input.
func slashPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func (v *CodexValidator) validateConfig(ctx *FileContext) []diag.Diagnostic {
	enabled001 := ctx.Enabled("CDX-001")
	enabled002 := ctx.Enabled("CDX-002")
	enabled004 := ctx.Enabled("CDX-004")
	enabled005 := ctx.Enabled("CDX-005")
	if !enabled001 && !enabled002 && !enabled004 && !enabled005 {
		return nil
	}

	var table map[string]any
	if err := toml.Unmarshal([]byte(ctx.Content), &table); err != nil {
		if !ctx.Enabled("CDX-000") {
			return nil
		}
		line, col := 1, 0
		msg := err.Error()
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			line, col = decodeErr.Position()
			msg = decodeErr.Error()
		}
		d := diag.New(ctx.Path, line, col, "CDX-000", diag.Error,
			fmt.Sprintf("Invalid TOML syntax: %s", msg)).
			WithSuggestion("Fix the TOML syntax; Codex CLI ignores the whole file when it fails to parse")
		return []diag.Diagnostic{d}
	}

	var diags []diag.Diagnostic
	keyLines := tomlKeyLines(ctx.Content)

	lineOf := func(key string) int {
		if line, ok := keyLines[key]; ok {
			return line
		}
		return 1
	}

	if enabled004 {
		var unknown []string
		for key := range table {
			if !contains(knownCodexKeys, key) {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			diags = append(diags, diag.New(ctx.Path, lineOf(key), 0, "CDX-004", diag.Warning,
				fmt.Sprintf("Unknown configuration key %q", key)).
				WithSuggestion("Remove the key or check the Codex CLI documentation for the supported spelling"))
		}
	}

	if enabled001 {
		diags = append(diags, v.checkEnumKey(ctx, table, keyLines,
			"CDX-001", "approvalMode", validApprovalModes)...)
	}
	if enabled002 {
		diags = append(diags, v.checkEnumKey(ctx, table, keyLines,
			"CDX-002", "fullAutoErrorMode", validFullAutoErrorModes)...)
	}

	if enabled005 {
		if raw, ok := table["project_doc_max_bytes"]; ok {
			line := lineOf("project_doc_max_bytes")
			if value, isInt := tomlInt(raw); !isInt {
				diags = append(diags, diag.New(ctx.Path, line, 0, "CDX-005", diag.Error,
					"project_doc_max_bytes must be an integer").
					WithSuggestion(fmt.Sprintf("Set project_doc_max_bytes to an integer no larger than %d", maxProjectDocBytes)))
			} else if value > maxProjectDocBytes {
				diags = append(diags, diag.New(ctx.Path, line, 0, "CDX-005", diag.Error,
					fmt.Sprintf("project_doc_max_bytes is %d, which exceeds the %d byte limit", value, maxProjectDocBytes)).
					WithSuggestion(fmt.Sprintf("Lower project_doc_max_bytes to %d or less", maxProjectDocBytes)))
			}
		}
	}

	return diags
}

// checkEnumKey validates a string-enum key. A present key with a non-string
// value is a type error; an unrecognized string gets an unsafe closest-match
// fix when the value can be located in the source.
func (v *CodexValidator) checkEnumKey(ctx *FileContext, table map[string]any, keyLines map[string]int, rule, key string, valid []string) []diag.Diagnostic {
	raw, ok := table[key]
	if !ok {
		return nil
	}
	line := keyLines[key]
	if line == 0 {
		line = 1
	}
	suggestion := fmt.Sprintf("Use one of: %s", strings.Join(valid, ", "))

	value, isString := raw.(string)
	if !isString {
		return []diag.Diagnostic{
			diag.New(ctx.Path, line, 0, rule, diag.Error,
				fmt.Sprintf("%s must be a string", key)).
				WithSuggestion(suggestion),
		}
	}
	if contains(valid, value) {
		return nil
	}

	d := diag.New(ctx.Path, line, 0, rule, diag.Error,
		fmt.Sprintf("Invalid %s %q", key, value)).
		WithSuggestion(suggestion)
	if closest, ok := textutil.ClosestMatch(value, valid); ok {
		if span, found := textutil.TOMLStringValueSpan(ctx.Content, key, value); found {
			d = d.WithFix(diag.Fix{
				StartByte:   span.Start,
				EndByte:     span.End,
				Replacement: `"` + closest + `"`,
				Description: fmt.Sprintf("Replace with %q", closest),
				Safe:        false,
			})
		}
	}
	return []diag.Diagnostic{d}
}

// tomlKeyLines maps top-level key names to 1-based line numbers, first
// occurrence wins. Handles bare and quoted keys.
func tomlKeyLines(content string) map[string]int {
	lines := strings.Split(content, "\n")
	out := make(map[string]int)
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		eq := strings.Index(trimmed, "=")
		if eq < 0 {
			continue
		}
		key := strings.TrimRight(trimmed[:eq], " \t")
		if len(key) >= 2 && strings.HasPrefix(key, `"`) && strings.HasSuffix(key, `"`) {
			key = key[1 : len(key)-1]
		}
		if key == "" {
			continue
		}
		if _, seen := out[key]; !seen {
			out[key] = i + 1
		}
	}
	return out
}

// tomlInt reports whether a decoded TOML value is an integer and returns it.
func tomlInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
