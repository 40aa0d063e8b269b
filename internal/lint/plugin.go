package lint

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/dotcommander/agentlint/internal/cueschema"
	"github.com/dotcommander/agentlint/internal/diag"
)

// PluginValidator checks plugin.json manifests: location inside a
// .claude-plugin directory, manifest shape, and the name/description/
// version fields.
type PluginValidator struct{}

func (v *PluginValidator) Name() string { return "plugin" }

func (v *PluginValidator) Rules() []string {
	return []string{"CC-PL-001", "CC-PL-002", "CC-PL-003", "CC-PL-004", "CC-PL-005"}
}

type pluginManifest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Version     *string `json:"version"`
}

func (v *PluginValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic

	if ctx.Enabled("CC-PL-001") && !inClaudePluginDir(ctx.Path) {
		diags = append(diags, diag.New(ctx.Path, 1, 0, "CC-PL-001", diag.Warning,
			"plugin.json is outside a .claude-plugin directory").
			WithSuggestion("Move the manifest into <plugin-name>.claude-plugin/plugin.json"))
	}

	var manifest pluginManifest
	if err := json.Unmarshal([]byte(ctx.Content), &manifest); err != nil {
		if ctx.Enabled("CC-PL-002") {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "CC-PL-002", diag.Error,
				fmt.Sprintf("Invalid plugin manifest JSON: %v", err)).
				WithSuggestion("Fix the JSON syntax before other checks can run"))
		}
		return diags
	}

	if ctx.Enabled("CC-PL-002") {
		for _, issue := range cueschema.ValidatePlugin([]byte(ctx.Content)) {
			msg := issue.Message
			if issue.Path != "" {
				msg = fmt.Sprintf("%s: %s", issue.Path, issue.Message)
			}
			diags = append(diags, diag.New(ctx.Path, 1, 0, "CC-PL-002", diag.Error,
				fmt.Sprintf("Plugin manifest schema violation: %s", msg)))
		}
	}

	if ctx.Enabled("CC-PL-003") {
		if manifest.Name == nil || strings.TrimSpace(*manifest.Name) == "" {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "CC-PL-003", diag.Error,
				"Plugin name is required and cannot be empty").
				WithSuggestion("Add a non-empty \"name\" field"))
		}
	}

	if ctx.Enabled("CC-PL-004") {
		if manifest.Description == nil || strings.TrimSpace(*manifest.Description) == "" {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "CC-PL-004", diag.Warning,
				"Plugin manifest has no description").
				WithSuggestion("Add a \"description\" so marketplaces and users can tell what the plugin does"))
		}
	}

	if ctx.Enabled("CC-PL-005") && manifest.Version != nil {
		version := strings.TrimSpace(*manifest.Version)
		if version != "" && !isValidPluginVersion(version) {
			diags = append(diags, diag.New(ctx.Path, 1, 0, "CC-PL-005", diag.Error,
				fmt.Sprintf("Invalid semver format '%s'", version)).
				WithSuggestion("Use MAJOR.MINOR.PATCH, for example 1.0.0"))
		}
	}

	return diags
}

// inClaudePluginDir accepts both bare `.claude-plugin/` and the
// `<name>.claude-plugin/` marketplace layout.
func inClaudePluginDir(p string) bool {
	parent := path.Base(path.Dir(slashPath(p)))
	return parent == ".claude-plugin" || strings.HasSuffix(parent, ".claude-plugin")
}

// isValidPluginVersion requires full MAJOR.MINOR.PATCH; the semver
// package's canonical check rejects shorthand like "1.0".
func isValidPluginVersion(version string) bool {
	if strings.HasPrefix(version, "v") {
		return false
	}
	v := "v" + version
	return semver.IsValid(v) && semver.Canonical(v) != "" && strings.Count(version, ".") >= 2
}
