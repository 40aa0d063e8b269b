package lint

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/frontend"
)

// skillClient identifies which assistant owns a skills/ tree, derived from
// the marker directory above it (.claude, .cursor, .github, ...).
type skillClient struct {
	Marker string
	Label  string
	Rule   string
	// Extra frontmatter fields this client supports beyond the universal set.
	Extra []string
}

var skillClients = []skillClient{
	{Marker: ".cursor", Label: "Cursor", Rule: "CR-SK-001", Extra: []string{"disable-model-invocation"}},
	{Marker: ".cline", Label: "Cline", Rule: "CL-SK-001"},
	{Marker: ".github", Label: "GitHub Copilot", Rule: "CP-SK-001"},
	{Marker: ".agents", Label: "Codex", Rule: "CX-SK-001"},
	{Marker: ".opencode", Label: "OpenCode", Rule: "OC-SK-001"},
	{Marker: ".windsurf", Label: "Windsurf", Rule: "WS-SK-001"},
	{Marker: ".kiro", Label: "Kiro", Rule: "KR-SK-001"},
	{Marker: ".roo", Label: "Roo Code", Rule: "RC-SK-001"},
}

// universalSkillFields are recognized by every client that reads SKILL.md.
var universalSkillFields = []string{
	"name", "description", "license", "compatibility", "metadata", "allowed-tools",
}

// detectSkillClient walks up from the skills/ component looking for a client
// marker directory. Claude Code supports every field, so it maps to nil.
func detectSkillClient(path string) *skillClient {
	norm := filepath.ToSlash(path)
	parts := strings.Split(norm, "/")
	skillsIdx := -1
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == "skills" {
			skillsIdx = i
			break
		}
	}
	if skillsIdx <= 0 {
		return nil
	}
	for i := skillsIdx - 1; i >= 0; i-- {
		if parts[i] == ".claude" {
			return nil
		}
		for j := range skillClients {
			if parts[i] == skillClients[j].Marker {
				return &skillClients[j]
			}
		}
	}
	return nil
}

// checkPerClientFields warns about frontmatter fields the owning client
// silently ignores.
func (v *SkillValidator) checkPerClientFields(ctx *FileContext, p *frontend.Parsed) []diag.Diagnostic {
	client := detectSkillClient(ctx.Path)
	if client == nil || !ctx.Enabled(client.Rule) {
		return nil
	}
	var out []diag.Diagnostic
	for _, key := range p.KeyOrder {
		if contains(universalSkillFields, key) || contains(client.Extra, key) {
			continue
		}
		out = append(out, diag.New(ctx.Path, p.KeyLine(key), 0, client.Rule, diag.Warning,
			fmt.Sprintf("Field '%s' is not supported by %s and will be ignored", key, client.Label)).
			WithSuggestion(fmt.Sprintf("Remove '%s' or move this skill under .claude/skills/", key)))
	}
	return out
}

// directorySizeUntil sums file sizes under dir, stopping as soon as the
// running total passes limit.
func directorySizeUntil(ctx *FileContext, dir string, limit int64) int64 {
	var total int64
	afero.Walk(ctx.Cfg.FS, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		total += info.Size()
		if total > limit {
			return filepath.SkipAll
		}
		return nil
	})
	return total
}
