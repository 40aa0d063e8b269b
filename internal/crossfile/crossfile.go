// Package crossfile runs the project-level checks that need to see every
// instruction file at once: duplicate AGENTS.md hierarchies, contradictory
// build commands or tool constraints across instruction layers, missing
// precedence documentation, and unpinned tool versions.
package crossfile

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dotcommander/agentlint/internal/classify"
	"github.com/dotcommander/agentlint/internal/config"
	"github.com/dotcommander/agentlint/internal/diag"
)

// IsInstructionFile reports whether a kind participates in the cross-layer
// contradiction checks (XP-004, XP-005, XP-006).
func IsInstructionFile(kind classify.FileKind) bool {
	switch kind {
	case classify.InstructionMemory, classify.AgentsMd, classify.GeminiMemory,
		classify.CopilotGlobal, classify.CopilotScoped,
		classify.CursorRule, classify.CursorRulesLegacy:
		return true
	}
	return false
}

// Run executes every project-level check. Paths are repository-relative;
// reads go through the config's filesystem handle rooted at root. Callers
// get diagnostics in input order; final ordering is the driver's job.
func Run(cfg *config.Config, root string, agentsMdPaths, instructionPaths []string) []diag.Diagnostic {
	agents := append([]string(nil), agentsMdPaths...)
	instr := append([]string(nil), instructionPaths...)
	sort.Strings(agents)
	sort.Strings(instr)

	var diags []diag.Diagnostic
	diags = append(diags, checkAgentsMdHierarchy(cfg, agents)...)
	diags = append(diags, checkLayerConflicts(cfg, root, instr)...)
	diags = append(diags, checkVersionPinning(cfg, root)...)
	return diags
}

// checkAgentsMdHierarchy emits AGM-006 on every AGENTS.md when more than one
// exists. A file nested under another AGENTS.md gets the parent list; peers
// get the full sibling list.
func checkAgentsMdHierarchy(cfg *config.Config, agentsMdPaths []string) []diag.Diagnostic {
	if !cfg.IsRuleEnabled("AGM-006") || len(agentsMdPaths) < 2 {
		return nil
	}

	var diags []diag.Diagnostic
	for _, file := range agentsMdPaths {
		parents := parentAgentsFiles(file, agentsMdPaths)
		var msg string
		if len(parents) > 0 {
			msg = fmt.Sprintf("Nested AGENTS.md detected - parent AGENTS.md files exist at: %s",
				strings.Join(parents, ", "))
		} else {
			others := make([]string, 0, len(agentsMdPaths)-1)
			for _, p := range agentsMdPaths {
				if p != file {
					others = append(others, p)
				}
			}
			msg = fmt.Sprintf("Multiple AGENTS.md files detected - other AGENTS.md files exist at: %s",
				strings.Join(others, ", "))
		}
		diags = append(diags, diag.New(file, 1, 0, "AGM-006", diag.Warning, msg).
			WithSuggestion("Some tools load AGENTS.md hierarchically. Document inheritance behavior or consolidate files."))
	}
	return diags
}

// parentAgentsFiles returns the AGENTS.md paths whose directory is a proper
// ancestor of file's directory.
func parentAgentsFiles(file string, all []string) []string {
	fileDir := path.Dir(filepath.ToSlash(file))
	var parents []string
	for _, other := range all {
		if other == file {
			continue
		}
		otherDir := path.Dir(filepath.ToSlash(other))
		if isAncestorDir(otherDir, fileDir) {
			parents = append(parents, other)
		}
	}
	return parents
}

// isAncestorDir reports whether parent strictly contains child. Both are
// slash-separated relative directories where "." is the root.
func isAncestorDir(parent, child string) bool {
	if parent == child {
		return false
	}
	if parent == "." {
		return child != "."
	}
	return strings.HasPrefix(child, parent+"/")
}

// checkLayerConflicts reads every instruction file once and runs the
// cross-layer contradiction rules over the contents.
func checkLayerConflicts(cfg *config.Config, root string, instructionPaths []string) []diag.Diagnostic {
	xp004 := cfg.IsRuleEnabled("XP-004")
	xp005 := cfg.IsRuleEnabled("XP-005")
	xp006 := cfg.IsRuleEnabled("XP-006")
	if (!xp004 && !xp005 && !xp006) || len(instructionPaths) < 2 {
		return nil
	}

	var diags []diag.Diagnostic
	type fileContent struct {
		path    string
		content string
	}
	var files []fileContent
	for _, rel := range instructionPaths {
		raw, err := cfg.FS.ReadFile(filepath.Join(root, rel))
		if err != nil {
			diags = append(diags, diag.New(rel, 0, 0, "XP-004", diag.Error,
				fmt.Sprintf("Failed to read instruction file: %v", err)).
				WithSuggestion("Check that the file exists and is readable"))
			continue
		}
		files = append(files, fileContent{rel, string(raw)})
	}

	if xp004 {
		var fileCmds []fileCommands
		for _, f := range files {
			if cmds := extractBuildCommands(f.content); len(cmds) > 0 {
				fileCmds = append(fileCmds, fileCommands{f.path, cmds})
			}
		}
		for _, c := range detectBuildConflicts(fileCmds) {
			diags = append(diags, diag.New(c.File1, c.File1Line, 0, "XP-004", diag.Warning,
				fmt.Sprintf("Conflicting package managers: %s uses %s but %s uses %s for %s commands",
					c.File1, c.File1Manager, c.File2, c.File2Manager, c.Type)).
				WithSuggestion("Standardize on a single package manager across all instruction files"))
		}
	}

	if xp005 {
		var fileCons []fileConstraints
		for _, f := range files {
			if cons := extractToolConstraints(f.content); len(cons) > 0 {
				fileCons = append(fileCons, fileConstraints{f.path, cons})
			}
		}
		for _, c := range detectToolConflicts(fileCons) {
			diags = append(diags, diag.New(c.AllowFile, c.AllowLine, 0, "XP-005", diag.Error,
				fmt.Sprintf("Conflicting tool constraints: '%s' is allowed in %s but disallowed in %s",
					c.Tool, c.AllowFile, c.DisallowFile)).
				WithSuggestion("Resolve the conflict by consistently allowing or disallowing the tool"))
		}
	}

	if xp006 {
		layers := make([]instructionLayer, 0, len(files))
		for _, f := range files {
			layers = append(layers, categorizeLayer(f.path, f.content))
		}
		if issue := detectPrecedenceIssue(layers); issue != nil {
			diags = append(diags, diag.New(issue.FirstPath, 1, 0, "XP-006", diag.Warning, issue.Description).
				WithSuggestion("Document which file takes precedence (e.g., 'CLAUDE.md takes precedence over AGENTS.md')"))
		}
	}

	return diags
}

// checkVersionPinning emits VER-001 when the configuration pins no tool
// version and no spec revision. Reported against agentlint.toml when one
// exists at the root, otherwise against the root itself.
func checkVersionPinning(cfg *config.Config, root string) []diag.Diagnostic {
	if !cfg.IsRuleEnabled("VER-001") {
		return nil
	}
	if anyPinned(cfg.ToolVersions) || anyPinned(cfg.SpecRevisions) || cfg.MCPProtocolVersion != "" {
		return nil
	}

	reportPath := config.ConfigFileName
	if !cfg.FS.IsFile(filepath.Join(root, config.ConfigFileName)) {
		reportPath = "."
	}
	return []diag.Diagnostic{
		diag.New(reportPath, 1, 0, "VER-001", diag.Info,
			"No tool versions or spec revisions pinned; rules assume the latest documented behavior").
			WithSuggestion("Pin expected versions in agentlint.toml under [tool_versions] or [spec_revisions] to catch behavior drift"),
	}
}

func anyPinned(m map[string]string) bool {
	for _, v := range m {
		if v != "" {
			return true
		}
	}
	return false
}
