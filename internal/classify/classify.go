// Package classify maps file paths to artifact kinds. Classification is by
// path pattern only and never reads content.
package classify

import (
	"path/filepath"
	"strings"
)

// FileKind identifies the artifact family a path belongs to.
type FileKind int

const (
	Unknown FileKind = iota
	Skill
	AgentManifest
	Hooks
	InstructionMemory
	ClaudeRule
	Plugin
	Mcp
	AgentsMd
	CopilotGlobal
	CopilotScoped
	CopilotAgent
	CopilotPrompt
	CopilotHooks
	CopilotSetupSteps
	CursorRule
	CursorRulesLegacy
	CursorHooks
	CursorAgent
	CursorEnvironment
	CodexConfig
	GeminiMemory
	GenericMarkdown
)

var kindNames = map[FileKind]string{
	Unknown:           "unknown",
	Skill:             "skill",
	AgentManifest:     "agent",
	Hooks:             "hooks",
	InstructionMemory: "memory",
	ClaudeRule:        "claude-rule",
	Plugin:            "plugin",
	Mcp:               "mcp",
	AgentsMd:          "agents-md",
	CopilotGlobal:     "copilot-global",
	CopilotScoped:     "copilot-scoped",
	CopilotAgent:      "copilot-agent",
	CopilotPrompt:     "copilot-prompt",
	CopilotHooks:      "copilot-hooks",
	CopilotSetupSteps: "copilot-setup-steps",
	CursorRule:        "cursor-rule",
	CursorRulesLegacy: "cursor-rules-legacy",
	CursorHooks:       "cursor-hooks",
	CursorAgent:       "cursor-agent",
	CursorEnvironment: "cursor-environment",
	CodexConfig:       "codex-config",
	GeminiMemory:      "gemini-memory",
	GenericMarkdown:   "generic-markdown",
}

func (k FileKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// docFilenames are project documentation files excluded from markdown
// classification outside recognized directories. Matched case-insensitively
// on the name without extension.
var docFilenames = map[string]bool{
	"readme":          true,
	"contributing":    true,
	"license":         true,
	"code_of_conduct": true,
	"security":        true,
	"changelog":       true,
}

// docDirs are directory names whose markdown descendants are documentation,
// not artifacts.
var docDirs = map[string]bool{
	"docs":          true,
	"doc":           true,
	"documentation": true,
	"wiki":          true,
	"examples":      true,
}

// memoryNames are instruction-memory filenames scoped to Claude Code.
var memoryNames = map[string]bool{
	"CLAUDE.md":       true,
	"CLAUDE.local.md": true,
}

// Classify maps a path to its FileKind.
func Classify(path string) FileKind {
	norm := filepath.ToSlash(path)
	name := filepath.Base(norm)
	parts := strings.Split(norm, "/")
	dirs := parts[:len(parts)-1]

	lower := strings.ToLower(name)
	ext := filepath.Ext(lower)

	// Directory-anchored kinds beat filename-anchored exclusions, so agents/
	// is checked before the documentation filename list.
	switch {
	case name == "SKILL.md":
		return Skill
	case inDir(dirs, "agents") && ext == ".md":
		if inDir(dirs, ".github") {
			return CopilotAgent
		}
		return AgentManifest
	case name == "settings.json" || name == "settings.local.json":
		if inDir(dirs, ".claude") {
			return Hooks
		}
		return Unknown
	case name == "plugin.json":
		return Plugin
	case isMcpName(lower):
		return Mcp
	case name == "config.toml":
		if inDir(dirs, ".codex") {
			return CodexConfig
		}
		return Unknown
	case name == ".cursorrules":
		return CursorRulesLegacy
	case name == "hooks.json":
		if inDir(dirs, ".cursor") {
			return CursorHooks
		}
		if inDir(dirs, ".github") {
			return CopilotHooks
		}
		return Unknown
	case name == "environment.json" && inDir(dirs, ".cursor"):
		return CursorEnvironment
	case ext == ".mdc" && inDir(dirs, ".cursor"):
		return CursorRule
	case name == "AGENT.md" && inDir(dirs, ".cursor"):
		return CursorAgent
	case name == "copilot-instructions.md":
		return CopilotGlobal
	case strings.HasSuffix(lower, ".instructions.md"):
		return CopilotScoped
	case strings.HasSuffix(lower, ".prompt.md") && inDir(dirs, ".github"):
		return CopilotPrompt
	case name == "copilot-setup-steps.yml" || name == "copilot-setup-steps.yaml":
		return CopilotSetupSteps
	case ext == ".md" && inDir(dirs, "rules") && inDir(dirs, ".claude"):
		return ClaudeRule
	}

	if ext != ".md" {
		return Unknown
	}

	// Documentation directories exclude any markdown descendant.
	for _, d := range dirs {
		if docDirs[strings.ToLower(d)] {
			return Unknown
		}
	}

	base := strings.TrimSuffix(lower, ext)
	if docFilenames[base] {
		return Unknown
	}

	switch {
	case memoryNames[name]:
		return InstructionMemory
	case name == "AGENTS.md" || name == "AGENTS.override.md":
		return AgentsMd
	case name == "GEMINI.md" || name == "GEMINI.local.md":
		return GeminiMemory
	}

	return GenericMarkdown
}

func inDir(dirs []string, want string) bool {
	for _, d := range dirs {
		if d == want {
			return true
		}
	}
	return false
}

// isMcpName recognizes tool-server manifests: mcp.json, *.mcp.json,
// mcp-*.json.
func isMcpName(lower string) bool {
	if !strings.HasSuffix(lower, ".json") {
		return false
	}
	if lower == "mcp.json" || lower == ".mcp.json" {
		return true
	}
	if strings.HasSuffix(lower, ".mcp.json") {
		return true
	}
	return strings.HasPrefix(lower, "mcp-")
}

// IsMemoryKind reports whether the kind participates in cross-file
// instruction-memory checks.
func IsMemoryKind(k FileKind) bool {
	switch k {
	case InstructionMemory, AgentsMd, GeminiMemory:
		return true
	}
	return false
}
