// Package config loads and validates agentlint.toml and implements the rule
// enablement predicate every validator consults.
package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/dotcommander/agentlint/internal/fsys"
)

// ConfigFileName is the filename discovered upward from the lint target.
const ConfigFileName = "agentlint.toml"

// DefaultMaxFiles is the project driver's file-count ceiling.
const DefaultMaxFiles = 10000

// DefaultMaxFileSize is the per-file parse ceiling in bytes (8 MiB).
const DefaultMaxFileSize = 8 * 1024 * 1024

// Legacy single-tool targets.
const (
	TargetGeneric    = "Generic"
	TargetClaudeCode = "ClaudeCode"
	TargetCursor     = "Cursor"
	TargetCodex      = "Codex"
)

// RuleToggles enables or disables whole rule categories. Every toggle
// defaults to true.
type RuleToggles struct {
	Skills            bool `mapstructure:"skills" toml:"skills" json:"skills"`
	Hooks             bool `mapstructure:"hooks" toml:"hooks" json:"hooks"`
	Agents            bool `mapstructure:"agents" toml:"agents" json:"agents"`
	Memory            bool `mapstructure:"memory" toml:"memory" json:"memory"`
	Plugins           bool `mapstructure:"plugins" toml:"plugins" json:"plugins"`
	XML               bool `mapstructure:"xml" toml:"xml" json:"xml"`
	XMLBalance        bool `mapstructure:"xml_balance" toml:"xml_balance" json:"xml_balance"`
	MCP               bool `mapstructure:"mcp" toml:"mcp" json:"mcp"`
	Imports           bool `mapstructure:"imports" toml:"imports" json:"imports"`
	CrossPlatform     bool `mapstructure:"cross_platform" toml:"cross_platform" json:"cross_platform"`
	PromptEngineering bool `mapstructure:"prompt_engineering" toml:"prompt_engineering" json:"prompt_engineering"`
	AgentsMd          bool `mapstructure:"agents_md" toml:"agents_md" json:"agents_md"`
	Copilot           bool `mapstructure:"copilot" toml:"copilot" json:"copilot"`
	Cursor            bool `mapstructure:"cursor" toml:"cursor" json:"cursor"`
	GeminiMd          bool `mapstructure:"gemini_md" toml:"gemini_md" json:"gemini_md"`
	Codex             bool `mapstructure:"codex" toml:"codex" json:"codex"`
}

func defaultToggles() RuleToggles {
	return RuleToggles{
		Skills: true, Hooks: true, Agents: true, Memory: true, Plugins: true,
		XML: true, XMLBalance: true, MCP: true, Imports: true,
		CrossPlatform: true, PromptEngineering: true, AgentsMd: true,
		Copilot: true, Cursor: true, GeminiMd: true, Codex: true,
	}
}

// FilesConfig controls which files the walker hands to validators.
// Precedence: exclude > include_as_memory > include_as_generic > built-in
// detection.
type FilesConfig struct {
	Include          []string `mapstructure:"include" toml:"include" json:"include"`
	Exclude          []string `mapstructure:"exclude" toml:"exclude" json:"exclude"`
	IncludeAsMemory  []string `mapstructure:"include_as_memory" toml:"include_as_memory" json:"include_as_memory"`
	IncludeAsGeneric []string `mapstructure:"include_as_generic" toml:"include_as_generic" json:"include_as_generic"`
}

// Config is the lint configuration. Runtime-only fields (filesystem handle,
// project root, import cache) are never serialized.
type Config struct {
	Severity           string            `mapstructure:"severity" toml:"severity" json:"severity"`
	Target             string            `mapstructure:"target" toml:"target" json:"target"`
	Tools              []string          `mapstructure:"tools" toml:"tools" json:"tools"`
	DisabledRules      []string          `mapstructure:"disabled_rules" toml:"disabled_rules" json:"disabled_rules"`
	DisabledValidators []string          `mapstructure:"disabled_validators" toml:"disabled_validators" json:"disabled_validators"`
	Rules              RuleToggles       `mapstructure:"rules" toml:"rules" json:"rules"`
	Files              FilesConfig       `mapstructure:"files" toml:"files" json:"files"`
	ToolVersions       map[string]string `mapstructure:"tool_versions" toml:"tool_versions" json:"tool_versions"`
	SpecRevisions      map[string]string `mapstructure:"spec_revisions" toml:"spec_revisions" json:"spec_revisions"`
	MCPProtocolVersion string            `mapstructure:"mcp_protocol_version" toml:"mcp_protocol_version" json:"mcp_protocol_version"`
	MaxFilesToValidate int               `mapstructure:"max_files_to_validate" toml:"max_files_to_validate" json:"max_files_to_validate"`
	MaxFileSize        int64             `mapstructure:"max_file_size" toml:"max_file_size" json:"max_file_size"`
	Jobs               int               `mapstructure:"jobs" toml:"jobs" json:"jobs"`

	// Runtime-only state, threaded through validators.
	FS          fsys.FS      `mapstructure:"-" toml:"-" json:"-"`
	ProjectRoot string       `mapstructure:"-" toml:"-" json:"-"`
	Imports     *ImportCache `mapstructure:"-" toml:"-" json:"-"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Severity:           "Info",
		Target:             TargetGeneric,
		Rules:              defaultToggles(),
		MaxFilesToValidate: DefaultMaxFiles,
		MaxFileSize:        DefaultMaxFileSize,
		FS:                 fsys.NewOS(),
		Imports:            NewImportCache(),
	}
}

// Load reads a config file leniently: a missing path yields defaults
// silently; a malformed file yields defaults plus a single warning string.
func Load(fs fsys.FS, path string) (*Config, string) {
	cfg := Default()
	cfg.FS = fs

	raw, err := fs.ReadFile(path)
	if err != nil {
		return cfg, ""
	}

	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return Default(), fmt.Sprintf("Failed to parse config %s: %v. Using defaults.", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return Default(), fmt.Sprintf("Failed to parse config %s: %v. Using defaults.", path, err)
	}
	cfg.FS = fs
	if cfg.MaxFilesToValidate <= 0 {
		cfg.MaxFilesToValidate = DefaultMaxFiles
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Target == "" {
		cfg.Target = TargetGeneric
	}
	if cfg.Severity == "" {
		cfg.Severity = "Info"
	}
	return cfg, ""
}

// Discover walks upward from dir looking for agentlint.toml, loading it
// leniently when found.
func Discover(fs fsys.FS, dir string) (*Config, string) {
	cur := dir
	for {
		candidate := filepath.Join(cur, ConfigFileName)
		if fs.IsFile(candidate) {
			return Load(fs, candidate)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	cfg := Default()
	cfg.FS = fs
	return cfg, ""
}

// toolRulePrefixes maps vendor rule-id prefixes to the tool identifier that
// owns them. Rules outside this table are not vendor-specific.
var toolRulePrefixes = map[string]string{
	"CC-":  "claude-code",
	"CUR-": "cursor",
	"COP-": "github-copilot",
	"CDX-": "codex",
	"AMP-": "amp",
}

// targetVendors maps legacy targets to the vendor whose rules stay enabled.
var targetVendors = map[string]string{
	TargetClaudeCode: "claude-code",
	TargetCursor:     "cursor",
	TargetCodex:      "codex",
}

// IsToolAlias reports whether name is an accepted alias for the canonical
// tool identifier. Only copilot → github-copilot is recognized; an alias
// never matches itself.
func IsToolAlias(name, canonical string) bool {
	return strings.EqualFold(name, "copilot") && canonical == "github-copilot"
}

// ruleVendor returns the owning tool for a vendor-prefixed rule id, or ""
// for vendor-neutral rules.
func ruleVendor(rule string) string {
	for prefix, tool := range toolRulePrefixes {
		if strings.HasPrefix(rule, prefix) {
			return tool
		}
	}
	return ""
}

// categoryForRule maps a rule id to its category toggle. Unknown prefixes
// return a nil accessor, meaning always enabled.
func (c *Config) categoryEnabled(rule string) bool {
	r := c.Rules
	switch {
	case strings.HasPrefix(rule, "AS-") || strings.HasPrefix(rule, "CC-SK-") || strings.HasSuffix(firstSegment(rule), "SK"):
		return r.Skills
	case strings.HasPrefix(rule, "CC-HK-"):
		return r.Hooks
	case strings.HasPrefix(rule, "CC-AG-"):
		return r.Agents
	case strings.HasPrefix(rule, "CC-MEM-"):
		return r.Memory
	case strings.HasPrefix(rule, "CC-PL-") || strings.HasPrefix(rule, "PL-"):
		return r.Plugins
	case strings.HasPrefix(rule, "XML-"):
		return r.XML
	case strings.HasPrefix(rule, "MCP-"):
		return r.MCP
	case strings.HasPrefix(rule, "REF-"):
		return r.Imports
	case strings.HasPrefix(rule, "XP-"):
		return r.CrossPlatform
	case strings.HasPrefix(rule, "PE-"):
		return r.PromptEngineering
	case strings.HasPrefix(rule, "AGM-"):
		return r.AgentsMd
	case strings.HasPrefix(rule, "COP-"):
		return r.Copilot
	case strings.HasPrefix(rule, "CUR-"):
		return r.Cursor
	case strings.HasPrefix(rule, "GM-"):
		return r.GeminiMd
	case strings.HasPrefix(rule, "CDX-"):
		return r.Codex
	default:
		return true
	}
}

// firstSegment returns the rule id up to (but excluding) the numeric tail,
// e.g. "CR-SK" for "CR-SK-001".
func firstSegment(rule string) string {
	if idx := strings.LastIndex(rule, "-"); idx > 0 {
		return rule[:idx]
	}
	return rule
}

// IsRuleEnabled is the single authoritative enablement gate. A rule id is
// enabled iff it is not explicitly disabled, its category toggle is on, and
// the tools (or legacy target) selection does not exclude its vendor.
// Unknown rule ids are enabled for forward compatibility.
func (c *Config) IsRuleEnabled(rule string) bool {
	for _, d := range c.DisabledRules {
		if d == rule {
			return false
		}
	}
	if !c.categoryEnabled(rule) {
		return false
	}

	vendor := ruleVendor(rule)
	if vendor == "" {
		return true
	}

	if len(c.Tools) > 0 {
		for _, t := range c.Tools {
			if strings.EqualFold(t, vendor) || IsToolAlias(t, vendor) {
				return true
			}
		}
		return false
	}

	// Legacy single-target mode: a non-generic target disables every rule
	// owned by a different vendor.
	if c.Target == "" || c.Target == TargetGeneric {
		return true
	}
	return targetVendors[c.Target] == vendor
}

// IsValidatorEnabled reports whether a named validator was not disabled.
func (c *Config) IsValidatorEnabled(name string) bool {
	for _, d := range c.DisabledValidators {
		if strings.EqualFold(d, name) {
			return false
		}
	}
	return true
}

// knownTools is the accepted vocabulary for the tools array.
var knownTools = []string{
	"claude-code", "cursor", "codex", "copilot", "github-copilot",
	"cline", "opencode", "gemini-cli", "amp", "generic",
}

var ruleIDPattern = regexp.MustCompile(`^[A-Z]{2,4}(-[A-Z]{2,3})?-\d{3}$`)

// Validate returns non-fatal warnings about suspicious configuration.
func (c *Config) Validate() []string {
	var warnings []string

	for _, t := range c.Tools {
		if !containsFold(knownTools, t) {
			warnings = append(warnings, fmt.Sprintf("Unknown tool %q in tools; known tools: %s", t, strings.Join(knownTools, ", ")))
		}
	}

	for _, r := range c.DisabledRules {
		if !ruleIDPattern.MatchString(r) {
			warnings = append(warnings, fmt.Sprintf("Rule id %q in disabled_rules does not match the PREFIX-NNN grammar", r))
		}
	}

	switch c.Target {
	case "", TargetGeneric, TargetClaudeCode, TargetCursor, TargetCodex:
	default:
		warnings = append(warnings, fmt.Sprintf("Unknown target %q; expected one of Generic, ClaudeCode, Cursor, Codex", c.Target))
	}
	if c.Target != "" && c.Target != TargetGeneric && len(c.Tools) > 0 {
		warnings = append(warnings, "Both target and tools are set; tools takes precedence and target is ignored")
	}
	if c.MCPProtocolVersion != "" {
		if _, ok := c.SpecRevisions["mcp_protocol"]; ok {
			warnings = append(warnings, "Both mcp_protocol_version and spec_revisions.mcp_protocol are set; spec_revisions wins")
		}
	}

	for _, set := range []struct {
		name     string
		patterns []string
	}{
		{"files.include", c.Files.Include},
		{"files.exclude", c.Files.Exclude},
		{"files.include_as_memory", c.Files.IncludeAsMemory},
		{"files.include_as_generic", c.Files.IncludeAsGeneric},
	} {
		for _, p := range set.patterns {
			if !doublestar.ValidatePattern(p) {
				warnings = append(warnings, fmt.Sprintf("Invalid glob %q in %s", p, set.name))
			}
			if strings.Contains(p, "..") {
				warnings = append(warnings, fmt.Sprintf("Pattern %q in %s escapes the project root", p, set.name))
			}
		}
	}

	return warnings
}

// MCPPinnedRevision returns the expected MCP protocol revision, preferring
// spec_revisions over the legacy field. Empty when nothing is pinned.
func (c *Config) MCPPinnedRevision() string {
	if v, ok := c.SpecRevisions["mcp_protocol"]; ok && v != "" {
		return v
	}
	return c.MCPProtocolVersion
}

// DefaultMCPProtocolVersion is the latest MCP revision the rules are
// written against, used when no revision is pinned.
const DefaultMCPProtocolVersion = "2025-06-18"

// EffectiveMCPProtocolVersion returns the pinned MCP revision, or the
// default the rules assume when unpinned.
func (c *Config) EffectiveMCPProtocolVersion() string {
	if v := c.MCPPinnedRevision(); v != "" {
		return v
	}
	return DefaultMCPProtocolVersion
}

// Excluded reports whether a repository-relative path matches any exclude
// glob.
func (c *Config) Excluded(relPath string) bool {
	slash := filepath.ToSlash(relPath)
	for _, p := range c.Files.Exclude {
		if ok, err := doublestar.Match(p, slash); err == nil && ok {
			return true
		}
	}
	return false
}

// MatchesAny reports whether a repository-relative path matches any of the
// given globs.
func MatchesAny(patterns []string, relPath string) bool {
	slash := filepath.ToSlash(relPath)
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, slash); err == nil && ok {
			return true
		}
	}
	return false
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// ImportCache memoizes resolved import file contents across validator
// invocations. Resolution is advisory; a miss falls back to a direct read.
type ImportCache struct {
	mu sync.Mutex
	m  map[string]string
}

// NewImportCache returns an empty cache.
func NewImportCache() *ImportCache {
	return &ImportCache{m: make(map[string]string)}
}

// Get returns the cached content for a path.
func (ic *ImportCache) Get(path string) (string, bool) {
	if ic == nil {
		return "", false
	}
	ic.mu.Lock()
	defer ic.mu.Unlock()
	v, ok := ic.m[path]
	return v, ok
}

// Put stores content for a path.
func (ic *ImportCache) Put(path, content string) {
	if ic == nil {
		return
	}
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.m[path] = content
}
