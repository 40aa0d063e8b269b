// Package lint implements the validator registry and the per-kind rule
// families. Validators are stateless and safe to share across goroutines;
// all per-file state travels in the FileContext.
package lint

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dotcommander/agentlint/internal/classify"
	"github.com/dotcommander/agentlint/internal/config"
	"github.com/dotcommander/agentlint/internal/diag"
)

// FileContext carries one file through a validator invocation.
type FileContext struct {
	// Path is the repository-relative path used in diagnostics.
	Path string
	// AbsPath locates the file on the config's filesystem handle for
	// checks that read neighbors (skill references, hook scripts).
	AbsPath string
	Content string
	Kind    classify.FileKind
	Cfg     *config.Config
}

// Enabled consults the config's rule gate.
func (ctx *FileContext) Enabled(rule string) bool {
	return ctx.Cfg.IsRuleEnabled(rule)
}

// Dir returns the directory holding the file on the filesystem handle.
func (ctx *FileContext) Dir() string {
	return filepath.Dir(ctx.AbsPath)
}

// Validator is the unit of rule logic. Validate never returns an error;
// parse failures become diagnostics with kind-specific rule ids.
type Validator interface {
	// Name identifies the validator for disabled_validators.
	Name() string
	// Rules lists the rule ids the validator may emit.
	Rules() []string
	// Validate inspects one file and returns its findings.
	Validate(ctx *FileContext) []diag.Diagnostic
}

// Registry maps file kinds to the validators that run on them. Immutable
// after construction and safe for concurrent use.
type Registry struct {
	byKind map[classify.FileKind][]Validator
}

// NewRegistry returns the default validator wiring.
func NewRegistry() *Registry {
	skill := &SkillValidator{}
	agent := &AgentValidator{}
	hooks := &HooksValidator{}
	memory := &MemoryValidator{}
	claudeRule := &ClaudeRuleValidator{}
	plugin := &PluginValidator{}
	mcp := &MCPValidator{}
	agentsMd := &AgentsMdValidator{}
	copilot := &CopilotValidator{}
	cursor := &CursorValidator{}
	codex := &CodexValidator{}
	gemini := &GeminiValidator{}
	imports := &ImportsValidator{}
	xml := &XMLValidator{}
	prompt := &PromptValidator{}
	xplat := &CrossPlatformValidator{}

	r := &Registry{byKind: map[classify.FileKind][]Validator{
		classify.Skill:             {skill, xml, prompt},
		classify.AgentManifest:     {agent},
		classify.Hooks:             {hooks},
		classify.InstructionMemory: {memory, imports, xml, prompt},
		classify.ClaudeRule:        {claudeRule},
		classify.Plugin:            {plugin},
		classify.Mcp:               {mcp},
		classify.AgentsMd:          {agentsMd, codex, xplat, imports, xml, prompt},
		classify.CopilotGlobal:     {copilot, xml},
		classify.CopilotScoped:     {copilot, xml},
		classify.CopilotAgent:      {copilot, xml},
		classify.CopilotPrompt:     {copilot, xml},
		classify.CopilotHooks:      {copilot},
		classify.CopilotSetupSteps: {copilot},
		classify.CursorRule:        {cursor},
		classify.CursorRulesLegacy: {cursor},
		classify.CursorHooks:       {cursor},
		classify.CursorAgent:       {cursor},
		classify.CursorEnvironment: {cursor},
		classify.CodexConfig:       {codex},
		classify.GeminiMemory:      {gemini, imports},
		classify.GenericMarkdown:   {xml},
	}}
	return r
}

// ValidatorsFor returns the validators registered for a kind.
func (r *Registry) ValidatorsFor(kind classify.FileKind) []Validator {
	return r.byKind[kind]
}

// Override replaces the validators for a kind. Test hook.
func (r *Registry) Override(kind classify.FileKind, vs ...Validator) {
	r.byKind[kind] = vs
}

// All returns every registered validator exactly once, sorted by name.
func (r *Registry) All() []Validator {
	seen := make(map[string]Validator)
	for _, vs := range r.byKind {
		for _, v := range vs {
			seen[v.Name()] = v
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Validator, 0, len(names))
	for _, name := range names {
		out = append(out, seen[name])
	}
	return out
}

// ValidateFile runs every registered validator for the file's kind and
// returns the combined findings. A panic inside one validator is isolated:
// it becomes a single internal-error diagnostic and the remaining
// validators still run.
func (r *Registry) ValidateFile(ctx *FileContext) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, v := range r.ValidatorsFor(ctx.Kind) {
		if !ctx.Cfg.IsValidatorEnabled(v.Name()) {
			continue
		}
		out = append(out, runIsolated(ctx, v)...)
	}
	return out
}

func runIsolated(ctx *FileContext, v Validator) (out []diag.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			out = append(out, diag.New(ctx.Path, 1, 0, "INT-001", diag.Error,
				fmt.Sprintf("Internal error in %s validator: %v", v.Name(), r)))
		}
	}()
	return v.Validate(ctx)
}
