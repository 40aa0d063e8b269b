package crossfile

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dotcommander/agentlint/internal/classify"
)

// commandType buckets package-manager invocations so that only like-for-like
// commands are compared across files.
type commandType int

const (
	cmdInstall commandType = iota
	cmdBuild
	cmdTest
	cmdRun
	cmdOther
)

func (t commandType) String() string {
	switch t {
	case cmdInstall:
		return "install"
	case cmdBuild:
		return "build"
	case cmdTest:
		return "test"
	case cmdRun:
		return "run"
	default:
		return "other"
	}
}

// buildCommand is one package-manager invocation found in instruction text.
type buildCommand struct {
	Manager string
	Type    commandType
	Line    int
}

type fileCommands struct {
	Path     string
	Commands []buildCommand
}

// buildConflict pairs two files that drive the same command type through
// different package managers.
type buildConflict struct {
	File1        string
	File1Line    int
	File1Manager string
	File2        string
	File2Manager string
	Type         commandType
}

// packageManagerPattern matches a JS package-manager invocation and its
// subcommand, tolerating the `run <script>` indirection.
var packageManagerPattern = regexp.MustCompile(`(?i)\b(npm|pnpm|yarn|bun)\b(?:\s+(?:run\s+)?([a-zA-Z0-9:_-]+))?`)

// extractBuildCommands finds package-manager invocations line by line.
func extractBuildCommands(content string) []buildCommand {
	var out []buildCommand
	for i, line := range strings.Split(content, "\n") {
		for _, m := range packageManagerPattern.FindAllStringSubmatch(line, -1) {
			sub := ""
			if len(m) > 2 {
				sub = m[2]
			}
			out = append(out, buildCommand{
				Manager: strings.ToLower(m[1]),
				Type:    classifySubcommand(sub),
				Line:    i + 1,
			})
		}
	}
	return out
}

func classifySubcommand(word string) commandType {
	switch strings.ToLower(word) {
	case "install", "ci", "add", "i":
		return cmdInstall
	case "build", "compile", "bundle":
		return cmdBuild
	case "test", "check", "lint":
		return cmdTest
	case "run", "dev", "start", "serve", "exec":
		return cmdRun
	default:
		return cmdOther
	}
}

// detectBuildConflicts compares every file pair per command type, taking the
// first command of each type in each file. Same manager never conflicts.
func detectBuildConflicts(files []fileCommands) []buildConflict {
	var out []buildConflict
	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			for t := cmdInstall; t <= cmdOther; t++ {
				c1, ok1 := firstOfType(files[i].Commands, t)
				c2, ok2 := firstOfType(files[j].Commands, t)
				if !ok1 || !ok2 || c1.Manager == c2.Manager {
					continue
				}
				out = append(out, buildConflict{
					File1:        files[i].Path,
					File1Line:    c1.Line,
					File1Manager: c1.Manager,
					File2:        files[j].Path,
					File2Manager: c2.Manager,
					Type:         t,
				})
			}
		}
	}
	return out
}

func firstOfType(cmds []buildCommand, t commandType) (buildCommand, bool) {
	for _, c := range cmds {
		if c.Type == t {
			return c, true
		}
	}
	return buildCommand{}, false
}

// toolConstraint records one allow or disallow statement about a tool.
type toolConstraint struct {
	Tool    string
	Allowed bool
	Line    int
}

type fileConstraints struct {
	Path        string
	Constraints []toolConstraint
}

// toolConflict is a tool allowed in one file and disallowed in another.
type toolConflict struct {
	Tool         string
	AllowFile    string
	AllowLine    int
	DisallowFile string
}

var (
	allowedToolsLinePattern = regexp.MustCompile(`(?i)^\s*allowed-tools:\s*(.+)$`)
	disallowToolPattern     = regexp.MustCompile(`(?i)\b(?:never use|do not use|don't use|avoid using|must not use)\s+([A-Za-z][A-Za-z0-9_-]*)`)
)

// extractToolConstraints collects allowed-tools declarations and prose
// prohibitions. Allowed-tools entries may carry a parenthesized specifier
// like Bash(git:*); only the tool name participates in matching.
func extractToolConstraints(content string) []toolConstraint {
	var out []toolConstraint
	for i, line := range strings.Split(content, "\n") {
		if m := allowedToolsLinePattern.FindStringSubmatch(line); m != nil {
			for _, tok := range strings.FieldsFunc(m[1], func(r rune) bool {
				return r == ' ' || r == '\t' || r == ','
			}) {
				name := tok
				if idx := strings.IndexByte(name, '('); idx >= 0 {
					name = name[:idx]
				}
				if name != "" {
					out = append(out, toolConstraint{Tool: name, Allowed: true, Line: i + 1})
				}
			}
		}
		for _, m := range disallowToolPattern.FindAllStringSubmatch(line, -1) {
			out = append(out, toolConstraint{Tool: m[1], Allowed: false, Line: i + 1})
		}
	}
	return out
}

// detectToolConflicts cross-matches allow statements against disallow
// statements in other files. Tool names compare case-insensitively; the
// reported name keeps the allowing file's spelling.
func detectToolConflicts(files []fileConstraints) []toolConflict {
	var out []toolConflict
	seen := make(map[string]bool)
	for _, allowFile := range files {
		for _, allow := range allowFile.Constraints {
			if !allow.Allowed {
				continue
			}
			for _, disallowFile := range files {
				if disallowFile.Path == allowFile.Path {
					continue
				}
				for _, dis := range disallowFile.Constraints {
					if dis.Allowed || !strings.EqualFold(allow.Tool, dis.Tool) {
						continue
					}
					key := strings.ToLower(allow.Tool) + "\x00" + allowFile.Path + "\x00" + disallowFile.Path
					if seen[key] {
						continue
					}
					seen[key] = true
					out = append(out, toolConflict{
						Tool:         allow.Tool,
						AllowFile:    allowFile.Path,
						AllowLine:    allow.Line,
						DisallowFile: disallowFile.Path,
					})
				}
			}
		}
	}
	return out
}

// instructionLayer is one instruction file categorized by the convention it
// belongs to, with a flag for whether it documents layer precedence.
type instructionLayer struct {
	Path               string
	Layer              string
	MentionsPrecedence bool
}

var precedencePattern = regexp.MustCompile(`(?i)\b(?:takes precedence|precedence over|overrides|overridden by|priority over|takes priority)\b`)

// categorizeLayer maps an instruction file to its convention family.
func categorizeLayer(relPath, content string) instructionLayer {
	layer := "instruction file"
	switch classify.Classify(relPath) {
	case classify.InstructionMemory:
		layer = "CLAUDE.md"
	case classify.AgentsMd:
		layer = "AGENTS.md"
	case classify.GeminiMemory:
		layer = "GEMINI.md"
	case classify.CopilotGlobal, classify.CopilotScoped:
		layer = "Copilot instructions"
	case classify.CursorRule, classify.CursorRulesLegacy:
		layer = "Cursor rules"
	default:
		layer = path.Base(filepath.ToSlash(relPath))
	}
	return instructionLayer{
		Path:               relPath,
		Layer:              layer,
		MentionsPrecedence: precedencePattern.MatchString(content),
	}
}

// precedenceIssue names the undocumented layer stack.
type precedenceIssue struct {
	FirstPath   string
	Description string
}

// detectPrecedenceIssue fires when at least two distinct layer families
// coexist and no file says which one wins.
func detectPrecedenceIssue(layers []instructionLayer) *precedenceIssue {
	if len(layers) < 2 {
		return nil
	}
	var names []string
	seen := make(map[string]bool)
	for _, l := range layers {
		if l.MentionsPrecedence {
			return nil
		}
		if !seen[l.Layer] {
			seen[l.Layer] = true
			names = append(names, l.Layer)
		}
	}
	if len(names) < 2 {
		return nil
	}
	return &precedenceIssue{
		FirstPath: layers[0].Path,
		Description: fmt.Sprintf("Multiple instruction layers (%s) without documented precedence",
			strings.Join(names, ", ")),
	}
}
