package lint

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
)

// memoryTokenLimit is the advisory budget for CLAUDE.md, estimated at
// four characters per token.
const memoryTokenLimit = 1500

// readmeOverlapThreshold is the Jaccard similarity past which CLAUDE.md
// is considered a README copy rather than agent instructions.
const readmeOverlapThreshold = 0.40

var genericInstructionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbe\s+helpful`),
	regexp.MustCompile(`(?i)\bbe\s+accurate`),
	regexp.MustCompile(`(?i)\bthink\s+step\s+by\s+step`),
	regexp.MustCompile(`(?i)\bbe\s+concise`),
	regexp.MustCompile(`(?i)\bformat.*properly`),
	regexp.MustCompile(`(?i)\bprovide.*clear.*explanations`),
	regexp.MustCompile(`(?i)\bmake\s+sure\s+to`),
	regexp.MustCompile(`(?i)\balways\s+be`),
}

var (
	memNegativePattern    = regexp.MustCompile(`(?i)\b(don't|do\s+not|never|avoid|shouldn't|should\s+not)\b`)
	memPositivePattern    = regexp.MustCompile(`(?i)\b(instead|rather|prefer|better\s+to|alternative)\b`)
	memWeakPattern        = regexp.MustCompile(`(?i)\b(should|try\s+to|consider|maybe|might\s+want\s+to|could|possibly)\b`)
	memCriticalSection    = regexp.MustCompile(`(?i)^#+\s*.*(critical|important|required|mandatory|rules|must|essential)`)
	memCriticalKeyword    = regexp.MustCompile(`(?i)\b(critical|important|must|required|essential|mandatory|crucial)\b`)
	npmRunScriptReference = regexp.MustCompile(`npm\s+run\s+([a-zA-Z0-9_:-]+)`)
)

// MemoryValidator checks CLAUDE.md content quality: command references
// that exist, instructions worth their tokens, and layout the model can
// actually follow.
type MemoryValidator struct{}

func (v *MemoryValidator) Name() string { return "memory" }

func (v *MemoryValidator) Rules() []string {
	return []string{"CC-MEM-004", "CC-MEM-005", "CC-MEM-006", "CC-MEM-007", "CC-MEM-008", "CC-MEM-009", "CC-MEM-010"}
}

func (v *MemoryValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic
	lines := strings.Split(ctx.Content, "\n")

	if ctx.Enabled("CC-MEM-004") {
		diags = append(diags, checkNpmScripts(ctx, lines)...)
	}
	if ctx.Enabled("CC-MEM-005") {
		diags = append(diags, checkGenericInstructions(ctx, lines)...)
	}
	if ctx.Enabled("CC-MEM-006") {
		diags = append(diags, checkNegativeWithoutPositive(ctx, lines)...)
	}
	if ctx.Enabled("CC-MEM-007") {
		diags = append(diags, checkWeakConstraints(ctx, lines)...)
	}
	if ctx.Enabled("CC-MEM-008") {
		diags = append(diags, checkMemoryCriticalPlacement(ctx, lines)...)
	}
	if ctx.Enabled("CC-MEM-009") {
		if d, over := checkTokenBudget(ctx); over {
			diags = append(diags, d)
		}
	}
	if ctx.Enabled("CC-MEM-010") {
		if d, dup := checkReadmeDuplication(ctx); dup {
			diags = append(diags, d)
		}
	}
	return diags
}

// checkNpmScripts verifies every `npm run <script>` reference against the
// scripts table of the nearest package.json. Without a package.json the
// check stays silent.
func checkNpmScripts(ctx *FileContext, lines []string) []diag.Diagnostic {
	scripts, found := loadNpmScripts(ctx)
	if !found {
		return nil
	}
	var diags []diag.Diagnostic
	for i, line := range lines {
		for _, m := range npmRunScriptReference.FindAllStringSubmatchIndex(line, -1) {
			name := line[m[2]:m[3]]
			if scripts[name] {
				continue
			}
			diags = append(diags, diag.New(ctx.Path, i+1, m[0], "CC-MEM-004", diag.Warning,
				fmt.Sprintf("npm script '%s' not found in package.json", name)).
				WithSuggestion("Update the command or add the script to package.json"))
		}
	}
	return diags
}

func loadNpmScripts(ctx *FileContext) (map[string]bool, bool) {
	dir := ctx.Dir()
	for {
		raw, err := ctx.Cfg.FS.ReadFile(filepath.Join(dir, "package.json"))
		if err == nil {
			var pkg struct {
				Scripts map[string]json.RawMessage `json:"scripts"`
			}
			if json.Unmarshal(raw, &pkg) != nil {
				return nil, false
			}
			scripts := make(map[string]bool, len(pkg.Scripts))
			for name := range pkg.Scripts {
				scripts[name] = true
			}
			return scripts, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, false
		}
		dir = parent
	}
}

// checkGenericInstructions flags directives Claude already follows.
func checkGenericInstructions(ctx *FileContext, lines []string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for i, line := range lines {
		for _, pattern := range genericInstructionPatterns {
			m := pattern.FindStringIndex(line)
			if m == nil {
				continue
			}
			diags = append(diags, diag.New(ctx.Path, i+1, m[0], "CC-MEM-005", diag.Info,
				fmt.Sprintf("Generic instruction '%s' adds no project-specific signal", line[m[0]:m[1]])).
				WithSuggestion("Replace it with a project-specific instruction or remove it"))
		}
	}
	return diags
}

// checkNegativeWithoutPositive flags prohibitions with no alternative on
// the same or next line.
func checkNegativeWithoutPositive(ctx *FileContext, lines []string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for i, line := range lines {
		m := memNegativePattern.FindStringIndex(line)
		if m == nil {
			continue
		}
		if memPositivePattern.MatchString(line) {
			continue
		}
		if i+1 < len(lines) && memPositivePattern.MatchString(lines[i+1]) {
			continue
		}
		diags = append(diags, diag.New(ctx.Path, i+1, m[0], "CC-MEM-006", diag.Info,
			fmt.Sprintf("Negative instruction '%s' without a positive alternative", line[m[0]:m[1]])).
			WithSuggestion("State the preferred approach alongside the prohibition"))
	}
	return diags
}

// checkWeakConstraints flags hedged language under headers that declare
// the section critical.
func checkWeakConstraints(ctx *FileContext, lines []string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	section := ""
	inSection := false
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			if memCriticalSection.MatchString(line) {
				section = strings.TrimSpace(strings.TrimLeft(line, "#"))
				inSection = true
			} else {
				inSection = false
			}
		}
		if !inSection {
			continue
		}
		m := memWeakPattern.FindStringIndex(line)
		if m == nil {
			continue
		}
		diags = append(diags, diag.New(ctx.Path, i+1, m[0], "CC-MEM-007", diag.Warning,
			fmt.Sprintf("Weak constraint '%s' in critical section '%s'", line[m[0]:m[1]], section)).
			WithSuggestion("Use must, always, or never so the constraint binds"))
	}
	return diags
}

// checkMemoryCriticalPlacement flags critical keywords in the 40-60%
// zone of documents long enough for position to matter.
func checkMemoryCriticalPlacement(ctx *FileContext, lines []string) []diag.Diagnostic {
	if len(lines) < 10 {
		return nil
	}
	var diags []diag.Diagnostic
	total := float64(len(lines))
	for i, line := range lines {
		m := memCriticalKeyword.FindStringIndex(line)
		if m == nil {
			continue
		}
		percent := float64(i) / total * 100.0
		if percent <= 40.0 || percent >= 60.0 {
			continue
		}
		diags = append(diags, diag.New(ctx.Path, i+1, m[0], "CC-MEM-008", diag.Warning,
			fmt.Sprintf("Critical keyword '%s' at %.0f%% of the file, where model recall is weakest", line[m[0]:m[1]], percent)).
			WithSuggestion("Move critical instructions to the start or end of the file"))
	}
	return diags
}

func checkTokenBudget(ctx *FileContext) (diag.Diagnostic, bool) {
	charCount := len(ctx.Content)
	estimated := charCount / 4
	if estimated <= memoryTokenLimit {
		return diag.Diagnostic{}, false
	}
	d := diag.New(ctx.Path, 1, 0, "CC-MEM-009", diag.Warning,
		fmt.Sprintf("File is roughly %d tokens (%d characters), over the %d token budget", estimated, charCount, memoryTokenLimit)).
		WithSuggestion("Move detail into @imported files and keep the memory file short")
	return d, true
}

// checkReadmeDuplication compares word sets against a sibling README.md.
func checkReadmeDuplication(ctx *FileContext) (diag.Diagnostic, bool) {
	raw, err := ctx.Cfg.FS.ReadFile(filepath.Join(ctx.Dir(), "README.md"))
	if err != nil {
		return diag.Diagnostic{}, false
	}
	overlap := textOverlap(ctx.Content, string(raw))
	if overlap <= readmeOverlapThreshold {
		return diag.Diagnostic{}, false
	}
	d := diag.New(ctx.Path, 1, 0, "CC-MEM-010", diag.Warning,
		fmt.Sprintf("Content overlaps README.md by %.0f%% (threshold %.0f%%)", overlap*100, readmeOverlapThreshold*100)).
		WithSuggestion("Keep agent-specific instructions here and link the README instead of copying it")
	return d, true
}

// textOverlap is word-set Jaccard similarity, ignoring words of three
// characters or fewer.
func textOverlap(a, b string) float64 {
	wordsA := significantWords(a)
	wordsB := significantWords(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func significantWords(text string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 3 {
			out[w] = true
		}
	}
	return out
}
