package lint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
)

// maxPromptScanSize guards the regex passes against pathological input.
const maxPromptScanSize = 64 * 1024

var (
	criticalKeywordPattern = regexp.MustCompile(`(?i)\b(critical|important|must|required|essential|mandatory|crucial|never|always)\b`)
	cotPhrasePattern       = regexp.MustCompile(`(?i)\b(think\s+step\s+by\s+step|let'?s\s+think|reason\s+through|break\s+(?:it\s+)?down\s+into\s+steps|work\s+through\s+this\s+(?:step\s+by\s+step|systematically))\b`)
	simpleTaskPattern      = regexp.MustCompile(`(?i)\b(read\s+(?:the\s+)?file|write\s+(?:the\s+)?file|copy\s+(?:the\s+)?file|move\s+(?:the\s+)?file|delete\s+(?:the\s+)?file|list\s+files|run\s+(?:the\s+)?(?:command|script)|execute\s+(?:the\s+)?(?:command|script)|format\s+(?:the\s+)?(?:code|output)|rename\s+(?:the\s+)?file|create\s+(?:a\s+)?(?:file|directory|folder)|check\s+(?:if|whether)\s+(?:file|directory)\s+exists)\b`)
	weakLanguagePattern    = regexp.MustCompile(`(?i)\b(should|try\s+to|consider|maybe|might|could|possibly|preferably|ideally|optionally)\b`)
	criticalSectionPattern = regexp.MustCompile(`(?i)^#+\s*.*\b(critical|important|required|mandatory|rules|must|essential|security|danger)\b`)
	ambiguousTermPattern   = regexp.MustCompile(`(?i)\b(usually|sometimes|if\s+possible|when\s+appropriate|as\s+needed|often|occasionally|generally|typically|normally|frequently|regularly|commonly)\b`)
	redundantPhrasePattern = regexp.MustCompile(`(?i)\b(be helpful|be accurate|be concise|follow instructions|do your best|try your hardest|respond accurately|answer correctly|be thorough|be detailed|be precise|be clear|be professional|be consistent|be efficient)\b`)
	negativeOnlyPattern    = regexp.MustCompile(`(?i)^[*\-]?\s*(don't|do not|never|avoid|refrain from)\b`)
	positiveAltPattern     = regexp.MustCompile(`(?i)\b(instead|rather|prefer|use\s+\S+\s+instead|better to|should\s+\S+\s+instead)\b`)
)

// PromptValidator applies prompt-engineering heuristics to instruction
// files. All findings are warnings; wording is advice, not schema.
type PromptValidator struct{}

func (v *PromptValidator) Name() string { return "prompt" }

func (v *PromptValidator) Rules() []string {
	return []string{"PE-001", "PE-002", "PE-003", "PE-004", "PE-005", "PE-006"}
}

func (v *PromptValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	if len(ctx.Content) > maxPromptScanSize {
		return nil
	}

	var diags []diag.Diagnostic
	lines := strings.Split(ctx.Content, "\n")

	if ctx.Enabled("PE-001") {
		diags = append(diags, checkCriticalInMiddle(ctx, lines)...)
	}
	if ctx.Enabled("PE-002") {
		diags = append(diags, checkCotOnSimpleTasks(ctx, lines)...)
	}
	if ctx.Enabled("PE-003") {
		diags = append(diags, checkWeakImperatives(ctx, lines)...)
	}
	if ctx.Enabled("PE-004") {
		diags = append(diags, checkAmbiguousTerms(ctx, lines)...)
	}
	if ctx.Enabled("PE-005") {
		diags = append(diags, checkRedundantInstructions(ctx, lines)...)
	}
	if ctx.Enabled("PE-006") {
		diags = append(diags, checkNegativeOnly(ctx, lines)...)
	}
	return diags
}

// checkCriticalInMiddle flags critical keywords landing in the 40-60%
// zone where model recall drops ("lost in the middle"). Documents under
// ten lines are too short for position to matter.
func checkCriticalInMiddle(ctx *FileContext, lines []string) []diag.Diagnostic {
	if len(lines) < 10 {
		return nil
	}
	var diags []diag.Diagnostic
	total := float64(len(lines))
	for i, line := range lines {
		m := criticalKeywordPattern.FindStringIndex(line)
		if m == nil {
			continue
		}
		percent := float64(i) / total * 100.0
		if percent < 40.0 || percent >= 60.0 {
			continue
		}
		diags = append(diags, diag.New(ctx.Path, i+1, m[0]+1, "PE-001", diag.Warning,
			fmt.Sprintf("Critical content '%s' is at %.0f%% of the document, where recall is weakest", line[m[0]:m[1]], percent)).
			WithSuggestion("Move critical instructions to the start or end of the document"))
	}
	return diags
}

// checkCotOnSimpleTasks flags chain-of-thought phrasing within five lines
// of a simple direct task, where step-by-step prompting hurts.
func checkCotOnSimpleTasks(ctx *FileContext, lines []string) []diag.Diagnostic {
	type taskHit struct {
		line int
		text string
	}
	var tasks []taskHit
	for i, line := range lines {
		if m := simpleTaskPattern.FindString(line); m != "" {
			tasks = append(tasks, taskHit{line: i, text: m})
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	var diags []diag.Diagnostic
	for i, line := range lines {
		m := cotPhrasePattern.FindStringIndex(line)
		if m == nil {
			continue
		}
		for _, task := range tasks {
			distance := i - task.line
			if distance < 0 {
				distance = -distance
			}
			if distance > 5 {
				continue
			}
			diags = append(diags, diag.New(ctx.Path, i+1, m[0]+1, "PE-002", diag.Warning,
				fmt.Sprintf("Chain-of-thought phrase '%s' applied to simple task '%s'", line[m[0]:m[1]], task.text)).
				WithSuggestion("Drop step-by-step prompting for simple, direct tasks"))
			break
		}
	}
	return diags
}

// checkWeakImperatives flags should/try/consider inside sections whose
// header marks them as critical. A non-critical header ends the section.
func checkWeakImperatives(ctx *FileContext, lines []string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	section := ""
	inSection := false
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			if criticalSectionPattern.MatchString(line) {
				section = strings.TrimSpace(strings.TrimLeft(line, "#"))
				inSection = true
			} else {
				inSection = false
			}
		}
		if !inSection {
			continue
		}
		m := weakLanguagePattern.FindStringIndex(line)
		if m == nil {
			continue
		}
		diags = append(diags, diag.New(ctx.Path, i+1, m[0]+1, "PE-003", diag.Warning,
			fmt.Sprintf("Weak term '%s' in critical section '%s'", line[m[0]:m[1]], section)).
			WithSuggestion("Use must, always, or never so the instruction is binding"))
	}
	return diags
}

// checkAmbiguousTerms flags hedge words that leave an instruction's
// applicability undefined. Terms inside parentheses are descriptive and
// skipped, as are code blocks, comment lines, and shebangs.
func checkAmbiguousTerms(ctx *FileContext, lines []string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	inCode := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			continue
		}
		if inCode || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#!") {
			continue
		}
		for _, m := range ambiguousTermPattern.FindAllStringIndex(line, -1) {
			if insideParens(line, m[0], m[1]) {
				continue
			}
			diags = append(diags, diag.New(ctx.Path, i+1, m[0]+1, "PE-004", diag.Warning,
				fmt.Sprintf("Ambiguous term '%s' leaves the instruction open to interpretation", line[m[0]:m[1]])).
				WithSuggestion("State exactly when the instruction applies"))
		}
	}
	return diags
}

func insideParens(line string, start, end int) bool {
	before := line[:start]
	after := line[end:]
	open := strings.LastIndex(before, "(")
	if open < 0 {
		return false
	}
	if strings.Contains(before[open:], ")") {
		return false
	}
	return strings.Contains(after, ")")
}

// checkRedundantInstructions flags generic directives models follow by
// default, which only spend context tokens.
func checkRedundantInstructions(ctx *FileContext, lines []string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	inCode := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		for _, m := range redundantPhrasePattern.FindAllStringIndex(line, -1) {
			diags = append(diags, diag.New(ctx.Path, i+1, m[0]+1, "PE-005", diag.Warning,
				fmt.Sprintf("Redundant generic instruction '%s'", line[m[0]:m[1]])).
				WithSuggestion("Remove it; models already behave this way by default"))
		}
	}
	return diags
}

// checkNegativeOnly flags prohibitions with no positive alternative on
// the same line or the two following lines.
func checkNegativeOnly(ctx *FileContext, lines []string) []diag.Diagnostic {
	var diags []diag.Diagnostic
	inCode := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		m := negativeOnlyPattern.FindStringIndex(line)
		if m == nil {
			continue
		}
		windowEnd := i + 3
		if windowEnd > len(lines) {
			windowEnd = len(lines)
		}
		hasPositive := false
		windowInCode := false
		for _, w := range lines[i:windowEnd] {
			if strings.HasPrefix(strings.TrimSpace(w), "```") {
				windowInCode = !windowInCode
				continue
			}
			if windowInCode {
				continue
			}
			if positiveAltPattern.MatchString(w) {
				hasPositive = true
				break
			}
		}
		if hasPositive {
			continue
		}
		diags = append(diags, diag.New(ctx.Path, i+1, m[0]+1, "PE-006", diag.Warning,
			fmt.Sprintf("Negative instruction without a positive alternative: %s", strings.TrimSpace(line))).
			WithSuggestion("Say what to do instead of only what to avoid"))
	}
	return diags
}
