// Package textutil provides line and byte-span helpers used by the rule
// engine. Fixes are byte-exact, so every helper that locates a span applies
// a uniqueness guard: if the target text appears zero times or more than
// once, no span is returned and the caller emits its diagnostic without a
// fix.
package textutil

import "strings"

// LineStarts returns the byte offset of the start of each line.
// The first entry is always 0.
func LineStarts(content string) []int {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// LineColAt converts a byte offset into a 1-based line and 0-based column.
func LineColAt(content string, offset int) (line, col int) {
	line = 1
	lineStart := 0
	for i := 0; i < offset && i < len(content); i++ {
		if content[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart
}

// LineAt returns the 1-based line number containing the byte offset.
func LineAt(content string, offset int) int {
	line, _ := LineColAt(content, offset)
	return line
}

// LineSpan returns the byte span of the 1-based line number, including the
// trailing newline when present. ok is false when the line does not exist.
func LineSpan(content string, lineNum int) (start, end int, ok bool) {
	if lineNum < 1 {
		return 0, 0, false
	}
	starts := LineStarts(content)
	if lineNum > len(starts) {
		return 0, 0, false
	}
	start = starts[lineNum-1]
	if lineNum < len(starts) {
		return start, starts[lineNum], true
	}
	return start, len(content), start < len(content) || lineNum == 1
}

// FindFieldLine returns the 1-based line number of the first line inside the
// YAML frontmatter block whose key matches field. Returns 1 when not found
// so diagnostics still point somewhere sensible.
func FindFieldLine(content, field string) int {
	inFrontmatter := false
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "---" {
			if !inFrontmatter {
				inFrontmatter = true
				continue
			}
			break
		}
		if !inFrontmatter {
			continue
		}
		if strings.HasPrefix(trimmed, field+":") {
			return i + 1
		}
	}
	return 1
}

// CountLines counts the number of lines in content as an editor would show
// them: a trailing newline does not add an empty final line.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
