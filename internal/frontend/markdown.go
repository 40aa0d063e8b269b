package frontend

import (
	"regexp"
	"strings"
)

// Header is a markdown ATX heading.
type Header struct {
	Level int
	Line  int // 1-based
	Text  string
}

// Link is a markdown inline link or image.
type Link struct {
	URL     string
	Line    int // 1-based
	Column  int // 0-based byte column of the opening bracket
	IsImage bool
}

var (
	headerPattern = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	linkPattern   = regexp.MustCompile(`(!?)\[[^\]]*\]\(([^)\s]*)\)`)
	importPattern = regexp.MustCompile(`(^|\s)@([^\s@]+)`)
)

// Headers scans markdown for ATX headings, skipping fenced code blocks.
func Headers(content string) []Header {
	var out []Header
	inCode := false
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			out = append(out, Header{Level: len(m[1]), Line: i + 1, Text: strings.TrimSpace(m[2])})
		}
	}
	return out
}

// Links scans markdown for inline links and images, skipping fenced code.
func Links(content string) []Link {
	var out []Link
	inCode := false
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		for _, m := range linkPattern.FindAllStringSubmatchIndex(line, -1) {
			isImage := m[3] > m[2]
			url := line[m[4]:m[5]]
			out = append(out, Link{URL: url, Line: i + 1, Column: m[0], IsImage: isImage})
		}
	}
	return out
}

// Import is an @path file reference in memory files.
type Import struct {
	Path   string
	Line   int // 1-based
	Column int // 0-based byte column of the '@'
}

// Imports extracts @path references, skipping fenced code blocks, inline
// code spans, and email-like tokens.
func Imports(content string) []Import {
	var out []Import
	inCode := false
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		clean := stripInlineCode(line)
		for _, m := range importPattern.FindAllStringSubmatchIndex(clean, -1) {
			path := strings.TrimRight(clean[m[4]:m[5]], ".,;:!?)")
			if path == "" || strings.Contains(path, "@") {
				continue
			}
			out = append(out, Import{Path: path, Line: i + 1, Column: m[4] - 1})
		}
	}
	return out
}

func stripInlineCode(line string) string {
	var b strings.Builder
	inSpan := false
	for _, r := range line {
		if r == '`' {
			inSpan = !inSpan
			b.WriteByte(' ')
			continue
		}
		if inSpan {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CodeBlockLines returns the set of 1-based line numbers inside fenced code
// blocks, fences included.
func CodeBlockLines(content string) map[int]bool {
	out := map[int]bool{}
	inCode := false
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		isFence := strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
		if isFence {
			out[i+1] = true
			inCode = !inCode
			continue
		}
		if inCode {
			out[i+1] = true
		}
	}
	return out
}

// HasUnclosedCodeBlock reports whether a fenced code block is left open at
// end of file.
func HasUnclosedCodeBlock(content string) (line int, open bool) {
	inCode := false
	openLine := 0
	for i, l := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCode = !inCode
			if inCode {
				openLine = i + 1
			}
		}
	}
	if inCode {
		return openLine, true
	}
	return 0, false
}

var malformedLinkPattern = regexp.MustCompile(`\[[^\]]*\]\([^)]*$`)

// MalformedLinkLine returns the first line holding a link whose closing
// parenthesis never arrives.
func MalformedLinkLine(content string) (int, bool) {
	inCode := false
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		if malformedLinkPattern.MatchString(line) {
			return i + 1, true
		}
	}
	return 0, false
}
