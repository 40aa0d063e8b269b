package textutil

import (
	"strings"
	"unicode"
)

// Span is a half-open byte range into a file's content.
type Span struct {
	Start int
	End   int
}

// findAll returns the start offsets of every non-overlapping occurrence.
func findAll(content, needle string) []int {
	var out []int
	if needle == "" {
		return out
	}
	from := 0
	for {
		idx := strings.Index(content[from:], needle)
		if idx < 0 {
			return out
		}
		out = append(out, from+idx)
		from += idx + len(needle)
	}
}

// unique returns the single occurrence offset, or -1 when the needle is
// absent or ambiguous.
func unique(content, needle string) int {
	hits := findAll(content, needle)
	if len(hits) != 1 {
		return -1
	}
	return hits[0]
}

// JSONStringValueSpan locates the quoted value of `"key": "value"` in JSON
// text, returning the span of the value including its quotes. The key/value
// pairing must appear exactly once.
func JSONStringValueSpan(content, key, value string) (Span, bool) {
	quotedKey := `"` + key + `"`
	keyHits := findAll(content, quotedKey)

	var spans []Span
	for _, keyAt := range keyHits {
		rest := content[keyAt+len(quotedKey):]
		i := 0
		for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
			i++
		}
		if i >= len(rest) || rest[i] != ':' {
			continue
		}
		i++
		for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
			i++
		}
		if i >= len(rest) || rest[i] != '"' {
			continue
		}
		valStart := keyAt + len(quotedKey) + i
		close := strings.IndexByte(rest[i+1:], '"')
		if close < 0 {
			continue
		}
		got := rest[i+1 : i+1+close]
		if got != value {
			continue
		}
		spans = append(spans, Span{valStart, valStart + close + 2})
	}
	if len(spans) != 1 {
		return Span{}, false
	}
	return spans[0], true
}

// JSONKeySpan locates the quoted key `"key"` in JSON text, including quotes.
// The key must appear exactly once.
func JSONKeySpan(content, key string) (Span, bool) {
	quoted := `"` + key + `"`
	at := unique(content, quoted)
	if at < 0 {
		return Span{}, false
	}
	return Span{at, at + len(quoted)}, true
}

// JSONFieldLineSpan locates the full line carrying the field `"key":`,
// from the start of its leading indentation through the trailing comma and
// newline. Used for safe field deletions. The key must appear exactly once.
func JSONFieldLineSpan(content, key string) (Span, bool) {
	quoted := `"` + key + `"`
	at := unique(content, quoted)
	if at < 0 {
		return Span{}, false
	}
	start := at
	for start > 0 && (content[start-1] == ' ' || content[start-1] == '\t') {
		start--
	}
	if start > 0 && content[start-1] != '\n' {
		return Span{}, false
	}
	end := at + len(quoted)
	depth := 0
	inString := false
	for end < len(content) {
		c := content[end]
		if inString {
			if c == '\\' {
				end += 2
				continue
			}
			if c == '"' {
				inString = false
			}
			end++
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			if depth == 0 {
				return spanThroughNewline(content, start, end), true
			}
			depth--
		case ',':
			if depth == 0 {
				return spanThroughNewline(content, start, end+1), true
			}
		case '\n':
			if depth == 0 {
				return Span{start, end + 1}, true
			}
		}
		end++
	}
	return Span{start, end}, true
}

func spanThroughNewline(content string, start, end int) Span {
	for end < len(content) && content[end] != '\n' {
		if !unicode.IsSpace(rune(content[end])) {
			return Span{start, end}
		}
		end++
	}
	if end < len(content) {
		end++
	}
	return Span{start, end}
}

// YAMLKeyLineSpan locates the full line whose first token is `key:` at any
// indentation, from line start through its newline. The line must be unique.
func YAMLKeyLineSpan(content, key string) (Span, bool) {
	var spans []Span
	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, key+":") || trimmed == key+":" {
			spans = append(spans, Span{offset, offset + len(line)})
		}
		offset += len(line)
	}
	if len(spans) != 1 {
		return Span{}, false
	}
	return spans[0], true
}

// TOMLStringValueSpan locates the quoted value of a top-level
// `key = "value"` TOML assignment, returning the span of the value including
// quotes. The assignment must be unique.
func TOMLStringValueSpan(content, key, value string) (Span, bool) {
	var spans []Span
	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		rest := strings.TrimLeft(line, " \t")
		indent := len(line) - len(rest)
		if strings.HasPrefix(rest, key) {
			after := rest[len(key):]
			trimmed := strings.TrimLeft(after, " \t")
			if strings.HasPrefix(trimmed, "=") {
				val := strings.TrimLeft(trimmed[1:], " \t")
				want := `"` + value + `"`
				if strings.HasPrefix(val, want) {
					valAt := offset + indent + (len(rest) - len(val))
					spans = append(spans, Span{valAt, valAt + len(want)})
				}
			}
		}
		offset += len(line)
	}
	if len(spans) != 1 {
		return Span{}, false
	}
	return spans[0], true
}

// FrontmatterValueSpan locates the value portion of a `key: value` line
// inside the YAML frontmatter block, excluding surrounding quotes and any
// trailing ` #` comment. Comment lines are skipped. Returns false unless the
// key appears exactly once with a non-empty value.
func FrontmatterValueSpan(content, key string) (Span, bool) {
	var spans []Span
	offset := 0
	inFrontmatter := false
	for _, line := range strings.SplitAfter(content, "\n") {
		bare := strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimSpace(bare)
		if trimmed == "---" {
			if !inFrontmatter {
				inFrontmatter = true
				offset += len(line)
				continue
			}
			break
		}
		if !inFrontmatter || strings.HasPrefix(trimmed, "#") {
			offset += len(line)
			continue
		}
		if strings.HasPrefix(trimmed, key+":") {
			indent := len(bare) - len(strings.TrimLeft(bare, " \t"))
			valPart := bare[indent+len(key)+1:]
			valTrimmed := strings.TrimLeft(valPart, " \t")
			lead := len(valPart) - len(valTrimmed)
			valStart := offset + indent + len(key) + 1 + lead

			// Strip a trailing comment introduced by " #".
			if idx := strings.Index(valTrimmed, " #"); idx >= 0 {
				valTrimmed = strings.TrimRight(valTrimmed[:idx], " \t")
			}
			// Strip one layer of matching quotes.
			if len(valTrimmed) >= 2 {
				if (valTrimmed[0] == '"' && valTrimmed[len(valTrimmed)-1] == '"') ||
					(valTrimmed[0] == '\'' && valTrimmed[len(valTrimmed)-1] == '\'') {
					valStart++
					valTrimmed = valTrimmed[1 : len(valTrimmed)-1]
				}
			}
			if valTrimmed != "" {
				spans = append(spans, Span{valStart, valStart + len(valTrimmed)})
			}
		}
		offset += len(line)
	}
	if len(spans) != 1 {
		return Span{}, false
	}
	return spans[0], true
}

// DetectIndentUnit infers the indentation unit used by a JSON document.
// Falls back to two spaces.
func DetectIndentUnit(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || len(trimmed) == len(line) {
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		if strings.HasPrefix(indent, "\t") {
			return "\t"
		}
		return indent
	}
	return "  "
}
