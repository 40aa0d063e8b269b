// Package frontend parses the textual surfaces validators work on: YAML
// frontmatter blocks and the markdown structures (headers, links, fenced
// code) that rules inspect.
package frontend

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the result of splitting a markdown file into its YAML
// frontmatter block and body.
type Frontmatter struct {
	// Raw is the text between the --- fences, without the fences.
	Raw string
	// StartLine is the 1-based line of the opening fence.
	StartLine int
	// EndLine is the 1-based line of the closing fence.
	EndLine int
	// RawStart is the byte offset of the first frontmatter character.
	RawStart int
	// Body is everything after the closing fence.
	Body string
	// BodyLine is the 1-based line the body starts on.
	BodyLine int
}

// Split extracts a leading frontmatter block. The opening fence may follow
// blank lines but must be the first non-empty line. ok is false when the
// fence is absent or the closing fence is missing.
func Split(content string) (Frontmatter, bool) {
	lines := strings.SplitAfter(content, "\n")
	first := 0
	offset := 0
	for first < len(lines) && strings.TrimSpace(strings.TrimSuffix(lines[first], "\n")) == "" {
		offset += len(lines[first])
		first++
	}
	if first >= len(lines) || strings.TrimSpace(strings.TrimSuffix(lines[first], "\n")) != "---" {
		return Frontmatter{}, false
	}
	offset += len(lines[first])
	rawStart := offset
	var raw strings.Builder
	for i := first + 1; i < len(lines); i++ {
		bare := strings.TrimRight(lines[i], "\r\n")
		if strings.TrimSpace(bare) == "---" {
			bodyStart := offset + len(lines[i])
			body := ""
			if bodyStart < len(content) {
				body = content[bodyStart:]
			}
			return Frontmatter{
				Raw:       raw.String(),
				StartLine: first + 1,
				EndLine:   i + 1,
				RawStart:  rawStart,
				Body:      body,
				BodyLine:  i + 2,
			}, true
		}
		raw.WriteString(lines[i])
		offset += len(lines[i])
	}
	return Frontmatter{}, false
}

// Parsed is frontmatter decoded into a generic map plus per-key line
// positions for diagnostics.
type Parsed struct {
	Frontmatter
	Data map[string]any
	// KeyLines maps top-level keys to their 1-based line in the file.
	KeyLines map[string]int
	// KeyOrder preserves the document order of top-level keys.
	KeyOrder []string
}

// Parse splits and decodes frontmatter. A missing block returns (nil, false,
// nil); a present but invalid block returns the YAML error.
func Parse(content string) (*Parsed, bool, error) {
	fm, ok := Split(content)
	if !ok {
		return nil, false, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(fm.Raw), &node); err != nil {
		return nil, true, fmt.Errorf("invalid YAML frontmatter: %w", HumanizeYAMLError(err))
	}

	data := map[string]any{}
	keyLines := map[string]int{}
	var keyOrder []string
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.MappingNode {
		mapping := node.Content[0]
		if err := mapping.Decode(&data); err != nil {
			return nil, true, fmt.Errorf("invalid YAML frontmatter: %w", HumanizeYAMLError(err))
		}
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			k := mapping.Content[i]
			keyLines[k.Value] = k.Line + fm.StartLine
			keyOrder = append(keyOrder, k.Value)
		}
	} else if len(node.Content) > 0 {
		return nil, true, fmt.Errorf("invalid YAML frontmatter: expected a mapping of keys to values")
	}

	return &Parsed{
		Frontmatter: fm,
		Data:        data,
		KeyLines:    keyLines,
		KeyOrder:    keyOrder,
	}, true, nil
}

// KeyLine returns the 1-based line of a top-level key, or the opening fence
// line when unknown.
func (p *Parsed) KeyLine(key string) int {
	if line, ok := p.KeyLines[key]; ok {
		return line
	}
	return p.StartLine
}

// StringField returns a trimmed string field and whether it was present as
// a string.
func (p *Parsed) StringField(key string) (string, bool) {
	v, ok := p.Data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return strings.TrimSpace(s), ok
}

// StringList coerces a field into a list of strings. Accepts a YAML
// sequence of scalars or a single comma-separated scalar.
func (p *Parsed) StringList(key string) ([]string, bool) {
	v, ok := p.Data[key]
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, true
	case string:
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, pt := range parts {
			if t := strings.TrimSpace(pt); t != "" {
				out = append(out, t)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// HumanizeYAMLError rewrites the yaml.v3 errors users hit most often into
// actionable messages and strips the trailing position noise.
func HumanizeYAMLError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "cannot unmarshal !!str") && strings.Contains(msg, "into []") {
		return fmt.Errorf("expected a YAML list (use '- item' syntax on separate lines), not a comma-separated string")
	}
	if idx := strings.Index(msg, " at line "); idx > 0 {
		msg = msg[:idx]
	}
	msg = strings.TrimPrefix(msg, "yaml: ")
	return fmt.Errorf("%s", msg)
}
