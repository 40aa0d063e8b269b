package lint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
)

// XMLValidator checks that the XML-style tags prompt authors use to
// delimit sections stay balanced. XML-001 unclosed, XML-002 mismatched
// close order, XML-003 closing tag with no opener.
type XMLValidator struct{}

func (v *XMLValidator) Name() string { return "xml" }

func (v *XMLValidator) Rules() []string {
	return []string{"XML-001", "XML-002", "XML-003"}
}

// xmlTagPattern matches <tag>, </tag>, and <tag/>. Attribute syntax,
// comments, and autolinks like <https://...> stay unmatched.
var xmlTagPattern = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9_-]*)\s*(/?)>`)

// Void HTML elements never take a closing tag.
var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true,
	"meta": true, "link": true, "wbr": true,
}

type xmlTag struct {
	name    string
	closing bool
	line    int
	column  int
}

func (v *XMLValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic
	var stack []xmlTag

	for _, tag := range extractXMLTags(ctx.Content) {
		if !tag.closing {
			stack = append(stack, tag)
			continue
		}
		if len(stack) == 0 {
			if ctx.Enabled("XML-003") {
				diags = append(diags, diag.New(ctx.Path, tag.line, tag.column, "XML-003", diag.Error,
					fmt.Sprintf("Unmatched closing tag '</%s>'", tag.name)).
					WithSuggestion(fmt.Sprintf("Remove '</%s>' or add matching opening tag '<%s>'", tag.name, tag.name)))
			}
			continue
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.name != tag.name && ctx.Enabled("XML-002") {
			diags = append(diags, diag.New(ctx.Path, tag.line, tag.column, "XML-002", diag.Error,
				fmt.Sprintf("Expected '</%s>' but found '</%s>'", top.name, tag.name)).
				WithSuggestion(fmt.Sprintf("Replace '</%s>' with '</%s>'", tag.name, top.name)))
		}
	}

	if ctx.Enabled("XML-001") {
		for _, tag := range stack {
			diags = append(diags, diag.New(ctx.Path, tag.line, tag.column, "XML-001", diag.Error,
				fmt.Sprintf("Unclosed XML tag '<%s>'", tag.name)).
				WithSuggestion(fmt.Sprintf("Add closing tag '</%s>'", tag.name)))
		}
	}

	return diags
}

// extractXMLTags scans line by line, ignoring fenced code blocks, inline
// code spans, self-closing tags, and void elements.
func extractXMLTags(content string) []xmlTag {
	var tags []xmlTag
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
		clean := stripInlineSpans(line)
		for _, m := range xmlTagPattern.FindAllStringSubmatchIndex(clean, -1) {
			name := clean[m[4]:m[5]]
			selfClosing := m[7] > m[6]
			if selfClosing || voidElements[strings.ToLower(name)] {
				continue
			}
			tags = append(tags, xmlTag{
				name:    name,
				closing: m[3] > m[2],
				line:    i + 1,
				column:  m[0],
			})
		}
	}
	return tags
}

// stripInlineSpans blanks `...` code spans so tags quoted as examples do
// not count toward balance.
func stripInlineSpans(line string) string {
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
