// Package diag provides the diagnostic types shared across the agentlint
// codebase. This package is at the bottom of the dependency graph and should
// not import any other internal packages to avoid circular dependencies.
package diag

import (
	"fmt"
	"sort"
)

// Level is the severity of a diagnostic. Lower values sort first.
type Level int

const (
	Error Level = iota
	Warning
	Info
)

// String returns the lowercase name used in output.
func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// MarshalJSON renders the level as its string name.
func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// Fix is a byte-exact edit to the file a diagnostic refers to.
// StartByte == EndByte means insertion; an empty Replacement with
// StartByte < EndByte means deletion.
type Fix struct {
	StartByte   int    `json:"start_byte"`
	EndByte     int    `json:"end_byte"`
	Replacement string `json:"replacement"`
	Description string `json:"description"`
	Safe        bool   `json:"safe"`
}

// IsInsertion reports whether the fix inserts without removing anything.
func (f Fix) IsInsertion() bool { return f.StartByte == f.EndByte }

// IsDeletion reports whether the fix removes a span without replacement.
func (f Fix) IsDeletion() bool { return f.Replacement == "" && f.StartByte < f.EndByte }

// Diagnostic is a single finding against a file. Line is 1-based,
// Column is 0-based.
type Diagnostic struct {
	File       string  `json:"file"`
	Line       int     `json:"line"`
	Column     int     `json:"column"`
	Rule       string  `json:"rule"`
	Level      Level   `json:"level"`
	Message    string  `json:"message"`
	Suggestion *string `json:"suggestion,omitempty"`
	Assumption *string `json:"assumption,omitempty"`
	Fixes      []Fix   `json:"fixes,omitempty"`
}

// WithSuggestion returns a copy carrying a suggestion string.
func (d Diagnostic) WithSuggestion(s string) Diagnostic {
	d.Suggestion = &s
	return d
}

// WithAssumption returns a copy carrying an assumption note.
func (d Diagnostic) WithAssumption(a string) Diagnostic {
	d.Assumption = &a
	return d
}

// WithFix returns a copy with the fix appended.
func (d Diagnostic) WithFix(f Fix) Diagnostic {
	d.Fixes = append(d.Fixes, f)
	return d
}

// New constructs a diagnostic with the common fields filled in.
func New(file string, line, column int, rule string, level Level, message string) Diagnostic {
	return Diagnostic{
		File:    file,
		Line:    line,
		Column:  column,
		Rule:    rule,
		Level:   level,
		Message: message,
	}
}

// Less reports whether a should sort before b. The sort key is
// (level, file, line, column, rule), each ascending, errors first.
func Less(a, b Diagnostic) bool {
	if a.Level != b.Level {
		return a.Level < b.Level
	}
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	if a.Column != b.Column {
		return a.Column < b.Column
	}
	return a.Rule < b.Rule
}

// Sort orders diagnostics deterministically in place.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool { return Less(diags[i], diags[j]) })
}

// Count tallies diagnostics per level.
type Count struct {
	Errors   int
	Warnings int
	Infos    int
}

// Tally counts diagnostics by level.
func Tally(diags []Diagnostic) Count {
	var c Count
	for _, d := range diags {
		switch d.Level {
		case Error:
			c.Errors++
		case Warning:
			c.Warnings++
		default:
			c.Infos++
		}
	}
	return c
}
