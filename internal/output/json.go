package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/project"
)

// JSONFormatter emits a machine-readable report with a stable shape.
type JSONFormatter struct {
	w       io.Writer
	tool    string
	version string
}

// NewJSONFormatter creates a JSON formatter stamped with the tool identity.
func NewJSONFormatter(w io.Writer, tool, version string) *JSONFormatter {
	return &JSONFormatter{w: w, tool: tool, version: version}
}

type jsonReport struct {
	Tool        string            `json:"tool"`
	Version     string            `json:"version"`
	Timestamp   string            `json:"timestamp"`
	Summary     jsonSummary       `json:"summary"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

type jsonSummary struct {
	Errors       int   `json:"errors"`
	Warnings     int   `json:"warnings"`
	Infos        int   `json:"infos"`
	FilesChecked int   `json:"files_checked"`
	DurationMS   int64 `json:"duration_ms"`
}

// Format writes the report as indented JSON. Diagnostics keep their sorted
// order so output is byte-stable for a given input tree.
func (f *JSONFormatter) Format(res *project.Result) error {
	counts := diag.Tally(res.Diagnostics)
	diags := res.Diagnostics
	if diags == nil {
		diags = []diag.Diagnostic{}
	}
	report := jsonReport{
		Tool:      f.tool,
		Version:   f.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Summary: jsonSummary{
			Errors:       counts.Errors,
			Warnings:     counts.Warnings,
			Infos:        counts.Infos,
			FilesChecked: res.FilesChecked,
			DurationMS:   res.Elapsed.Milliseconds(),
		},
		Diagnostics: diags,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(f.w, string(data))
	return err
}
