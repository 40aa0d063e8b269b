// Package output renders lint results for humans and machines.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/project"
)

// ConsoleFormatter renders a grouped, severity-colored report.
type ConsoleFormatter struct {
	w        io.Writer
	colorize bool
	verbose  bool

	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	fileStyle    lipgloss.Style
	okStyle      lipgloss.Style
	dimStyle     lipgloss.Style
}

// NewConsoleFormatter creates a console formatter. colorize false strips all
// styling for non-TTY output and --no-color.
func NewConsoleFormatter(w io.Writer, colorize, verbose bool) *ConsoleFormatter {
	f := &ConsoleFormatter{w: w, colorize: colorize, verbose: verbose}
	if colorize {
		f.errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		f.warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		f.infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		f.fileStyle = lipgloss.NewStyle().Bold(true)
		f.okStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
		f.dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
	return f
}

// Format writes the report.
func (f *ConsoleFormatter) Format(res *project.Result) error {
	files, byFile := groupByFile(res.Diagnostics)

	for _, file := range files {
		fmt.Fprintf(f.w, "%s\n", f.fileStyle.Render(file))
		for _, d := range byFile[file] {
			f.printDiagnostic(d)
		}
		fmt.Fprintln(f.w)
	}

	counts := diag.Tally(res.Diagnostics)
	if len(res.Diagnostics) == 0 {
		fmt.Fprintf(f.w, "%s %s\n",
			f.okStyle.Render("✓ All passed"),
			f.dimStyle.Render(fmt.Sprintf("(%d files, %v)", res.FilesChecked, res.Elapsed.Round(time.Millisecond))))
		return nil
	}

	fmt.Fprintf(f.w, "%d errors, %d warnings, %d infos across %d files (%v)\n",
		counts.Errors, counts.Warnings, counts.Infos,
		res.FilesChecked, res.Elapsed.Round(time.Millisecond))
	return nil
}

func (f *ConsoleFormatter) printDiagnostic(d diag.Diagnostic) {
	var mark string
	var style lipgloss.Style
	switch d.Level {
	case diag.Error:
		mark, style = "✘", f.errorStyle
	case diag.Warning:
		mark, style = "⚠", f.warningStyle
	default:
		mark, style = "·", f.infoStyle
	}

	fmt.Fprintf(f.w, "  %s %s %d:%d %s %s\n",
		style.Render(mark), style.Render(d.Level.String()),
		d.Line, d.Column, d.Rule, d.Message)

	if d.Suggestion != nil {
		fmt.Fprintf(f.w, "      %s\n", f.dimStyle.Render("suggestion: "+*d.Suggestion))
	}
	if f.verbose && d.Assumption != nil {
		fmt.Fprintf(f.w, "      %s\n", f.dimStyle.Render("assumption: "+*d.Assumption))
	}
	if f.verbose {
		for _, fix := range d.Fixes {
			safety := "unsafe"
			if fix.Safe {
				safety = "safe"
			}
			fmt.Fprintf(f.w, "      %s\n", f.dimStyle.Render(fmt.Sprintf("fix (%s): %s", safety, fix.Description)))
		}
	}
}

// groupByFile buckets sorted diagnostics per file. Files come back in the
// order of their worst finding, matching the overall sort.
func groupByFile(diags []diag.Diagnostic) ([]string, map[string][]diag.Diagnostic) {
	var files []string
	byFile := make(map[string][]diag.Diagnostic)
	for _, d := range diags {
		if _, ok := byFile[d.File]; !ok {
			files = append(files, d.File)
		}
		byFile[d.File] = append(byFile[d.File], d)
	}
	return files, byFile
}
