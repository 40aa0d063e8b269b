package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/agentlint/internal/config"
	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/fsys"
	"github.com/dotcommander/agentlint/internal/lint"
	"github.com/dotcommander/agentlint/internal/output"
	"github.com/dotcommander/agentlint/internal/project"
)

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Validate assistant configuration files (default command)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitFunc(runLint(args))
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

// runLint performs a full lint and returns the process exit code:
// 0 clean, 1 findings at or above the failure threshold, 2 internal
// failure, 3 too many files.
func runLint(args []string) int {
	cfg, target, ok := setup(args, os.Stderr)
	if !ok {
		return 2
	}

	res, err := project.Run(cfg, lint.NewRegistry(), target)
	if err != nil {
		var tooMany *project.ErrTooManyFiles
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.As(err, &tooMany) {
			return 3
		}
		return 2
	}

	res.Diagnostics = filterBySeverity(res.Diagnostics, cfg.Severity)

	if !quiet {
		if err := render(os.Stdout, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
	}

	counts := diag.Tally(res.Diagnostics)
	if counts.Errors > 0 {
		return 1
	}
	if strictMode && counts.Warnings > 0 {
		return 1
	}
	return 0
}

// setup resolves the target path and loads configuration, reporting config
// problems to w without aborting the run.
func setup(args []string, w io.Writer) (*config.Config, string, bool) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		fmt.Fprintf(w, "Error: resolving %s: %v\n", target, err)
		return nil, "", false
	}

	fs := fsys.NewOS()
	if !fs.Exists(abs) {
		fmt.Fprintf(w, "Error: %s does not exist\n", target)
		return nil, "", false
	}

	var cfg *config.Config
	var warning string
	if configPath != "" {
		cfg, warning = config.Load(fs, configPath)
	} else {
		dir := abs
		if fs.IsFile(abs) {
			dir = filepath.Dir(abs)
		}
		cfg, warning = config.Discover(fs, dir)
	}
	if warning != "" {
		fmt.Fprintln(w, warning)
	}
	for _, problem := range cfg.Validate() {
		fmt.Fprintf(w, "config: %s\n", problem)
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	return cfg, abs, true
}

func render(w io.Writer, res *project.Result) error {
	switch strings.ToLower(outputFormat) {
	case "json":
		return output.NewJSONFormatter(w, "agentlint", Version).Format(res)
	default:
		return output.NewConsoleFormatter(w, !noColor, verbose).Format(res)
	}
}

// filterBySeverity drops diagnostics below the configured reporting
// threshold. Unknown values report everything.
func filterBySeverity(diags []diag.Diagnostic, severity string) []diag.Diagnostic {
	var max diag.Level
	switch strings.ToLower(severity) {
	case "error":
		max = diag.Error
	case "warning":
		max = diag.Warning
	default:
		return diags
	}
	out := diags[:0]
	for _, d := range diags {
		if d.Level <= max {
			out = append(out, d)
		}
	}
	return out
}
