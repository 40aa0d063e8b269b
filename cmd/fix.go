package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/agentlint/internal/fixes"
	"github.com/dotcommander/agentlint/internal/lint"
	"github.com/dotcommander/agentlint/internal/project"
)

var (
	fixDryRun bool
	fixUnsafe bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [path]",
	Short: "Apply automatic fixes for fixable findings",
	Long: `fix runs the same validation as lint and then applies the byte-exact
edits attached to the findings. Only fixes marked safe are applied unless
--unsafe is given. Overlapping or position-invalid fixes are skipped.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitFunc(runFix(args))
	},
}

func init() {
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Show what would change without writing files")
	fixCmd.Flags().BoolVar(&fixUnsafe, "unsafe", false, "Also apply fixes that may change behavior")
	rootCmd.AddCommand(fixCmd)
}

func runFix(args []string) int {
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

	root := target
	if cfg.FS.IsFile(target) {
		root = filepath.Dir(target)
	}

	results, err := fixes.Apply(cfg.FS, root, res.Diagnostics, fixes.Options{
		DryRun: fixDryRun,
		Unsafe: fixUnsafe,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if !quiet {
		for _, r := range results {
			fmt.Println(r.Path)
			for _, desc := range r.Applied {
				fmt.Printf("  %s\n", desc)
			}
		}
		if fixDryRun {
			fmt.Printf("%d files would change (dry run)\n", len(results))
		} else {
			fmt.Printf("%d files fixed\n", len(results))
		}
	}
	return 0
}
