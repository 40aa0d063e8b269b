package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var (
	configPath   string
	outputFormat string
	noColor      bool
	verbose      bool
	quiet        bool
	strictMode   bool
	jobs         int
)

// exitFunc is swapped out in tests.
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "agentlint [path]",
	Short: "agentlint validates AI assistant configuration files",
	Long: `agentlint scans a project for AI coding assistant artifacts (skills,
agent manifests, hooks, MCP configs, instruction files and per-tool rules)
and reports structural problems, security hazards, and prompt-quality
issues.

Without a path it lints the current directory. Pass a file to lint just
that file, or a directory to lint the whole tree.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitFunc(runLint(args))
	},
}

// Execute runs the root command. Argument or flag errors exit with the
// internal-failure code; lint findings set their own codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to agentlint.toml (auto-discovered if not specified)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "console", "Output format (console|json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show assumptions and available fixes")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the report, exit code only")
	rootCmd.PersistentFlags().BoolVar(&strictMode, "strict", false, "Treat warnings as failures")
	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 0, "Number of files validated in parallel (default: CPU count)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
	viper.BindPFlag("jobs", rootCmd.PersistentFlags().Lookup("jobs"))
}
