package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotcommander/agentlint/internal/lint"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List every validator and the rule ids it can emit",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, v := range lint.NewRegistry().All() {
			fmt.Println(v.Name())
			for _, rule := range v.Rules() {
				fmt.Printf("  %s\n", rule)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
