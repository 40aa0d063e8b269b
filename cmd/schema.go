package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/agentlint/internal/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema for agentlint.toml",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		data, err := config.GenerateSchema()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(2)
			return
		}
		fmt.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
