package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmdFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for _, name := range []string{
		"config", "format", "no-color", "verbose", "quiet", "strict", "jobs",
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, flags.Lookup(name), "flag %s should exist", name)
		})
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"lint", "fix", "rules", "schema"} {
		assert.True(t, names[want], "subcommand %s should be registered", want)
	}
}

func TestExecuteInvalidFlag(t *testing.T) {
	oldExit := exitFunc
	oldArgs := os.Args
	defer func() {
		exitFunc = oldExit
		os.Args = oldArgs
	}()

	var code = -1
	exitFunc = func(c int) { code = c }
	os.Args = []string{"agentlint", "--no-such-flag"}

	Execute()

	assert.Equal(t, 2, code, "flag errors exit with the internal-failure code")
}

func TestFixCmdFlags(t *testing.T) {
	flags := fixCmd.Flags()
	assert.NotNil(t, flags.Lookup("dry-run"))
	assert.NotNil(t, flags.Lookup("unsafe"))
}

func TestVersionDefault(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.Equal(t, Version, rootCmd.Version)
}
