package main

import "github.com/dotcommander/agentlint/cmd"

func main() {
	cmd.Execute()
}
