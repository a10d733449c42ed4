package main

import (
	"os"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands print their own formatted errors; flag and usage
		// errors are printed by cobra. Only the exit code is left.
		os.Exit(cli.GetExitCode(err))
	}
}
