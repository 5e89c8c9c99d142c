// Package main is the entrypoint for the rrclaw CLI.
package main

import (
	"fmt"
	"os"

	"github.com/yzzting/rrclaw/cmd/rrclaw/commands"
)

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	rootCmd := commands.NewRootCmd(version)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
