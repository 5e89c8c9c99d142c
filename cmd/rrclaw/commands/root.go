// Package commands implements the rrclaw cobra CLI: serve (run the agent
// as a daemon across its configured channels), chat (one-shot scripted
// invocation), and config (inspect/edit ~/.rrclaw/config.toml and the OS
// keyring), grounded on the teacher's cmd/devclaw and
// cmd/copilot/commands packages.
package commands

import (
	"github.com/spf13/cobra"
)

// Version is set by main from its ldflags-injected build version and read
// by the self_info tool and the "serve" startup log line.
var Version = "dev"

// NewRootCmd builds the rrclaw root command and registers every
// subcommand.
func NewRootCmd(version string) *cobra.Command {
	Version = version

	root := &cobra.Command{
		Use:           "rrclaw",
		Short:         "RRClaw — a security-first, multi-provider AI agent runtime",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("config", "", "path to config.toml (default: auto-discovered)")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newConfigCmd())

	return root
}
