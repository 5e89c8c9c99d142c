package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newChatCmd runs exactly one Agent Loop turn non-interactively, for
// scripting and CI use (cron jobs that want a one-off answer rather than
// a full daemon, shell aliases, etc.) — the non-interactive analog of the
// REPL path inside "serve".
func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a single message to the agent and print its reply",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if message == "" {
				return fmt.Errorf("chat requires a message argument")
			}

			rt, err := buildRuntime(cmd, noopChannel{})
			if err != nil {
				return err
			}
			defer rt.Close()

			reply, err := rt.loop.Process(cmd.Context(), message, nil)
			if err != nil {
				return fmt.Errorf("agent turn failed: %w", err)
			}
			fmt.Println(reply)
			return nil
		},
	}
	return cmd
}
