package commands

import (
	"context"
	"fmt"

	"github.com/yzzting/rrclaw/internal/agent"
)

// noopChannel backs the one-shot "chat" command: no streaming UI and no
// synchronous confirmation prompt exists in a scripted, single-turn
// invocation, so a tool call requiring confirmation is denied rather than
// left hanging on an unattended terminal.
type noopChannel struct{}

func (noopChannel) Send(ctx context.Context, text string, recipient string) error { return nil }

func (noopChannel) EmitStreamEvent(ctx context.Context, ev agent.StreamEvent) error { return nil }

func (noopChannel) Confirm(ctx context.Context, summary string) (agent.ConfirmAnswer, error) {
	fmt.Printf("tool confirmation required but no interactive channel is attached, denying: %s\n", summary)
	return agent.ConfirmNo, nil
}
