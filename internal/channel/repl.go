package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/chzyer/readline"

	"github.com/yzzting/rrclaw/internal/agent"
)

// REPLChannel implements agent.Channel over an interactive terminal,
// grounded on the teacher's readline-based REPL loop (prompt with line
// editing/history, Ctrl+C/Ctrl+D exit handling).
type REPLChannel struct {
	rl     *readline.Instance
	logger *slog.Logger
}

// NewREPLChannel constructs a channel reading from/writing to the
// terminal. historyFile is optional; empty disables persistent history.
func NewREPLChannel(historyFile string, logger *slog.Logger) (*REPLChannel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[1;36m❯\033[0m ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("readline init: %w", err)
	}
	return &REPLChannel{rl: rl, logger: logger.With("component", "channel.repl")}, nil
}

// Close releases the underlying terminal resources.
func (c *REPLChannel) Close() error {
	return c.rl.Close()
}

// ErrExit is returned by ReadLine when the user asked to quit (Ctrl+C or
// Ctrl+D), so the caller's REPL loop can distinguish "quit" from "error".
var ErrExit = errors.New("repl: exit requested")

// ReadLine blocks for one line of user input.
func (c *REPLChannel) ReadLine() (string, error) {
	line, err := c.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrExit
		}
		return "", err
	}
	return line, nil
}

// Send implements agent.Channel by printing to stdout. recipient is
// unused: a REPL has exactly one implicit recipient, the terminal.
func (c *REPLChannel) Send(ctx context.Context, text string, recipient string) error {
	fmt.Println(text)
	return nil
}

// EmitStreamEvent prints tokens as they arrive for a live-typing effect.
func (c *REPLChannel) EmitStreamEvent(ctx context.Context, ev agent.StreamEvent) error {
	switch ev.Kind {
	case agent.StreamText:
		fmt.Print(ev.Token)
	case agent.StreamDone:
		fmt.Println()
	}
	return nil
}

// Confirm prompts the user inline and blocks for a y/n/a answer.
func (c *REPLChannel) Confirm(ctx context.Context, summary string) (agent.ConfirmAnswer, error) {
	fmt.Printf("\n%s\nAllow? [y]es / [n]o / [a]lways this session: ", summary)
	answer, err := c.rl.Readline()
	if err != nil {
		return agent.ConfirmNo, err
	}
	switch answer {
	case "y", "yes":
		return agent.ConfirmYes, nil
	case "a", "always":
		return agent.ConfirmAutoApproveSession, nil
	default:
		return agent.ConfirmNo, nil
	}
}
