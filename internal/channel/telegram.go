// Package channel implements agent.Channel over three surfaces: an
// interactive REPL (chzyer/readline, grounded on the teacher's
// cmd/copilot/commands/serve.go prompt loop), Telegram (go-telegram/bot,
// grounded on haasonsaas-nexus's telegram.Adapter — trimmed to long
// polling only, its webhook mode/reconnect-backoff/rate-limiter are
// out of scope for a single-user local agent), and an HTTP health/webhook
// surface (go-chi/chi/v5, grounded on kadirpekel-hector's chi-based
// server).
package channel

import (
	"context"
	"log/slog"
	"strconv"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/yzzting/rrclaw/internal/agent"
)

// TelegramChannel implements agent.Channel over a long-polling Telegram
// bot. Incoming messages are forwarded to onMessage, which is expected to
// drive an agent.Loop and use Send to deliver the result.
type TelegramChannel struct {
	bot       *tgbot.Bot
	logger    *slog.Logger
	onMessage func(ctx context.Context, chatID string, text string)
}

// NewTelegramChannel constructs a channel from a bot token. onMessage is
// invoked for every incoming text message; it may be nil if this process
// only sends (e.g. scheduler-delivered routine results).
func NewTelegramChannel(token string, logger *slog.Logger, onMessage func(ctx context.Context, chatID string, text string)) (*TelegramChannel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tc := &TelegramChannel{logger: logger.With("component", "channel.telegram"), onMessage: onMessage}

	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(tc.handleUpdate),
	}
	b, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, err
	}
	tc.bot = b
	return tc, nil
}

func (c *TelegramChannel) handleUpdate(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if c.onMessage == nil {
		return
	}
	chatID := formatChatID(update.Message.Chat.ID)
	c.onMessage(ctx, chatID, update.Message.Text)
}

// Run starts long polling. Blocks until ctx is canceled.
func (c *TelegramChannel) Run(ctx context.Context) {
	c.bot.Start(ctx)
}

// Send implements agent.Channel. recipient is the chat ID as a string.
func (c *TelegramChannel) Send(ctx context.Context, text string, recipient string) error {
	chatID, err := parseChatID(recipient)
	if err != nil {
		return err
	}
	_, err = c.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// EmitStreamEvent drops every event; Telegram has no token-level streaming
// UX, so the final reply reaches the chat only through Send (the REPL
// channel is the one that renders stream events live).
func (c *TelegramChannel) EmitStreamEvent(ctx context.Context, ev agent.StreamEvent) error {
	return nil
}

// Confirm auto-denies: Telegram has no synchronous confirmation flow in
// this implementation, so any tool call requiring confirmation under
// supervised autonomy is rejected rather than left hanging.
func (c *TelegramChannel) Confirm(ctx context.Context, summary string) (agent.ConfirmAnswer, error) {
	return agent.ConfirmNo, nil
}

func formatChatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseChatID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
