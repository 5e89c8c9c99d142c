package channel

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yzzting/rrclaw/internal/agent"
)

// HTTPAPIChannel exposes a health endpoint and a generic per-channel
// webhook receiver over go-chi/chi/v5, per SPEC_FULL.md §6. (The Telegram
// channel itself uses long polling, not this webhook.) Unlike REPLChannel/TelegramChannel, HTTPAPIChannel's
// Send has no fixed transport of its own: it's a thin front door that
// decodes webhook payloads and forwards them to onMessage; outbound
// delivery for those sessions goes back out through whichever channel
// actually owns the conversation (e.g. TelegramChannel.Send).
type HTTPAPIChannel struct {
	router    chi.Router
	logger    *slog.Logger
	onMessage func(ctx context.Context, channelName, recipient, text string)
}

// webhookPayload is the minimal shape expected on /webhook/{channel}.
type webhookPayload struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

// NewHTTPAPIChannel builds the router. onMessage is invoked for each
// decoded webhook body.
func NewHTTPAPIChannel(logger *slog.Logger, onMessage func(ctx context.Context, channelName, recipient, text string)) *HTTPAPIChannel {
	if logger == nil {
		logger = slog.Default()
	}
	c := &HTTPAPIChannel{logger: logger.With("component", "channel.httpapi"), onMessage: onMessage}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", c.handleHealthz)
	r.Post("/webhook/{channel}", c.handleWebhook)

	c.router = r
	return c
}

// Handler returns the http.Handler to mount under an http.Server.
func (c *HTTPAPIChannel) Handler() http.Handler {
	return c.router
}

func (c *HTTPAPIChannel) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (c *HTTPAPIChannel) handleWebhook(w http.ResponseWriter, r *http.Request) {
	channelName := chi.URLParam(r, "channel")

	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if payload.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	if c.onMessage != nil {
		c.onMessage(r.Context(), channelName, payload.Recipient, payload.Text)
	}
	w.WriteHeader(http.StatusAccepted)
}

// Send implements agent.Channel by logging only: this channel's real job
// is receiving webhooks, not delivering replies (see type doc comment).
func (c *HTTPAPIChannel) Send(ctx context.Context, text string, recipient string) error {
	c.logger.Info("webhook channel reply", "recipient", recipient, "text", text)
	return nil
}

func (c *HTTPAPIChannel) EmitStreamEvent(ctx context.Context, ev agent.StreamEvent) error {
	return nil
}

func (c *HTTPAPIChannel) Confirm(ctx context.Context, summary string) (agent.ConfirmAnswer, error) {
	return agent.ConfirmNo, nil
}
