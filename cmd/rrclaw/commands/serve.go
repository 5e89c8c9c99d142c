package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yzzting/rrclaw/internal/agent"
	"github.com/yzzting/rrclaw/internal/channel"
	"github.com/yzzting/rrclaw/internal/metrics"
	"github.com/yzzting/rrclaw/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the agent as a daemon across its configured channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, httpAddr)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8787", "address for the health/webhook HTTP listener")
	return cmd
}

// runServe wires every channel the loaded config enables, mirroring the
// teacher's runServe: REPL always on for local operators, Telegram gated
// on a configured bot token, HTTP API always on for health checks and
// webhook delivery, and the cron scheduler started if any jobs are
// configured.
func runServe(cmd *cobra.Command, httpAddr string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repl, err := channel.NewREPLChannel("", nil)
	if err != nil {
		return fmt.Errorf("starting REPL channel: %w", err)
	}
	defer repl.Close()

	rt, err := buildRuntime(cmd, repl)
	if err != nil {
		return err
	}
	defer rt.Close()
	rt.logger.Info("rrclaw starting", "version", Version, "config", rt.cfgPath)

	m := metrics.New()

	var tg *channel.TelegramChannel
	if rt.cfg.Telegram.BotToken != "" {
		tg, err = channel.NewTelegramChannel(rt.cfg.Telegram.BotToken, rt.logger, func(ctx context.Context, chatID, text string) {
			handleIncoming(ctx, rt, tg, m, "telegram", chatID, text)
		})
		if err != nil {
			return fmt.Errorf("starting telegram channel: %w", err)
		}
		go tg.Run(ctx)
		rt.logger.Info("telegram channel enabled")
	}

	httpChannel := channel.NewHTTPAPIChannel(rt.logger, func(ctx context.Context, channelName, recipient, text string) {
		var replyChannel agent.Channel = repl
		if channelName == "telegram" && tg != nil {
			replyChannel = tg
		}
		handleIncoming(ctx, rt, replyChannel, m, channelName, recipient, text)
	})
	httpServer := &http.Server{Addr: httpAddr, Handler: httpChannel.Handler()}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rt.logger.Error("http server failed", "error", err)
		}
	}()
	rt.logger.Info("http api listening", "addr", httpAddr)

	var sched *scheduler.Scheduler
	if len(rt.cfg.Routines.Jobs) > 0 {
		recipient := fmt.Sprintf("%d", rt.cfg.Telegram.ChatID)
		var deliveryChannel agent.Channel = repl
		if tg != nil {
			deliveryChannel = tg
		}
		sched, err = scheduler.New(rt.cfg.Routines.Jobs, rt.loop, deliveryChannel, recipient, rt.logger)
		if err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		sched.Start()
		rt.logger.Info("scheduler started", "jobs", len(rt.cfg.Routines.Jobs))
	}

	go runREPLLoop(ctx, rt, repl, m)

	<-ctx.Done()
	rt.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	if sched != nil {
		sched.Stop()
	}
	return nil
}

// runREPLLoop drives the interactive terminal: read a line, run one Agent
// Loop turn, print the result, repeat until the user exits.
func runREPLLoop(ctx context.Context, rt *runtime, repl *channel.REPLChannel, m *metrics.Metrics) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line, err := repl.ReadLine()
		if err != nil {
			return
		}
		if line == "" {
			continue
		}
		handleIncoming(ctx, rt, repl, m, "repl", "local", line)
	}
}

func handleIncoming(ctx context.Context, rt *runtime, replyChannel agent.Channel, m *metrics.Metrics, channelName, recipient, text string) {
	m.MessagesTotal.WithLabelValues(channelName, "inbound").Inc()
	reply, err := rt.loop.Process(ctx, text, nil)
	if err != nil {
		rt.logger.Error("agent turn failed", "channel", channelName, "error", err)
		_ = replyChannel.Send(ctx, fmt.Sprintf("error: %v", err), recipient)
		return
	}
	m.MessagesTotal.WithLabelValues(channelName, "outbound").Inc()
	if err := replyChannel.Send(ctx, reply, recipient); err != nil {
		rt.logger.Error("reply delivery failed", "channel", channelName, "error", err)
	}
}
