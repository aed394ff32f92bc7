package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/config"
	"github.com/ragcat-dev/ragcat/internal/pipeline"
	"github.com/ragcat-dev/ragcat/internal/transport/telegram"
)

// Per-message retry budgets (spec.md §3); not part of the configuration
// surface spec.md §6 names, so fixed here rather than threaded through
// config.Config.
const (
	defaultRewriteBudget    = 3
	defaultRegenerateBudget = 2
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram-backed pipeline, answering operator questions as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := config.FromContext(cmd.Context())
		if !ok {
			return fmt.Errorf("serve: configuration not loaded")
		}
		if cfg.Transport.Kind != "telegram" {
			return fmt.Errorf("serve requires transport.kind=telegram (got %q); set RAGCAT_TRANSPORT_KIND=telegram together with a bot token, or use 'ragcat chat'", cfg.Transport.Kind)
		}

		log, err := newLogger(cfg.Diagnostics)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		sink, err := telegram.New(cfg.Transport.TelegramToken, log)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, cl, err := buildEngine(ctx, cfg, sink, log)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		defer cl.closeAll()

		return runTelegramLoop(ctx, sink, eng, log)
	},
}

// runTelegramLoop long-polls Telegram for inbound messages and spawns
// one independent, concurrent pipeline run per message (spec.md §5:
// "multiple operator messages are processed independently and in
// parallel"). Cancellation of ctx stops polling and lets in-flight
// runs observe it at their next suspension point.
func runTelegramLoop(ctx context.Context, sink *telegram.Sink, eng *pipeline.Engine, log *zap.Logger) error {
	updates := sink.Updates(30)

	log.Info("ragcat serve: listening for Telegram messages")
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
			question := update.Message.Text

			go func() {
				st := pipeline.State{
					ChatID:           chatID,
					Question:         question,
					RewriteBudget:    defaultRewriteBudget,
					RegenerateBudget: defaultRegenerateBudget,
				}
				if _, err := eng.Run(ctx, st); err != nil {
					log.Warn("pipeline run failed", zap.String("chat_id", chatID), zap.Error(err))
				}
			}()
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
