package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/config"
	"github.com/ragcat-dev/ragcat/internal/pipeline"
	"github.com/ragcat-dev/ragcat/internal/transport/tui"
)

const localChatID = "local"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a local interactive chat session against the pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := config.FromContext(cmd.Context())
		if !ok {
			return fmt.Errorf("chat: configuration not loaded")
		}

		log, err := newLogger(cfg.Diagnostics)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var sink *tui.Sink
		var eng *pipeline.Engine
		sink = tui.New(func(question string) {
			runLocalQuestion(ctx, sink, eng, question, log)
		})

		eng, cl, err := buildEngine(ctx, cfg, sink, log)
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		defer cl.closeAll()

		return sink.Run()
	},
}

// runLocalQuestion drives one pipeline run per submitted question,
// independent of any run still in flight (spec.md §5), reporting
// failures into the transcript instead of crashing the session.
func runLocalQuestion(ctx context.Context, sink *tui.Sink, eng *pipeline.Engine, question string, log *zap.Logger) {
	go func() {
		st := pipeline.State{
			ChatID:           localChatID,
			Question:         question,
			RewriteBudget:    defaultRewriteBudget,
			RegenerateBudget: defaultRegenerateBudget,
		}
		if _, err := eng.Run(ctx, st); err != nil {
			log.Warn("pipeline run failed", zap.Error(err))
			_, _ = sink.Send(ctx, localChatID, fmt.Sprintf("error: %v", err))
		}
	}()
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
