package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/transport"
)

// observer reports engine progress to a transport.Sink: the first call
// for a run sends a new message, subsequent calls edit it in place
// (spec.md §7: "in-progress status messages are edited in place, not
// appended"). A transport failure is logged and swallowed; it never
// propagates into the state machine. Send and Edit are called
// synchronously on the engine's goroutine, so each report waits until
// the sink call returns.
type observer struct {
	sink   transport.Sink
	log    *zap.Logger
	handle string
}

func newObserver(sink transport.Sink, log *zap.Logger) *observer {
	return &observer{sink: sink, log: log}
}

func (o *observer) report(ctx context.Context, chatID, text string) {
	if o.handle == "" {
		handle, err := o.sink.Send(ctx, chatID, text)
		if err != nil {
			o.log.Warn("transport send failed", zap.Error(err))
			return
		}
		o.handle = handle
		return
	}
	if err := o.sink.Edit(ctx, chatID, o.handle, text); err != nil {
		o.log.Warn("transport edit failed", zap.Error(err))
	}
}
