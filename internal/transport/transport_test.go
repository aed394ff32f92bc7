package transport

import "context"

// fakeSink is a minimal transport.Sink; its only use is the assertion
// below, which confirms at compile time that the interface can be
// implemented.
type fakeSink struct{}

func (fakeSink) Send(ctx context.Context, chatID, text string) (string, error) { return "1", nil }
func (fakeSink) Edit(ctx context.Context, chatID, handle, text string) error   { return nil }

var _ Sink = fakeSink{}
