// Package transport defines the chat-transport contract the pipeline
// engine sends progress and final answers through (spec.md §6).
package transport

import "context"

// Sink is the chat transport the PipelineEngine is injected with.
// Every operation is best-effort: implementations return their errors,
// and the engine's observer logs them and never raises them to the
// pipeline (spec.md §7 kind 6).
type Sink interface {
	// Send posts text to chatID and returns an opaque handle later
	// passed to Edit.
	Send(ctx context.Context, chatID, text string) (handle string, err error)
	// Edit replaces the text of a previously sent message in place.
	Edit(ctx context.Context, chatID, handle, text string) error
}
