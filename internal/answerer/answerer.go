// Package answerer implements the Answerer: it produces a free-form
// answer from (question, logs, stack trace, code).
//
// Grounded on original_source/answerer.py's ainvoke/astream split.
package answerer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

const systemPrompt = `You are an incident investigation assistant. Answer the operator's
question using only the evidence provided below. Do not invent log
lines, stack frames, or code that is not present in the evidence.`

// Input bundles everything Answer/Stream need to produce a grounded
// answer.
type Input struct {
	Question    string
	Context     string
	StackTrace  string
	CodeContext string
}

func (in Input) userPrompt() string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(in.Question)
	if in.Context != "" {
		b.WriteString("\n\nLog evidence:\n")
		b.WriteString(in.Context)
	}
	if in.StackTrace != "" {
		b.WriteString("\n\nStack trace:\n")
		b.WriteString(in.StackTrace)
	}
	if in.CodeContext != "" {
		b.WriteString("\n\nRelevant code:\n")
		b.WriteString(in.CodeContext)
	}
	return b.String()
}

// Answerer produces answers from evidence via an LLM.
type Answerer struct {
	llm *llmclient.Client
}

// New builds an Answerer.
func New(llm *llmclient.Client) *Answerer {
	return &Answerer{llm: llm}
}

// Answer returns the complete generated answer.
func (a *Answerer) Answer(ctx context.Context, in Input) (string, error) {
	text, err := a.llm.Complete(ctx, systemPrompt, in.userPrompt())
	if err != nil {
		return "", fmt.Errorf("answerer: %w", err)
	}
	return text, nil
}

// Stream returns the answer as it is produced, chunk by chunk.
func (a *Answerer) Stream(ctx context.Context, in Input) (<-chan string, error) {
	ch, err := a.llm.CompleteStream(ctx, systemPrompt, in.userPrompt())
	if err != nil {
		return nil, fmt.Errorf("answerer: %w", err)
	}
	return ch, nil
}
