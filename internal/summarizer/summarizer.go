// Package summarizer implements the log_summarizer LLM role named in
// spec.md's configuration surface (§6) but never given a §4 component
// by the distillation. Grounded on original_source/'s log_summarizer
// reference (listed in _INDEX.md): it condenses a long document list
// into a short digest before Answerer sees it.
//
// This is additive: it never changes the Answerer or grader contracts
// spec.md defines, and is only invoked when the combined evidence
// exceeds a configurable character budget.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragcat-dev/ragcat/internal/document"
	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

const systemPrompt = `Condense the following log excerpts into a short digest an
incident responder can scan quickly. Preserve error messages, service
names, and timestamps verbatim; drop repetition.`

// Summarizer condenses evidence when it grows too large for the
// answerer's context budget.
type Summarizer struct {
	llm         *llmclient.Client
	charBudget  int
}

// New builds a Summarizer. charBudget is the combined content length
// above which Summarize actually calls the LLM; below it, the original
// content passes through unchanged.
func New(llm *llmclient.Client, charBudget int) *Summarizer {
	return &Summarizer{llm: llm, charBudget: charBudget}
}

// Summarize joins docs' content and, if it exceeds the configured
// character budget, asks the LLM for a condensed digest.
func (s *Summarizer) Summarize(ctx context.Context, docs []document.Document) (string, error) {
	var contents []string
	for _, d := range docs {
		contents = append(contents, d.Content)
	}
	joined := strings.Join(contents, "\n")

	if len(joined) <= s.charBudget {
		return joined, nil
	}

	digest, err := s.llm.Complete(ctx, systemPrompt, joined)
	if err != nil {
		return "", fmt.Errorf("summarizer: %w", err)
	}
	return digest, nil
}
