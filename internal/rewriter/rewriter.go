// Package rewriter implements the QuestionRewriter: it rewrites a
// question to improve retrieval when evidence is weak.
//
// Grounded on original_source/question_rewriter.py's structured
// "improved_question" output contract.
package rewriter

import (
	"context"
	"fmt"

	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

const systemPrompt = `You rewrite an operator's question about system logs to improve
retrieval, while preserving its meaning. Respond with JSON
{"improved_question": string}.`

// Rewriter rewrites questions via an LLM.
type Rewriter struct {
	llm *llmclient.Client
}

// New builds a Rewriter.
func New(llm *llmclient.Client) *Rewriter {
	return &Rewriter{llm: llm}
}

// Rewrite returns an improved phrasing of question. Rewriting a
// question whose ideal rewrite is itself should yield a semantically
// equivalent phrasing (spec.md §8 idempotence law); the engine is
// responsible for decrementing the rewrite budget.
func (r *Rewriter) Rewrite(ctx context.Context, question string) (string, error) {
	var out struct {
		ImprovedQuestion string `json:"improved_question"`
	}
	if err := r.llm.CompleteJSON(ctx, systemPrompt, question, &out); err != nil {
		return "", fmt.Errorf("rewriter: %w", err)
	}
	if out.ImprovedQuestion == "" {
		return question, nil
	}
	return out.ImprovedQuestion, nil
}
