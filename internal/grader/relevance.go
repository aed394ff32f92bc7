package grader

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ragcat-dev/ragcat/internal/document"
	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

const relevancePrompt = `You judge whether a retrieved document is relevant to an operator's
question about system logs. Respond with JSON {"score": "yes"|"no"}.`

// RelevanceGrader judges a single (question, document) pair.
type RelevanceGrader struct {
	llm *llmclient.Client
	log *zap.Logger
}

// NewRelevanceGrader builds a RelevanceGrader.
func NewRelevanceGrader(llm *llmclient.Client, log *zap.Logger) *RelevanceGrader {
	return &RelevanceGrader{llm: llm, log: log}
}

// Grade returns whether doc is relevant to question.
func (g *RelevanceGrader) Grade(ctx context.Context, question string, doc document.Document) (Verdict, error) {
	var out struct {
		Score string `json:"score"`
	}
	user := "Question: " + question + "\n\nDocument:\n" + doc.Content
	if err := g.llm.CompleteJSON(ctx, relevancePrompt, user, &out); err != nil {
		return No, err
	}
	return ParseVerdict(out.Score), nil
}

// GradeAll grades every document concurrently (spec.md §5 fan-out
// point #1), retaining only documents graded Yes and preserving their
// original order. A per-call failure or timeout is logged and the
// document is dropped; it never fails the whole stage.
func GradeAll(ctx context.Context, g *RelevanceGrader, question string, docs []document.Document) []document.Document {
	verdicts := make([]Verdict, len(docs))

	gp, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		i, doc := i, doc
		gp.Go(func() error {
			v, err := g.Grade(gctx, question, doc)
			if err != nil {
				g.log.Warn("relevance grading failed, dropping document", zap.Error(err))
				v = No
			}
			verdicts[i] = v
			return nil
		})
	}
	_ = gp.Wait()

	kept := make([]document.Document, 0, len(docs))
	for i, doc := range docs {
		if verdicts[i] == Yes {
			kept = append(kept, doc)
		}
	}
	return kept
}
