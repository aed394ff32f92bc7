package grader

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ragcat-dev/ragcat/internal/document"
	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

const addressesPrompt = `You judge whether a generated answer directly addresses the
operator's original question. Respond with JSON {"score": "yes"|"no"}.`

const groundedPrompt = `You judge whether every claim in a generated answer is supported
by the provided evidence documents. Respond with JSON {"score": "yes"|"no"}.`

// AnswerGrader judges whether a generation addresses the question it
// was produced for.
type AnswerGrader struct {
	llm *llmclient.Client
}

// NewAnswerGrader builds an AnswerGrader.
func NewAnswerGrader(llm *llmclient.Client) *AnswerGrader {
	return &AnswerGrader{llm: llm}
}

// Grade returns whether generation addresses question.
func (g *AnswerGrader) Grade(ctx context.Context, question, generation string) (Verdict, error) {
	var out struct {
		Score string `json:"score"`
	}
	user := "Question: " + question + "\n\nAnswer:\n" + generation
	if err := g.llm.CompleteJSON(ctx, addressesPrompt, user, &out); err != nil {
		return No, err
	}
	return ParseVerdict(out.Score), nil
}

// GroundingGrader judges whether a generation is supported by the
// evidence it was produced from. Calibration of strictness is a single
// binary judge with one prompt (spec.md §9 Open Question 3).
type GroundingGrader struct {
	llm *llmclient.Client
}

// NewGroundingGrader builds a GroundingGrader.
func NewGroundingGrader(llm *llmclient.Client) *GroundingGrader {
	return &GroundingGrader{llm: llm}
}

// Grade returns whether generation is grounded in docs.
func (g *GroundingGrader) Grade(ctx context.Context, generation string, docs []document.Document) (Verdict, error) {
	var out struct {
		Score string `json:"score"`
	}
	var contents []string
	for _, d := range docs {
		contents = append(contents, d.Content)
	}
	user := "Evidence:\n" + strings.Join(contents, "\n---\n") + "\n\nAnswer:\n" + generation
	if err := g.llm.CompleteJSON(ctx, groundedPrompt, user, &out); err != nil {
		return No, err
	}
	return ParseVerdict(out.Score), nil
}

// GradeBoth invokes the answer grader and the grounding grader
// concurrently on the same generation (spec.md §5's optional third
// fan-out point); both results are required before the caller can
// transition. A per-call failure is logged and coerced to No, the same
// local-failure handling as RelevanceGrader.
func GradeBoth(ctx context.Context, answer *AnswerGrader, grounding *GroundingGrader, log *zap.Logger, question, generation string, docs []document.Document) (addresses, grounded Verdict) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := answer.Grade(gctx, question, generation)
		if err != nil {
			log.Warn("answer grading failed", zap.Error(err))
			v = No
		}
		addresses = v
		return nil
	})
	g.Go(func() error {
		v, err := grounding.Grade(gctx, generation, docs)
		if err != nil {
			log.Warn("grounding grading failed", zap.Error(err))
			v = No
		}
		grounded = v
		return nil
	})
	_ = g.Wait()
	return addresses, grounded
}
