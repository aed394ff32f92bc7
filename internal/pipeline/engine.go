package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/answerer"
	"github.com/ragcat-dev/ragcat/internal/document"
	"github.com/ragcat-dev/ragcat/internal/grader"
	"github.com/ragcat-dev/ragcat/internal/query"
	"github.com/ragcat-dev/ragcat/internal/rewriter"
	"github.com/ragcat-dev/ragcat/internal/summarizer"
	"github.com/ragcat-dev/ragcat/internal/transport"
)

// QueryConstructor turns a question into a structured query for the
// log index.
type QueryConstructor interface {
	Construct(ctx context.Context, question string) (query.StructuredQuery, error)
}

// LogRetriever executes a structured query against the log index.
type LogRetriever interface {
	Search(ctx context.Context, sq query.StructuredQuery, size int) ([]document.Document, error)
}

// DocStoreRetriever runs a free-text question against the document
// store. Enrichment is optional: a nil DocStoreRetriever is skipped.
type DocStoreRetriever interface {
	Search(ctx context.Context, question string) ([]document.Document, error)
}

// CodeRetriever resolves a stack trace or free query against the code
// store. Enrichment is optional: a nil CodeRetriever is skipped.
type CodeRetriever interface {
	Search(ctx context.Context, q string) ([]document.Document, error)
}

// Answerer produces a free-form answer from evidence.
type Answerer interface {
	Answer(ctx context.Context, in answerer.Input) (string, error)
}

// Engine drives the RARP state machine for one chat message at a time.
// Every dependency is a long-lived, startup-constructed client, safe
// for concurrent use (spec.md §5).
type Engine struct {
	QueryConstructor QueryConstructor
	Logs             LogRetriever
	DocStore         DocStoreRetriever
	Code             CodeRetriever
	Relevance        *grader.RelevanceGrader
	Rewriter         *rewriter.Rewriter
	Answerer         Answerer
	AnswerGrader     *grader.AnswerGrader
	Grounding        *grader.GroundingGrader
	Summarizer       *summarizer.Summarizer
	Sink             transport.Sink
	Log              *zap.Logger

	QuerySize int // log index result size per search
}

// Run drives state to a terminal stage, reporting progress to e.Sink
// between every transition. A stage failure (retriever or LLM call)
// terminates the run with a user-visible error message; the returned
// State is the partial state at the point of failure.
func (e *Engine) Run(ctx context.Context, st State) (State, error) {
	requestID := uuid.New().String()
	log := e.Log.With(zap.String("request_id", requestID), zap.String("chat_id", st.ChatID))
	obs := newObserver(e.Sink, log)
	stage := Retrieve

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		log.Debug("pipeline stage", zap.Stringer("stage", stage))

		switch stage {
		case Retrieve:
			obs.report(ctx, st.ChatID, "🔎 Retrieving evidence...")
			next, err := e.retrieve(ctx, &st, log)
			if err != nil {
				obs.report(ctx, st.ChatID, "⚠️ Failed to retrieve evidence: "+err.Error())
				return st, fmt.Errorf("pipeline: retrieve: %w", err)
			}
			stage = next

		case GradeDocs:
			obs.report(ctx, st.ChatID, fmt.Sprintf("🧪 Grading %d retrieved document(s)...", len(st.Documents)))
			st.Documents = grader.GradeAll(ctx, e.Relevance, st.Question, st.Documents)
			switch {
			case len(st.Documents) == 0 && st.RewriteBudget > 1:
				stage = Rewrite
			default:
				stage = Generate
			}

		case Rewrite:
			obs.report(ctx, st.ChatID, "✏️ Rewriting question to improve retrieval...")
			st.RewriteBudget--
			improved, err := e.Rewriter.Rewrite(ctx, st.Question)
			if err != nil {
				log.Warn("question rewrite failed, keeping original question", zap.Error(err))
			} else {
				st.Question = improved
			}
			stage = Retrieve

		case Generate:
			obs.report(ctx, st.ChatID, "🤖 Generating answer...")
			gen, err := e.Answerer.Answer(ctx, e.answerInput(ctx, st, log))
			if err != nil {
				obs.report(ctx, st.ChatID, "⚠️ Failed to generate an answer: "+err.Error())
				return st, fmt.Errorf("pipeline: generate: %w", err)
			}
			st.Generation = gen
			stage = GradeAnswer

		case GradeAnswer:
			obs.report(ctx, st.ChatID, "✅ Grading the generated answer...")
			addresses, grounded := grader.GradeBoth(ctx, e.AnswerGrader, e.Grounding, log, st.Question, st.Generation, st.Documents)
			st.lastAddresses, st.lastGrounded = string(addresses), string(grounded)

			switch {
			case addresses == grader.Yes && grounded == grader.Yes:
				stage = Done
			case grounded == grader.No && st.RegenerateBudget > 1:
				st.RegenerateBudget--
				stage = Generate
			case addresses == grader.No && st.RewriteBudget > 1:
				stage = Rewrite
			default:
				stage = GiveUp
			}

		case Done:
			obs.report(ctx, st.ChatID, st.Generation)
			return st, nil

		case GiveUp:
			obs.report(ctx, st.ChatID, fmt.Sprintf(
				"🛑 Giving up: last grading verdicts were addresses_question=%s, is_grounded=%s.",
				orUnknown(st.lastAddresses), orUnknown(st.lastGrounded)))
			return st, nil
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// retrieve runs the log search and the optional document-store and
// code-store enrichments, merges and deduplicates the results, and
// extracts stack-trace text for the code retriever / answerer.
func (e *Engine) retrieve(ctx context.Context, st *State, log *zap.Logger) (Stage, error) {
	sq, err := e.QueryConstructor.Construct(ctx, st.Question)
	if err != nil {
		return GiveUp, fmt.Errorf("query construction: %w", err)
	}

	docs, err := e.Logs.Search(ctx, sq, e.QuerySize)
	if err != nil {
		return GiveUp, fmt.Errorf("log retrieval: %w", err)
	}

	if e.DocStore != nil {
		if extra, err := e.DocStore.Search(ctx, st.Question); err != nil {
			log.Warn("document store enrichment failed", zap.Error(err))
		} else {
			docs = append(docs, extra...)
		}
	}

	stackTrace := extractStackTraces(docs)
	st.StackTraces = stackTrace
	if e.Code != nil && stackTrace != "" {
		if codeDocs, err := e.Code.Search(ctx, stackTrace); err != nil {
			log.Warn("code store enrichment failed", zap.Error(err))
		} else {
			st.CodeDocs = codeDocs
		}
	}

	st.Documents = dedupeByKey(docs)
	return GradeDocs, nil
}

// answerInput assembles the Answerer's input, condensing st.Documents
// through e.Summarizer first (spec.md §11's log_summarizer feature):
// below its character budget the digest is just the joined content,
// above it the summarizer asks its LLM role for a shorter one. A
// summarization failure is logged and falls back to the raw joined
// content rather than failing the Generate stage.
func (e *Engine) answerInput(ctx context.Context, st State, log *zap.Logger) answerer.Input {
	digest, err := e.Summarizer.Summarize(ctx, st.Documents)
	if err != nil {
		log.Warn("summarization failed, falling back to raw evidence", zap.Error(err))
		var buf strings.Builder
		for _, d := range st.Documents {
			buf.WriteString(d.Content)
			buf.WriteString("\n")
		}
		digest = buf.String()
	}

	var codeBuf strings.Builder
	for _, d := range st.CodeDocs {
		codeBuf.WriteString(d.Content)
		codeBuf.WriteString("\n")
	}
	return answerer.Input{
		Question:    st.Question,
		Context:     digest,
		StackTrace:  st.StackTraces,
		CodeContext: codeBuf.String(),
	}
}

// extractStackTraces concatenates the content of every document that
// looks like it carries a stack trace, per the same "stack:" / " at "
// heuristic CodeRetriever uses to decide whether a query is a trace.
func extractStackTraces(docs []document.Document) string {
	var b strings.Builder
	for _, d := range docs {
		if strings.Contains(d.Content, "stack:") || strings.Contains(d.Content, " at ") {
			b.WriteString(d.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}
