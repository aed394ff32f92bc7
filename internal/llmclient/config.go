package llmclient

import "time"

// Role names the configuration surface's per-LLM-role groups (spec.md §6).
type Role string

const (
	RoleAnswerer           Role = "answerer"
	RoleLogSummarizer      Role = "log_summarizer"
	RoleRetriever          Role = "retriever"
	RoleRetrievalGrader    Role = "retrieval_grader"
	RoleQuestionRewriter   Role = "question_rewriter"
	RoleHallucinationGrader Role = "hallucination_grader"
	RoleAnswerGrader       Role = "answer_grader"
	RoleMongoDBRetriever   Role = "mongodb_retriever"
	RoleOpenSearchRetriever Role = "opensearch_retriever"
)

// Config is the small typed record loaded once at startup per LLM role;
// there is no per-call option bag (Design Notes §9).
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	NumCtx      int
	Timeout     time.Duration
}
