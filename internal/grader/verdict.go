// Package grader implements the RelevanceGrader, AnswerGrader and
// GroundingGrader — three independent binary judges backed by an LLM,
// plus the concurrent fan-out helpers the pipeline drives them with.
//
// Grounded on original_source/opensearch_retrieval_grader.py,
// answer_grader.py and hallucination_grader.py: each is an
// independently instantiated structured-output grader with its own LLM
// role config.
package grader

import "strings"

// Verdict is a binary grading outcome. Any value other than "yes" is
// treated as "no" (spec.md §3 GradeVerdict).
type Verdict string

const (
	Yes Verdict = "yes"
	No  Verdict = "no"
)

// ParseVerdict coerces raw model output to a Verdict: only "yes",
// compared case-insensitively after trimming surrounding whitespace,
// parses to Yes.
func ParseVerdict(s string) Verdict {
	if strings.EqualFold(strings.TrimSpace(s), "yes") {
		return Yes
	}
	return No
}
