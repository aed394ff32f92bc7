// Package constructor turns a free-form operator question into a
// query.StructuredQuery for the log index.
//
// Grounded on original_source/opensearch_query_constructor.py: the
// same few-shot seed set, the same temperature=0 determinism
// requirement, and the same match-all fallback on malformed output.
package constructor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/llmclient"
	"github.com/ragcat-dev/ragcat/internal/query"
)

const systemPrompt = `You translate an operator's natural-language question about logs
into a JSON object {"text": string, "filter": <filter-node>}.

A filter-node is exactly one of:
  {"and": [filter-node, ...]}
  {"or": [filter-node, ...]}
  {"not": filter-node}
  {"eq": {"attribute": string, "value": string}}
  {"range": {"attribute": string, "op": "lt"|"lte"|"gt"|"gte", "value": string}}

Use the literal string "NO_FILTER" as a value to mean "no constraint on this attribute".
Time values: "now", "now/d", "now/w", "now/M", "now-Nh", "now-Nw", "now-NM" for relative
time, "now/d+HhMmSs" for a time-of-day offset, and ISO-8601 with a "+03:00"-style
time_zone suffix for an absolute clock time. Respond with JSON only.

Examples:
` + fewShotExamples

// Constructor builds StructuredQuery values from free text via an
// LLM configured at temperature 0 for reproducibility.
type Constructor struct {
	llm *llmclient.Client
	log *zap.Logger
}

// New builds a Constructor. The llm client's Config.Temperature should
// be 0; callers are expected to configure the role that way (spec.md §4.1).
func New(llm *llmclient.Client, log *zap.Logger) *Constructor {
	return &Constructor{llm: llm, log: log}
}

// Construct turns question into a StructuredQuery. A transient backend
// fault (network, timeout) is returned as an error for the caller to
// treat as a stage failure. Malformed or unparseable model output never
// surfaces as an error: it is handled locally by falling back to
// {text: question, filter: match-all}.
func (c *Constructor) Construct(ctx context.Context, question string) (query.StructuredQuery, error) {
	reply, err := c.llm.Complete(ctx, systemPrompt, question)
	if err != nil {
		return query.StructuredQuery{}, fmt.Errorf("constructor: llm call failed: %w", err)
	}

	sq, ok := c.parse(reply, question)
	if !ok {
		c.log.Warn("query constructor fell back to match-all", zap.String("question", question))
	}
	return sq, nil
}

func (c *Constructor) parse(reply, question string) (query.StructuredQuery, bool) {
	wq, err := unmarshalWireQuery(extractJSON(reply))
	if err != nil {
		return fallback(question), false
	}
	filter, err := wq.Filter.toFilterExpr()
	if err != nil {
		return fallback(question), false
	}
	return query.StructuredQuery{Text: wq.Text, Filter: filter}, true
}

func fallback(question string) query.StructuredQuery {
	return query.StructuredQuery{Text: question, Filter: query.MatchAll()}
}

// extractJSON trims any prose the model wrapped the JSON object in, by
// slicing from the first '{' to the last '}'. A model speaking pure
// JSON (the common case) is returned unchanged.
func extractJSON(s string) []byte {
	start := indexByte(s, '{')
	end := lastIndexByte(s, '}')
	if start < 0 || end < 0 || end < start {
		return []byte(s)
	}
	return []byte(s[start : end+1])
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}
