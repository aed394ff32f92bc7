package docstore

import (
	"context"
	"fmt"

	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

// analysis is the per-collection query-analysis result: what the
// question is asking about (intent), the term to match, and which
// fields to match it against.
type analysis struct {
	Intent     string   `json:"intent"`
	SearchTerm string   `json:"search_term"`
	Fields     []string `json:"fields"`
}

const analyzePromptTemplate = `Classify the operator's question about the %q collection.
Respond with JSON: {"intent": "isbn"|"author"|"topic"|"general", "search_term": string, "fields": [string, ...]}.
Valid fields for this collection: %v.`

// analyze asks the LLM to classify the question against one
// collection's configured fields. On malformed output it falls back to
// a regex-fallback table keyed by collection name, treating the intent
// as "general" and the whole question as the search term — never an
// error (spec.md §7 kind 2).
func analyze(ctx context.Context, llm *llmclient.Client, cfg CollectionConfig, question string) analysis {
	allFields := append(append([]string{}, cfg.ExactMatchFields...), cfg.RegexMatchFields...)
	system := fmt.Sprintf(analyzePromptTemplate, cfg.Name, allFields)

	var out analysis
	if err := llm.CompleteJSON(ctx, system, question, &out); err != nil || out.SearchTerm == "" || len(out.Fields) == 0 {
		return analysis{
			Intent:     "general",
			SearchTerm: question,
			Fields:     fallbackFieldsFor(cfg),
		}
	}
	return out
}
