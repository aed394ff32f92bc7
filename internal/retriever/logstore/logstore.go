// Package logstore implements the LogRetriever: it executes a
// structured query against the full-text log index and returns
// unified document.Document values.
//
// Grounded on the teacher's internal/es.Client.Search / doSearch /
// parseSearchResponse: the same functional-option search call and the
// same response decoding shape, now driven by translator.Translate
// instead of a hand-built query string.
package logstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/document"
	"github.com/ragcat-dev/ragcat/internal/errfmt"
	"github.com/ragcat-dev/ragcat/internal/query"
	"github.com/ragcat-dev/ragcat/internal/query/translator"
)

// Retriever executes structured queries against the configured index.
type Retriever struct {
	es    *elasticsearch.Client
	index string
	log   *zap.Logger
}

// New builds a Retriever bound to one index pattern.
func New(es *elasticsearch.Client, index string, log *zap.Logger) *Retriever {
	return &Retriever{es: es, index: index, log: log}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source map[string]any `json:"_source"`
			Score  float64        `json:"_score"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search translates sq to the backend DSL and runs it against the log
// index, returning up to size documents. A backend or decode failure
// propagates to the caller (spec.md §7 kind 1, fatal for the stage).
func (r *Retriever) Search(ctx context.Context, sq query.StructuredQuery, size int) ([]document.Document, error) {
	body := map[string]any{"query": translator.Translate(sq)}
	queryJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("logstore: marshal query: %w", err)
	}

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(r.index),
		r.es.Search.WithBody(bytes.NewReader(queryJSON)),
		r.es.Search.WithSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("logstore: search request: %w", err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("logstore: read response: %w", err)
	}
	if res.IsError() {
		return nil, errfmt.FormatQueryError("logstore", res.Status(), respBody, queryJSON)
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("logstore: decode response: %w", err)
	}

	docs := make([]document.Document, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, projectHit(hit.Source, hit.Score))
	}
	return docs, nil
}

func projectHit(src map[string]any, score float64) document.Document {
	content, _ := src["msg"].(string)
	meta := map[string]any{
		"source":    string(document.SourceLogs),
		"level":     src["level"],
		"namespace": src["ns"],
		"service":   src["svc"],
		"time":      src["time"],
		"score":     score,
	}
	return document.New(content, meta)
}
