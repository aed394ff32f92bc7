// Package docstore implements the DocumentStoreRetriever: it runs one
// query per configured collection in parallel against a document
// store and unifies the results into document.Document values.
//
// Grounded on original_source/mongodb_retriever.py (the parallel
// per-collection fan-out) and mongodb_query_constructor.py (the
// exact/regex field split and $or/$and query shape), executed against
// go.mongodb.org/mongo-driver.
package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ragcat-dev/ragcat/internal/document"
	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

// Retriever runs parallel per-collection queries against a document
// store database.
type Retriever struct {
	db          *mongo.Database
	collections []CollectionConfig
	llm         *llmclient.Client
	queryLimit  int64
	log         *zap.Logger
}

// New builds a Retriever bound to the given collections.
func New(db *mongo.Database, collections []CollectionConfig, llm *llmclient.Client, queryLimit int64, log *zap.Logger) *Retriever {
	return &Retriever{db: db, collections: collections, llm: llm, queryLimit: queryLimit, log: log}
}

// Search runs one query per configured collection concurrently
// (spec.md §5 fan-out point #2) and returns the unified results.
// Results from different collections may interleave in any order;
// within a collection the store's native order is preserved.
func (r *Retriever) Search(ctx context.Context, question string) ([]document.Document, error) {
	results := make([][]document.Document, len(r.collections))

	g, gctx := errgroup.WithContext(ctx)
	for i, cfg := range r.collections {
		i, cfg := i, cfg
		g.Go(func() error {
			docs, err := r.searchCollection(gctx, cfg, question)
			if err != nil {
				return fmt.Errorf("docstore: collection %s: %w", cfg.Name, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []document.Document
	for _, docs := range results {
		all = append(all, docs...)
	}
	return all, nil
}

func (r *Retriever) searchCollection(ctx context.Context, cfg CollectionConfig, question string) ([]document.Document, error) {
	a := analyze(ctx, r.llm, cfg, question)
	filter := buildFilter(cfg, a)

	coll := r.db.Collection(cfg.Name)
	cur, err := coll.Find(ctx, filter, options.Find().SetLimit(r.queryLimit))
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []document.Document
	for cur.Next(ctx) {
		var record bson.M
		if err := cur.Decode(&record); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		docs = append(docs, project(cfg, record))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return docs, nil
}

// buildFilter implements spec.md §4.4 step 2-3: split the analyzed
// fields into exact/regex subsets per CollectionConfig and combine
// them per the single-field / both-subsets / one-subset rules.
func buildFilter(cfg CollectionConfig, a analysis) bson.M {
	var exact, regex []string
	for _, f := range a.Fields {
		switch {
		case cfg.isExactField(f):
			exact = append(exact, f)
		case cfg.isRegexField(f):
			regex = append(regex, f)
		}
	}

	if len(a.Fields) == 1 {
		f := a.Fields[0]
		if cfg.isRegexField(f) {
			return bson.M{f: regexClauseValue(a.SearchTerm)}
		}
		return bson.M{f: a.SearchTerm}
	}

	exactClauses := make([]bson.M, 0, len(exact))
	for _, f := range exact {
		exactClauses = append(exactClauses, bson.M{f: a.SearchTerm})
	}
	regexClauses := make([]bson.M, 0, len(regex))
	for _, f := range regex {
		regexClauses = append(regexClauses, bson.M{f: regexClauseValue(a.SearchTerm)})
	}

	switch {
	case len(exactClauses) > 0 && len(regexClauses) > 0:
		or := []bson.M{{"$and": exactClauses}}
		or = append(or, regexClauses...)
		return bson.M{"$or": or}
	case len(exactClauses) > 0:
		return bson.M{"$or": exactClauses}
	case len(regexClauses) > 0:
		return bson.M{"$or": regexClauses}
	default:
		return bson.M{}
	}
}

func regexClauseValue(term string) bson.M {
	return bson.M{"$regex": term, "$options": "i"}
}

// project maps one backend record into a document.Document: content
// from cfg.ContentField (dot path), metadata from cfg.MetadataFields
// (dot path, missing segment -> ""), plus collection.
func project(cfg CollectionConfig, record bson.M) document.Document {
	content := dotString(record, cfg.ContentField)
	meta := map[string]any{
		"source":     string(document.SourceDocs),
		"collection": cfg.Name,
	}
	for _, field := range cfg.MetadataFields {
		meta[field] = dotString(record, field)
	}
	return document.New(content, meta)
}

// dotString traverses record along a dot-separated path, returning ""
// if any segment is missing.
func dotString(record bson.M, path string) string {
	v := dotValue(map[string]any(record), path)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func dotValue(m map[string]any, path string) any {
	segs := splitPath(path)
	var cur any = m
	for _, seg := range segs {
		next, ok := asMap(cur)
		if !ok {
			return nil
		}
		v, ok := next[seg]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case bson.M:
		return map[string]any(t), true
	default:
		return nil, false
	}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	var segs []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segs = append(segs, path[start:i])
			start = i + 1
		}
	}
	segs = append(segs, path[start:])
	return segs
}
