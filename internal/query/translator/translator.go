// Package translator lowers an abstract query.FilterExpr to the
// Elasticsearch-style bool/must/should/must_not/filter/range/term DSL
// consumed by the log index; the code store also lowers its filename
// filter through it, for a debug log.
//
// Grounded on the must/must_not split in the teacher's
// internal/es/shared.FilterBuilder and on the original Python
// search/translator.py this spec was distilled from.
package translator

import "github.com/ragcat-dev/ragcat/internal/query"

// Translate lowers a query.StructuredQuery into the backend DSL body
// (everything under the "query" key of a search request). It is a pure
// function: no I/O, no shared state.
//
// Rules (spec.md §4.2):
//   - Comparison(eq, a, v) -> {term: {a: v}}; any range op -> {range: {a: {op: v}}}.
//   - Nested And/Or/Not -> bool.must/should/must_not of the translated
//     children; a top-level Or -> should, a top-level Not -> must_not.
//   - A leaf whose value is query.NoFilter is dropped; an operator whose
//     children all drop is itself dropped.
//   - The text clause, when present, is {match: {msg: text}} under must.
//   - The children of a top-level And (and a lone top-level Comparison)
//     land under filter so they don't affect score, with or without a
//     text clause; a msg comparison among them goes under must instead.
//     A msg comparison nested deeper, inside an And/Or/Not child of the
//     top-level And, stays inside that child under filter.
//   - The whole translation is always wrapped in bool; a fully empty
//     translation becomes match_all.
func Translate(sq query.StructuredQuery) map[string]any {
	var must, should, mustNot, filter []any

	if sq.Text != "" {
		must = append(must, map[string]any{"match": map[string]any{"msg": sq.Text}})
	}

	switch f := sq.Filter.(type) {
	case nil:
	case query.And:
		for _, child := range f.Children {
			placeTopLevel(child, &must, &filter)
		}
	case query.Or:
		for _, child := range f.Children {
			if clause, ok := translateNode(child); ok {
				should = append(should, clause)
			}
		}
	case query.Not:
		if clause, ok := translateNode(f.Child); ok {
			mustNot = append(mustNot, clause)
		}
	case query.Comparison:
		placeTopLevel(f, &must, &filter)
	}

	boolBody := map[string]any{}
	if len(must) > 0 {
		boolBody["must"] = must
	}
	if len(should) > 0 {
		boolBody["should"] = should
		boolBody["minimum_should_match"] = 1
	}
	if len(mustNot) > 0 {
		boolBody["must_not"] = mustNot
	}
	if len(filter) > 0 {
		boolBody["filter"] = filter
	}

	if len(boolBody) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{"bool": boolBody}
}

// placeTopLevel routes a single top-level filter child into must
// (msg-attribute leaves) or filter (everything else), per the tie-break
// rule: filters contribute to matching, not to score.
func placeTopLevel(expr query.FilterExpr, must, filter *[]any) {
	if cmp, ok := expr.(query.Comparison); ok {
		if query.IsNoFilter(cmp.Value) {
			return
		}
		clause := leafClause(cmp)
		if cmp.Attribute == "msg" {
			*must = append(*must, clause)
			return
		}
		*filter = append(*filter, clause)
		return
	}
	if clause, ok := translateNode(expr); ok {
		*filter = append(*filter, clause)
	}
}

// translateNode recursively lowers a non-top-level expression into a
// single DSL clause. ok is false when the expression drops entirely
// (a NoFilter leaf, or a structural node whose children all dropped).
func translateNode(expr query.FilterExpr) (map[string]any, bool) {
	switch e := expr.(type) {
	case query.Comparison:
		if query.IsNoFilter(e.Value) {
			return nil, false
		}
		return leafClause(e), true
	case query.And:
		var clauses []any
		for _, c := range e.Children {
			if clause, ok := translateNode(c); ok {
				clauses = append(clauses, clause)
			}
		}
		if len(clauses) == 0 {
			return nil, false
		}
		return map[string]any{"bool": map[string]any{"must": clauses}}, true
	case query.Or:
		var clauses []any
		for _, c := range e.Children {
			if clause, ok := translateNode(c); ok {
				clauses = append(clauses, clause)
			}
		}
		if len(clauses) == 0 {
			return nil, false
		}
		return map[string]any{"bool": map[string]any{
			"should":               clauses,
			"minimum_should_match": 1,
		}}, true
	case query.Not:
		clause, ok := translateNode(e.Child)
		if !ok {
			return nil, false
		}
		return map[string]any{"bool": map[string]any{"must_not": []any{clause}}}, true
	default:
		return nil, false
	}
}

func leafClause(c query.Comparison) map[string]any {
	if c.Op == query.OpEq {
		return map[string]any{"term": map[string]any{c.Attribute: c.Value}}
	}
	return map[string]any{"range": map[string]any{
		c.Attribute: map[string]any{string(c.Op): c.Value},
	}}
}
