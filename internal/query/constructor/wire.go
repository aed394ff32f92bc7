package constructor

import (
	"encoding/json"
	"fmt"

	"github.com/ragcat-dev/ragcat/internal/query"
)

// wireQuery is the JSON shape the LLM is asked to produce: a free-text
// phrase plus a filter tree. It exists only at the LLM boundary; the
// rest of the system works with query.StructuredQuery /
// query.FilterExpr.
type wireQuery struct {
	Text   string    `json:"text"`
	Filter *wireNode `json:"filter"`
}

// wireNode mirrors the tagged-variant FilterExpr shape in JSON. Exactly
// one of And/Or/Not/Eq/Range should be set; anything else is treated
// as malformed.
type wireNode struct {
	And   []wireNode `json:"and,omitempty"`
	Or    []wireNode `json:"or,omitempty"`
	Not   *wireNode  `json:"not,omitempty"`
	Eq    *wireLeaf  `json:"eq,omitempty"`
	Range *wireRange `json:"range,omitempty"`
}

type wireLeaf struct {
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
}

type wireRange struct {
	Attribute string `json:"attribute"`
	Op        string `json:"op"`
	Value     any    `json:"value"`
}

// toFilterExpr converts a wireNode to a query.FilterExpr, or an error if
// the node names none or more than one variant.
func (n *wireNode) toFilterExpr() (query.FilterExpr, error) {
	if n == nil {
		return query.MatchAll(), nil
	}
	set := 0
	var result query.FilterExpr
	var err error

	if n.And != nil {
		set++
		result, err = convertChildren(n.And, func(cs []query.FilterExpr) query.FilterExpr { return query.And{Children: cs} })
	}
	if n.Or != nil {
		set++
		result, err = convertChildren(n.Or, func(cs []query.FilterExpr) query.FilterExpr { return query.Or{Children: cs} })
	}
	if n.Not != nil {
		set++
		var child query.FilterExpr
		child, err = n.Not.toFilterExpr()
		result = query.Not{Child: child}
	}
	if n.Eq != nil {
		set++
		result = query.Comparison{Attribute: n.Eq.Attribute, Op: query.OpEq, Value: leafValue(n.Eq.Value)}
	}
	if n.Range != nil {
		set++
		op, opErr := parseOp(n.Range.Op)
		if opErr != nil {
			return nil, opErr
		}
		result = query.Comparison{Attribute: n.Range.Attribute, Op: op, Value: leafValue(n.Range.Value)}
	}

	if set != 1 {
		return nil, fmt.Errorf("constructor: filter node has %d variants set, want exactly 1", set)
	}
	return result, err
}

func convertChildren(nodes []wireNode, build func([]query.FilterExpr) query.FilterExpr) (query.FilterExpr, error) {
	children := make([]query.FilterExpr, 0, len(nodes))
	for i := range nodes {
		child, err := nodes[i].toFilterExpr()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return build(children), nil
}

func parseOp(s string) (query.CompareOp, error) {
	switch query.CompareOp(s) {
	case query.OpLt, query.OpLte, query.OpGt, query.OpGte, query.OpEq:
		return query.CompareOp(s), nil
	default:
		return "", fmt.Errorf("constructor: unknown comparison op %q", s)
	}
}

// leafValue maps the literal string "NO_FILTER" to query.NoFilter and
// returns every other decoded value unchanged.
func leafValue(v any) any {
	if s, ok := v.(string); ok && s == "NO_FILTER" {
		return query.NoFilter
	}
	return v
}

func unmarshalWireQuery(data []byte) (wireQuery, error) {
	var wq wireQuery
	if err := json.Unmarshal(data, &wq); err != nil {
		return wireQuery{}, err
	}
	return wq, nil
}
