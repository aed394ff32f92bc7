package docstore

// fallbackFields is the regex fallback table keyed by collection name,
// used when the per-collection LLM query-analysis pass returns
// unparseable output (spec.md §9 Open Question 2: "LLM-driven
// classification with a regex fallback on malformed output"). Field
// lists are ported from the hard-coded per-collection defaults in
// original_source/mongodb_query_constructor.py.
var fallbackFields = map[string][]string{
	"items":          {"isbn", "author", "title"},
	"crm-agreements": {"account_id", "title", "counterparty"},
}

// fallbackFieldsFor returns the regex fallback fields for a collection,
// falling back further to the collection's own configured field union
// when it has no named entry in the table.
func fallbackFieldsFor(cfg CollectionConfig) []string {
	if fields, ok := fallbackFields[cfg.Name]; ok {
		return fields
	}
	all := make([]string, 0, len(cfg.ExactMatchFields)+len(cfg.RegexMatchFields))
	all = append(all, cfg.ExactMatchFields...)
	all = append(all, cfg.RegexMatchFields...)
	return all
}
