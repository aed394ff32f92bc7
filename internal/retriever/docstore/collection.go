package docstore

// CollectionConfig configures how one document-store collection is
// queried and projected into document.Document values. Ported directly
// from the two collections original_source/mongodb_query_constructor.py
// names (items, crm-agreements), generalized to an arbitrary configured
// set (spec.md §3).
type CollectionConfig struct {
	Name             string
	ExactMatchFields []string
	RegexMatchFields []string
	MetadataFields   []string
	ContentField     string
}

func (c CollectionConfig) isExactField(field string) bool {
	for _, f := range c.ExactMatchFields {
		if f == field {
			return true
		}
	}
	return false
}

func (c CollectionConfig) isRegexField(field string) bool {
	for _, f := range c.RegexMatchFields {
		if f == field {
			return true
		}
	}
	return false
}
