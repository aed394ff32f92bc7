// Package document defines the unified result shape produced by every
// retriever (log index, document store, code store).
package document

// Source identifies which retriever produced a Document.
type Source string

const (
	SourceLogs    Source = "logs"
	SourceDocs    Source = "docstore"
	SourceCode    Source = "code"
)

// Document is the common value type every retriever projects its
// backend-specific records into. Once built with New it is treated as
// immutable by convention: callers never mutate Metadata in place.
type Document struct {
	Content  string
	Metadata map[string]any
}

// New builds a Document, copying meta so the caller's map can be reused
// or mutated afterward without affecting the returned value.
func New(content string, meta map[string]any) Document {
	cp := make(map[string]any, len(meta))
	for k, v := range meta {
		cp[k] = v
	}
	return Document{Content: content, Metadata: cp}
}

// MetaString returns the string value of a metadata key, or "" if absent
// or not a string.
func (d Document) MetaString(key string) string {
	v, ok := d.Metadata[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// SourceOf returns the document's source tag, or "" if unset.
func (d Document) SourceOf() Source {
	return Source(d.MetaString("source"))
}

// Key identifies a document by (source, primary-id) for dedup purposes.
// The primary id is the "id" metadata value when set, else the
// "filename" value, else the content itself. Code documents carry a
// filename (the file's basename), so they are keyed by it; log and
// docstore documents carry neither unless a configured metadata field
// is named "id", so they are keyed by their content.
func (d Document) Key() string {
	src := d.MetaString("source")
	id := d.MetaString("id")
	if id == "" {
		id = d.MetaString("filename")
	}
	if id == "" {
		id = d.Content
	}
	return src + "\x00" + id
}
