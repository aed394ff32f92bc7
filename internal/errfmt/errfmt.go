// Package errfmt centralizes "format a failed backend call" the way
// the teacher's internal/es/errfmt package did for a single
// Elasticsearch client, generalized here to any backend (log index,
// document store, code store, LLM endpoint).
package errfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FormatQueryError builds an error that pretty-prints the request body
// alongside the backend's response, so a failed query is diagnosable
// from the log line alone.
func FormatQueryError(backend, status string, body, queryJSON []byte) error {
	pretty := queryJSON
	var buf bytes.Buffer
	if json.Indent(&buf, queryJSON, "", "  ") == nil {
		pretty = buf.Bytes()
	}
	return fmt.Errorf("%s: request failed (status %s): %s\nquery: %s", backend, status, string(body), string(pretty))
}
