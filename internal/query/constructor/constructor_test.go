package constructor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/llmclient"
	"github.com/ragcat-dev/ragcat/internal/query"
	"github.com/ragcat-dev/ragcat/internal/query/translator"
)

func serverReplying(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(struct {
			Message llmclient.Message `json:"message"`
		}{Message: llmclient.Message{Role: "assistant", Content: content}})
	}))
}

func TestConstruct_ValidReply(t *testing.T) {
	t.Parallel()
	reply := `{"text":"","filter":{"and":[{"eq":{"attribute":"level","value":"error"}},{"eq":{"attribute":"ns","value":"prod"}},{"range":{"attribute":"time","op":"gte","value":"now-1h"}}]}}`
	srv := serverReplying(t, reply)
	defer srv.Close()

	c := New(llmclient.New(llmclient.Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop()), zap.NewNop())
	sq, err := c.Construct(context.Background(), "What are errors in prod last hour?")
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}
	and, ok := sq.Filter.(query.And)
	if !ok || len(and.Children) != 3 {
		t.Fatalf("Filter = %#v, want And with 3 children", sq.Filter)
	}
}

func TestConstruct_MalformedReply_FallsBackToMatchAll(t *testing.T) {
	t.Parallel()
	srv := serverReplying(t, "sorry, I don't understand")
	defer srv.Close()

	c := New(llmclient.New(llmclient.Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop()), zap.NewNop())
	sq, err := c.Construct(context.Background(), "what happened")
	if err != nil {
		t.Fatalf("Construct() error = %v, want nil (fallback, not error)", err)
	}
	if sq.Text != "what happened" {
		t.Errorf("Text = %q, want original question", sq.Text)
	}
	and, ok := sq.Filter.(query.And)
	if !ok || len(and.Children) != 0 {
		t.Fatalf("Filter = %#v, want match-all", sq.Filter)
	}
}

func TestConstruct_NoFilterSentinel(t *testing.T) {
	t.Parallel()
	reply := `{"text":"PSV-745559","filter":{"eq":{"attribute":"level","value":"NO_FILTER"}}}`
	srv := serverReplying(t, reply)
	defer srv.Close()

	c := New(llmclient.New(llmclient.Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop()), zap.NewNop())
	sq, err := c.Construct(context.Background(), "What happened with order PSV-745559?")
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}
	cmp, ok := sq.Filter.(query.Comparison)
	if !ok {
		t.Fatalf("Filter = %#v, want Comparison", sq.Filter)
	}
	if !query.IsNoFilter(cmp.Value) {
		t.Errorf("Value = %v, want NoFilter sentinel", cmp.Value)
	}
}

// TestConstruct_ExactIDLookup_TranslatesToTermInMust exercises the
// PSV-745559 few-shot example end to end: an exact-ID question must
// come back as an empty Text with the ID pinned to the msg attribute,
// which translator.Translate is required to place as a term clause
// under must, never under filter (spec.md §8 scenario 2).
func TestConstruct_ExactIDLookup_TranslatesToTermInMust(t *testing.T) {
	t.Parallel()
	reply := `{"text":"","filter":{"eq":{"attribute":"msg","value":"PSV-745559"}}}`
	srv := serverReplying(t, reply)
	defer srv.Close()

	c := New(llmclient.New(llmclient.Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop()), zap.NewNop())
	sq, err := c.Construct(context.Background(), "What happened with order PSV-745559?")
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}
	if sq.Text != "" {
		t.Errorf("Text = %q, want empty (the ID belongs in Filter, not Text)", sq.Text)
	}
	cmp, ok := sq.Filter.(query.Comparison)
	if !ok || cmp.Attribute != "msg" || cmp.Value != "PSV-745559" {
		t.Fatalf("Filter = %#v, want Comparison{Attribute: msg, Value: PSV-745559}", sq.Filter)
	}

	body := translator.Translate(sq)
	boolBody, ok := body["bool"].(map[string]any)
	if !ok {
		t.Fatalf("Translate() = %#v, want a bool body", body)
	}
	must, _ := boolBody["must"].([]any)
	if len(must) != 1 {
		t.Fatalf("must = %#v, want exactly one clause", must)
	}
	term, ok := must[0].(map[string]any)["term"].(map[string]any)
	if !ok || term["msg"] != "PSV-745559" {
		t.Errorf("must[0] = %#v, want {term:{msg:PSV-745559}}", must[0])
	}
	if filter, ok := boolBody["filter"]; ok {
		t.Errorf("filter = %#v, want no filter clause for this scenario", filter)
	}
}

func TestConstruct_BackendError_Propagates(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(llmclient.New(llmclient.Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop()), zap.NewNop())
	if _, err := c.Construct(context.Background(), "q"); err == nil {
		t.Fatal("Construct() error = nil, want non-nil on backend failure")
	}
}
