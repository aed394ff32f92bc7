package codestore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/llmclient"
	"github.com/ragcat-dev/ragcat/internal/query"
	"github.com/ragcat-dev/ragcat/internal/query/translator"
)

func TestExtractFilenames_StackTrace(t *testing.T) {
	t.Parallel()
	re := filenameRegexp([]string{"js"})
	q := "at Service.handler (/app/services/crm.service.js:199:13) … at async /app/middlewares/metricsMiddleware.js:16:17"
	got := ExtractFilenames(q, re)
	want := []string{"crm.service.js", "metricsMiddleware.js"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractFilenames() = %v, want %v", got, want)
	}
}

func TestExtractFilenames_DedupesAndSorts(t *testing.T) {
	t.Parallel()
	re := filenameRegexp([]string{"go"})
	q := "stack: /pkg/b.go and /pkg/a.go and again /pkg/b.go"
	got := ExtractFilenames(q, re)
	want := []string{"a.go", "b.go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractFilenames() = %v, want %v", got, want)
	}
}

func TestIsStackTrace(t *testing.T) {
	t.Parallel()
	tests := []struct {
		q    string
		want bool
	}{
		{"stack: something broke", true},
		{"Error: boom\n    at Service.handler (/app/x.js:1:1)", true},
		{"what errors happened in prod", false},
	}
	for _, tc := range tests {
		tc := tc
		if got := isStackTrace(tc.q); got != tc.want {
			t.Errorf("isStackTrace(%q) = %v, want %v", tc.q, got, tc.want)
		}
	}
}

// TestFilenameFilter_TranslatesToShouldOfTerms checks that the tree
// filenameFilter builds lowers through internal/query/translator: an Or
// of per-filename eq comparisons must lower to a should clause of term
// leaves, the same DSL shape the log index consumes.
func TestFilenameFilter_TranslatesToShouldOfTerms(t *testing.T) {
	t.Parallel()
	sq := query.StructuredQuery{Filter: filenameFilter([]string{"a.go", "b.go"})}
	body := translator.Translate(sq)
	boolBody, ok := body["bool"].(map[string]any)
	if !ok {
		t.Fatalf("Translate() = %#v, want a bool body", body)
	}
	should, ok := boolBody["should"].([]any)
	if !ok || len(should) != 2 {
		t.Fatalf("should = %#v, want 2 term clauses", should)
	}
	for _, clause := range should {
		term, ok := clause.(map[string]any)["term"].(map[string]any)
		if !ok {
			t.Fatalf("clause = %#v, want a term leaf", clause)
		}
		if _, ok := term["filename"]; !ok {
			t.Errorf("term = %#v, want a filename key", term)
		}
	}
}

type fakeEmbedder struct{ vec []float32 }

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, nil
}

func TestSearch_StackTraceResolvesFilesByName(t *testing.T) {
	t.Parallel()
	r := New(Config{Extensions: []string{"js"}, K: 5}, fakeEmbedder{}, nil, zap.NewNop())
	r.replaceCorpus([]fileRecord{
		{path: "/app/services/crm.service.js", name: "crm.service.js", body: "module code"},
		{path: "/app/other.js", name: "other.js", body: "unrelated"},
	})

	docs, err := r.Search(context.Background(), "stack: at Service.handler (/app/services/crm.service.js:199:13)")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 1 || docs[0].MetaString("filename") != "crm.service.js" {
		t.Fatalf("Search() = %#v, want single crm.service.js doc", docs)
	}
}

func TestSearch_SemanticPathRanksBySimilarity(t *testing.T) {
	t.Parallel()
	r := New(Config{K: 1}, fakeEmbedder{vec: []float32{1, 0}}, nil, zap.NewNop())
	r.replaceCorpus([]fileRecord{
		{path: "/a.go", name: "a.go", body: "close match", vector: []float32{1, 0}},
		{path: "/b.go", name: "b.go", body: "far match", vector: []float32{0, 1}},
	})

	docs, err := r.Search(context.Background(), "how does retry logic work")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 1 || docs[0].MetaString("filename") != "a.go" {
		t.Fatalf("Search() = %#v, want top match a.go", docs)
	}
}

func TestSearch_SemanticPathUsesLLMNamedFile(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(struct {
			Message llmclient.Message `json:"message"`
		}{Message: llmclient.Message{Content: `{"filename": "b.go"}`}})
	}))
	defer srv.Close()

	llm := llmclient.New(llmclient.Config{BaseURL: srv.URL, Model: "m", Timeout: time.Second}, zap.NewNop())
	r := New(Config{K: 1}, fakeEmbedder{vec: []float32{1, 0}}, llm, zap.NewNop())
	r.replaceCorpus([]fileRecord{
		{path: "/a.go", name: "a.go", body: "close match", vector: []float32{1, 0}},
		{path: "/b.go", name: "b.go", body: "far match", vector: []float32{0, 1}},
	})

	docs, err := r.Search(context.Background(), "what does b.go do")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 1 || docs[0].MetaString("filename") != "b.go" {
		t.Fatalf("Search() = %#v, want single b.go doc (LLM-named)", docs)
	}
}
