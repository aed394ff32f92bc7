package rewriter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

func TestRewrite_ReturnsImprovedQuestion(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(struct {
			Message llmclient.Message `json:"message"`
		}{Message: llmclient.Message{Content: `{"improved_question":"What errors occurred in the payments service in the last hour?"}`}})
	}))
	defer srv.Close()

	r := New(llmclient.New(llmclient.Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop()))
	got, err := r.Rewrite(context.Background(), "any errors in payments recently?")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "What errors occurred in the payments service in the last hour?" {
		t.Errorf("Rewrite() = %q", got)
	}
}

func TestRewrite_EmptyImprovedQuestionKeepsOriginal(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(struct {
			Message llmclient.Message `json:"message"`
		}{Message: llmclient.Message{Content: `{"improved_question":""}`}})
	}))
	defer srv.Close()

	r := New(llmclient.New(llmclient.Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop()))
	got, err := r.Rewrite(context.Background(), "original question")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "original question" {
		t.Errorf("Rewrite() = %q, want original question", got)
	}
}
