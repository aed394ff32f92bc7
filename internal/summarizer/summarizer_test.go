package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ragcat-dev/ragcat/internal/document"
	"github.com/ragcat-dev/ragcat/internal/llmclient"
)

func TestSummarize_UnderBudgetPassesThrough(t *testing.T) {
	t.Parallel()
	s := New(llmclient.New(llmclient.Config{BaseURL: "http://unused", Timeout: time.Second}, zap.NewNop()), 1000)
	docs := []document.Document{document.New("short log line", nil)}
	got, err := s.Summarize(context.Background(), docs)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "short log line" {
		t.Errorf("Summarize() = %q, want passthrough", got)
	}
}

func TestSummarize_OverBudgetCallsLLM(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(struct {
			Message llmclient.Message `json:"message"`
		}{Message: llmclient.Message{Content: "condensed digest"}})
	}))
	defer srv.Close()

	s := New(llmclient.New(llmclient.Config{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop()), 5)
	docs := []document.Document{document.New(strings.Repeat("x", 50), nil)}
	got, err := s.Summarize(context.Background(), docs)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "condensed digest" {
		t.Errorf("Summarize() = %q, want condensed digest", got)
	}
}
