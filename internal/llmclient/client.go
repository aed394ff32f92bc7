// Package llmclient is the shared HTTP client every LLM-backed
// component (QueryConstructor, graders, rewriter, answerer) is built
// on top of. One Client is constructed per configured role at startup.
//
// Grounded on the teacher's internal/agentbuilder.Client: a thin JSON
// POST wrapper with status-code error wrapping, generalized from a
// single Kibana-bound endpoint to an arbitrary Ollama-compatible chat
// endpoint per role.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Message mirrors a single turn in a chat-completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the wire shape POSTed to cfg.BaseURL + "/api/chat".
type chatRequest struct {
	Model    string          `json:"model"`
	Messages []Message       `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  chatOptions     `json:"options"`
	Format   json.RawMessage `json:"format,omitempty"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

type chatResponse struct {
	Message Message `json:"message"`
}

// Client talks to one LLM role's backend over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

// New builds a Client for the given role configuration.
func New(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// Complete sends a system+user prompt pair and returns the model's free
// text reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.chat(ctx, system, user, nil)
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// CompleteJSON sends a system+user prompt pair requesting a JSON-object
// response and unmarshals the model's reply into out. Callers treat a
// JSON decode failure as "malformed model output" (spec.md §7 kind 2)
// and fall back locally; CompleteJSON itself just reports the error.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, out any) error {
	resp, err := c.chat(ctx, system, user, json.RawMessage(`"json"`))
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(resp.Message.Content), out); err != nil {
		return fmt.Errorf("llmclient: decode structured reply: %w", err)
	}
	return nil
}

func (c *Client) chat(ctx context.Context, system, user string, format json.RawMessage) (*chatResponse, error) {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Options: chatOptions{Temperature: c.cfg.Temperature, NumCtx: c.cfg.NumCtx},
		Format:  format,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("llmclient: marshal request: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llmclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llmclient: request to %s: %w", c.cfg.Model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llmclient: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("llm request failed",
			zap.String("model", c.cfg.Model),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("llmclient: %s returned status %d: %s", c.cfg.Model, resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("llmclient: unmarshal response: %w", err)
	}
	return &parsed, nil
}
