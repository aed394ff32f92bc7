package llmclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CompleteStream sends a system+user prompt pair with stream:true and
// returns a channel of incremental content chunks, closed once the
// response body ends or ctx is cancelled; the backend's done flag is
// not inspected. The channel is
// unbuffered; the caller is expected to drain it promptly.
func (c *Client) CompleteStream(ctx context.Context, system, user string) (<-chan string, error) {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  true,
		Options: chatOptions{Temperature: c.cfg.Temperature, NumCtx: c.cfg.NumCtx},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("llmclient: marshal stream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llmclient: build stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llmclient: stream request to %s: %w", c.cfg.Model, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("llmclient: %s stream returned status %d", c.cfg.Model, resp.StatusCode)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}
			var chunk chatResponse
			if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
				continue
			}
			if chunk.Message.Content == "" {
				continue
			}
			select {
			case out <- chunk.Message.Content:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
