// Package generator calls the external design-image generation API. The API
// returns time-limited source URLs; persistence is the ingest pipeline's job.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/marcuseden/slavajewlery-sub001/internal/config"
)

type Client struct {
	httpClient *http.Client
	cfg        config.GeneratorConfig
}

func NewClient(cfg config.GeneratorConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	View   string `json:"view"`
}

type generateResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Generate requests one rendering and returns the time-limited URL of the
// result.
func (c *Client) Generate(ctx context.Context, prompt string, view string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		View:   view,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/images/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generator: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read generator response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator status %d: %s", resp.StatusCode, payload)
	}

	var out generateResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decode generator response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("generator error: %s", out.Error)
	}
	if out.URL == "" {
		return "", fmt.Errorf("generator returned no url")
	}
	return out.URL, nil
}
