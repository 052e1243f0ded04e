// Package quote fetches a short inspirational string, falling back to a
// hardcoded one on any failure.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultURL = "https://api.freeapi.app/api/v1/public/quotes/quote/random"

// Fallback is used whenever the endpoint cannot be reached or parsed.
const Fallback = "Success is not final, failure is not fatal: it is the courage to continue that counts."

// Client fetches random quotes.
type Client struct {
	http *http.Client
	url  string
	log  *zap.Logger
}

// New returns a client against the public quote endpoint.
func New(log *zap.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: 10 * time.Second},
		url:  defaultURL,
		log:  log,
	}
}

// Random returns a quote, or the fallback. It never fails; failures are
// logged and swallowed.
func (c *Client) Random(ctx context.Context) string {
	q, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("quote fetch failed", zap.Error(err))
		return Fallback
	}
	return q
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("quote endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Content string `json:"content"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode quote: %w", err)
	}
	if !body.Success || body.Data.Content == "" {
		return "", fmt.Errorf("quote endpoint returned no content")
	}
	return body.Data.Content, nil
}
