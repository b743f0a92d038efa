// Package whatsapp talks to the Cloud API: sending text replies outbound
// and decoding webhook deliveries inbound.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://graph.facebook.com/v18.0"

// Config carries Cloud API credentials and delivery tuning.
type Config struct {
	Token         string
	PhoneNumberID string
	BaseURL       string
	// MaxMessageChars caps a single outbound message; longer replies are
	// split into sequential chunks.
	MaxMessageChars int
	// ChunkDelay is the pause between chunks so they arrive in order.
	ChunkDelay time.Duration
}

// Client sends messages through the Graph API.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxMessageChars <= 0 {
		cfg.MaxMessageChars = 4096
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.Token) != "" && strings.TrimSpace(c.cfg.PhoneNumberID) != ""
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendText delivers text to a recipient, splitting it into chunks when it
// exceeds the configured limit. Delivery is all or nothing: the first chunk
// that fails aborts the remainder and the whole send reports failure.
func (c *Client) SendText(ctx context.Context, to, text string) (int, error) {
	if !c.Configured() {
		return 0, fmt.Errorf("whatsapp: missing credentials")
	}

	chunks := SplitMessage(text, c.cfg.MaxMessageChars)
	for i, chunk := range chunks {
		if i > 0 && c.cfg.ChunkDelay > 0 {
			select {
			case <-time.After(c.cfg.ChunkDelay):
			case <-ctx.Done():
				return i, ctx.Err()
			}
		}
		if err := c.sendOne(ctx, to, chunk); err != nil {
			return i, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return len(chunks), nil
}

func (c *Client) sendOne(ctx context.Context, to, body string) error {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	payload.Text.Body = body

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return fmt.Errorf("status %d: %s", res.StatusCode, string(snippet))
	}
	return nil
}

// SplitMessage cuts text into pieces of at most limit runes. Splits happen
// on rune boundaries so multibyte characters survive intact.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
