package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// GroqConfig configures the summarization provider.
type GroqConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GroqSummarizer condenses answers through Groq's chat completions API.
type GroqSummarizer struct {
	cfg    GroqConfig
	client *http.Client
}

func NewGroqSummarizer(cfg GroqConfig) *GroqSummarizer {
	if cfg.Model == "" {
		cfg.Model = "llama-3.1-70b-versatile"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &GroqSummarizer{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Configured reports whether credentials are present.
func (g *GroqSummarizer) Configured() bool {
	return strings.TrimSpace(g.cfg.APIKey) != ""
}

func (g *GroqSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	content, err := chatCompletion(ctx, g.client, g.cfg.BaseURL+"/chat/completions", g.cfg.APIKey, chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "Summarize this health information concisely."},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("groq: empty summary")
	}
	return content, nil
}
