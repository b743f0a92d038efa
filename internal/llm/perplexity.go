package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// PerplexityConfig configures the online-search provider.
type PerplexityConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// PerplexitySearcher retrieves current information through Perplexity's
// online models. Search failures of any kind surface as errors the caller
// treats as "unavailable".
type PerplexitySearcher struct {
	cfg    PerplexityConfig
	client *http.Client
}

func NewPerplexitySearcher(cfg PerplexityConfig) *PerplexitySearcher {
	if cfg.Model == "" {
		cfg.Model = "llama-3.1-sonar-small-128k-online"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.perplexity.ai"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &PerplexitySearcher{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Configured reports whether credentials are present.
func (p *PerplexitySearcher) Configured() bool {
	return strings.TrimSpace(p.cfg.APIKey) != ""
}

func (p *PerplexitySearcher) Search(ctx context.Context, query string) (string, error) {
	if !p.Configured() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	content, err := chatCompletion(ctx, p.client, p.cfg.BaseURL+"/chat/completions", p.cfg.APIKey, chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful health information assistant."},
			{Role: "user", Content: "Search for recent, reliable information about: " + query},
		},
	})
	if err != nil {
		return "", fmt.Errorf("perplexity: %w", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("perplexity: empty result")
	}
	return content, nil
}
