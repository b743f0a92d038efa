package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultPersona is the fixed system instruction for the reasoning engine.
// It is configuration, not input: user text never reaches it.
const DefaultPersona = "You are a helpful AI health assistant. Provide accurate, " +
	"helpful health information, but always include a disclaimer that you are " +
	"not a medical professional and users should consult a doctor for medical advice."

// GeminiConfig configures the Gemini reasoning provider.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Persona overrides DefaultPersona when set.
	Persona string
}

// GeminiReasoner answers prompts through the Gemini generateContent API.
type GeminiReasoner struct {
	cfg     GeminiConfig
	persona string
	client  *http.Client
}

func NewGeminiReasoner(cfg GeminiConfig) *GeminiReasoner {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	persona := cfg.Persona
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}

	return &GeminiReasoner{
		cfg:     cfg,
		persona: persona,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Configured reports whether credentials are present.
func (g *GeminiReasoner) Configured() bool {
	return strings.TrimSpace(g.cfg.APIKey) != ""
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Answer replays history oldest-to-newest (user message, then the prior
// reply) before the current prompt, so the model sees a chronologically
// coherent conversation.
func (g *GeminiReasoner) Answer(ctx context.Context, prompt string, history []Exchange) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}

	contents := make([]geminiContent, 0, len(history)*2+1)
	for _, ex := range history {
		contents = append(contents,
			geminiContent{Role: "user", Parts: []geminiPart{{Text: ex.User}}},
			geminiContent{Role: "model", Parts: []geminiPart{{Text: ex.Assistant}}},
		)
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: prompt}}})

	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: g.persona}}},
		Contents:          contents,
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.cfg.BaseURL, g.cfg.Model, url.QueryEscape(g.cfg.APIKey))

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	body, err := postJSON(ctx, g.client, endpoint, nil, req)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	var res geminiResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("gemini: malformed response: %w", err)
	}
	if len(res.Candidates) == 0 {
		return "", fmt.Errorf("gemini: response has no candidates")
	}

	var out strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	answer := strings.TrimSpace(out.String())
	if answer == "" {
		return "", fmt.Errorf("gemini: empty answer")
	}
	return answer, nil
}
