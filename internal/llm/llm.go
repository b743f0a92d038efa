// Package llm holds the AI service capabilities the relay composes: a
// reasoning engine, a knowledge searcher and a summarizer, each behind its
// own interface with an HTTP implementation and a mock.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adityakx/sehat/internal/reliability"
)

// ErrNotConfigured marks a provider whose credentials are absent. Callers
// treat it like any other provider failure and degrade per their contract.
var ErrNotConfigured = errors.New("provider is not configured")

// Exchange is one prior conversation turn replayed as reasoning context.
// Turns are supplied oldest first; each contributes the user message and
// then the assistant's reply.
type Exchange struct {
	User      string
	Assistant string
}

// Reasoner produces a conversational answer for a prompt with optional
// chronological history. The persona/system instruction is fixed at
// construction and is never derived from user input.
type Reasoner interface {
	Answer(ctx context.Context, prompt string, history []Exchange) (string, error)
}

// Searcher retrieves current information for a query. Any error means the
// capability is unavailable right now; callers must treat that as a normal
// outcome, not a fault.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Summarizer condenses a long answer. Same availability semantics as
// Searcher: on error the caller keeps the original text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

const (
	requestTimeout = 60 * time.Second
	retryBase      = 200 * time.Millisecond
	retryCap       = 2 * time.Second
)

// postJSON sends payload and returns the response body, retrying once on a
// retryable status before giving up.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		res, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("send request: %w", err)
		}

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			data, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
			res.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read response: %w", err)
			}
			return data, nil
		}

		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		res.Body.Close()

		if attempt == 0 && reliability.IsRetryableHTTPStatus(res.StatusCode) {
			select {
			case <-time.After(reliability.Backoff(attempt, retryBase, retryCap)):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return nil, fmt.Errorf("status %d: %s", res.StatusCode, string(snippet))
	}
}

// chatMessage and chatRequest cover the OpenAI-compatible chat endpoints
// used by both Perplexity and Groq.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func chatCompletion(ctx context.Context, client *http.Client, url, apiKey string, req chatRequest) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	body, err := postJSON(ctx, client, url, headers, req)
	if err != nil {
		return "", err
	}

	var res chatResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("malformed response: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	return res.Choices[0].Message.Content, nil
}
