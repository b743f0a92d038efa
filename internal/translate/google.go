package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GoogleProvider calls the public Google web-translate endpoint. It needs no
// API key, which is why the relay can enable translation unconditionally.
type GoogleProvider struct {
	baseURL string
	client  *http.Client
}

func NewGoogleProvider(baseURL string) *GoogleProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://translate.googleapis.com"
	}
	return &GoogleProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *GoogleProvider) Translate(ctx context.Context, text, source, target string) (Result, error) {
	if source == "" {
		source = Auto
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	endpoint := p.baseURL + "/translate_a/single?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return Result{}, fmt.Errorf("translate status %d: %s", res.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse unpacks the gtx array-of-arrays payload:
// [[["<translated>","<original>",...], ...], null, "<detected-lang>", ...].
func parseGoogleResponse(body []byte) (Result, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Result{}, fmt.Errorf("malformed translate response: %w", err)
	}
	if len(raw) == 0 {
		return Result{}, fmt.Errorf("empty translate response")
	}

	segments, ok := raw[0].([]any)
	if !ok {
		return Result{}, fmt.Errorf("unexpected translate response shape")
	}

	var out strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			out.WriteString(s)
		}
	}

	detected := ""
	if len(raw) > 2 {
		if s, ok := raw[2].(string); ok {
			detected = s
		}
	}

	return Result{DetectedLanguage: detected, Text: out.String()}, nil
}
