package llm

import "context"

// MockReasoner implements Reasoner with a function field for tests.
type MockReasoner struct {
	AnswerFunc func(ctx context.Context, prompt string, history []Exchange) (string, error)
}

func (m *MockReasoner) Answer(ctx context.Context, prompt string, history []Exchange) (string, error) {
	if m.AnswerFunc == nil {
		return "mock answer", nil
	}
	return m.AnswerFunc(ctx, prompt, history)
}

// MockSearcher implements Searcher with a function field for tests.
type MockSearcher struct {
	SearchFunc func(ctx context.Context, query string) (string, error)
}

func (m *MockSearcher) Search(ctx context.Context, query string) (string, error) {
	if m.SearchFunc == nil {
		return "", ErrNotConfigured
	}
	return m.SearchFunc(ctx, query)
}

// MockSummarizer implements Summarizer with a function field for tests.
type MockSummarizer struct {
	SummarizeFunc func(ctx context.Context, text string) (string, error)
}

func (m *MockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if m.SummarizeFunc == nil {
		return "", ErrNotConfigured
	}
	return m.SummarizeFunc(ctx, text)
}
