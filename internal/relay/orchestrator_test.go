package relay

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/adityakx/sehat/internal/llm"
	"github.com/adityakx/sehat/internal/memory"
	"github.com/adityakx/sehat/internal/observability"
	"github.com/adityakx/sehat/internal/strategy"
)

// One registry-backed instrument set for the whole test binary.
var testMetrics = observability.NewMetrics("relay_test")

// passthroughTranslator reports every message as already English.
type passthroughTranslator struct{}

func (passthroughTranslator) ToEnglish(_ context.Context, text string) (string, string) {
	return "en", text
}

func (passthroughTranslator) FromEnglish(_ context.Context, text, _ string) string {
	return text
}

// spanishTranslator simulates a Spanish user: inbound text is "translated"
// by stripping a marker, outbound by adding one.
type spanishTranslator struct{}

func (spanishTranslator) ToEnglish(_ context.Context, text string) (string, string) {
	return "es", strings.TrimPrefix(text, "[es]")
}

func (spanishTranslator) FromEnglish(_ context.Context, text, lang string) string {
	if lang == "es" {
		return "[es]" + text
	}
	return text
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	to    []string
	err   error
	calls int
}

func (s *recordingSender) SendText(_ context.Context, to, text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.to = append(s.to, to)
	s.sent = append(s.sent, text)
	return 1, nil
}

func (s *recordingSender) last(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		t.Fatalf("nothing was sent")
	}
	return s.sent[len(s.sent)-1]
}

func newOrchestrator(t *testing.T, opts Options) *Orchestrator {
	t.Helper()
	if opts.Translator == nil {
		opts.Translator = passthroughTranslator{}
	}
	if opts.Classifier == nil {
		opts.Classifier = strategy.NewClassifier(strategy.DefaultRules())
	}
	if opts.Reasoner == nil {
		opts.Reasoner = &llm.MockReasoner{}
	}
	if opts.Searcher == nil {
		opts.Searcher = &llm.MockSearcher{}
	}
	if opts.Summarizer == nil {
		opts.Summarizer = &llm.MockSummarizer{}
	}
	if opts.Store == nil {
		opts.Store = memory.NewInMemoryStore()
	}
	opts.Metrics = testMetrics
	return NewOrchestrator(opts)
}

func TestHandleEmergencySkipsAllProviders(t *testing.T) {
	sender := &recordingSender{}
	orch := newOrchestrator(t, Options{
		Reasoner: &llm.MockReasoner{AnswerFunc: func(context.Context, string, []llm.Exchange) (string, error) {
			t.Fatalf("reasoner must not be called for emergencies")
			return "", nil
		}},
		Searcher: &llm.MockSearcher{SearchFunc: func(context.Context, string) (string, error) {
			t.Fatalf("searcher must not be called for emergencies")
			return "", nil
		}},
		Summarizer: &llm.MockSummarizer{SummarizeFunc: func(context.Context, string) (string, error) {
			t.Fatalf("summarizer must not be called for emergencies")
			return "", nil
		}},
		Sender: sender,
	})

	if err := orch.Handle(context.Background(), "15550001111", "I have severe chest pain"); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := sender.last(t); got != emergencyScript {
		t.Fatalf("sent %q, want emergency script", got)
	}
}

func TestHandleSearchAndSummarize(t *testing.T) {
	sender := &recordingSender{}
	var reasonerPrompt string
	orch := newOrchestrator(t, Options{
		Searcher: &llm.MockSearcher{SearchFunc: func(_ context.Context, query string) (string, error) {
			if query != "what are the latest flu treatments" {
				t.Fatalf("search query = %q", query)
			}
			return "antivirals within 48 hours", nil
		}},
		Reasoner: &llm.MockReasoner{AnswerFunc: func(_ context.Context, prompt string, _ []llm.Exchange) (string, error) {
			reasonerPrompt = prompt
			return "a long detailed answer", nil
		}},
		Summarizer: &llm.MockSummarizer{SummarizeFunc: func(_ context.Context, text string) (string, error) {
			if text != "a long detailed answer" {
				t.Fatalf("summarize input = %q", text)
			}
			return "short answer", nil
		}},
		Sender: sender,
	})

	if err := orch.Handle(context.Background(), "u", "what are the latest flu treatments"); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(reasonerPrompt, "antivirals within 48 hours") {
		t.Fatalf("reasoner prompt missing search context: %q", reasonerPrompt)
	}
	if !strings.Contains(reasonerPrompt, "what are the latest flu treatments") {
		t.Fatalf("reasoner prompt missing question: %q", reasonerPrompt)
	}
	if got := sender.last(t); got != "short answer"+disclaimerFooter {
		t.Fatalf("sent %q, want summary with disclaimer", got)
	}
}

func TestHandleSearchUnavailableFallsBackToDirectReasoning(t *testing.T) {
	sender := &recordingSender{}
	reasonerCalls := 0
	orch := newOrchestrator(t, Options{
		Searcher: &llm.MockSearcher{SearchFunc: func(context.Context, string) (string, error) {
			return "", errors.New("search down")
		}},
		Reasoner: &llm.MockReasoner{AnswerFunc: func(_ context.Context, prompt string, _ []llm.Exchange) (string, error) {
			reasonerCalls++
			if prompt != "what are the latest flu treatments" {
				t.Fatalf("prompt = %q, want the original question only", prompt)
			}
			return "direct answer", nil
		}},
		Summarizer: &llm.MockSummarizer{SummarizeFunc: func(_ context.Context, text string) (string, error) {
			if text != "direct answer" {
				t.Fatalf("summarize input = %q, want the direct answer", text)
			}
			return text, nil
		}},
		Sender: sender,
	})

	if err := orch.Handle(context.Background(), "u", "what are the latest flu treatments"); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if reasonerCalls != 1 {
		t.Fatalf("reasoner calls = %d, want 1", reasonerCalls)
	}
	if got := sender.last(t); got != "direct answer"+disclaimerFooter {
		t.Fatalf("sent %q", got)
	}
}

func TestHandleSummarizerUnavailableKeepsFullAnswer(t *testing.T) {
	sender := &recordingSender{}
	orch := newOrchestrator(t, Options{
		Searcher: &llm.MockSearcher{SearchFunc: func(context.Context, string) (string, error) {
			return "context", nil
		}},
		Reasoner: &llm.MockReasoner{AnswerFunc: func(context.Context, string, []llm.Exchange) (string, error) {
			return "the full answer", nil
		}},
		Summarizer: &llm.MockSummarizer{SummarizeFunc: func(context.Context, string) (string, error) {
			return "", errors.New("summarizer down")
		}},
		Sender: sender,
	})

	if err := orch.Handle(context.Background(), "u", "latest news on diabetes care"); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := sender.last(t); got != "the full answer"+disclaimerFooter {
		t.Fatalf("sent %q, want full answer with disclaimer", got)
	}
}

func TestHandleReasonerFailureSendsApology(t *testing.T) {
	sender := &recordingSender{}
	store := memory.NewInMemoryStore()
	orch := newOrchestrator(t, Options{
		Reasoner: &llm.MockReasoner{AnswerFunc: func(context.Context, string, []llm.Exchange) (string, error) {
			return "", errors.New("model down")
		}},
		Summarizer: &llm.MockSummarizer{SummarizeFunc: func(context.Context, string) (string, error) {
			t.Fatalf("the apology must not be summarized")
			return "", nil
		}},
		Sender: sender,
		Store:  store,
	})

	if err := orch.Handle(context.Background(), "u", "I have a mild headache"); err != nil {
		t.Fatalf("Handle() error = %v, delivery should still succeed", err)
	}
	if got := sender.last(t); got != apologyReply+disclaimerFooter {
		t.Fatalf("sent %q, want apology", got)
	}

	turns, err := store.Recent(context.Background(), "u", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("len(turns) = %d, the apology turn should be recorded", len(turns))
	}
}

func TestHandleTranslationRoundTrip(t *testing.T) {
	sender := &recordingSender{}
	store := memory.NewInMemoryStore()
	orch := newOrchestrator(t, Options{
		Translator: spanishTranslator{},
		Reasoner: &llm.MockReasoner{AnswerFunc: func(_ context.Context, prompt string, _ []llm.Exchange) (string, error) {
			if strings.HasPrefix(prompt, "[es]") {
				t.Fatalf("reasoner received untranslated prompt: %q", prompt)
			}
			return "rest and fluids", nil
		}},
		Sender: sender,
		Store:  store,
	})

	if err := orch.Handle(context.Background(), "u", "[es]me duele la cabeza"); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	got := sender.last(t)
	if !strings.HasPrefix(got, "[es]") {
		t.Fatalf("reply not translated back: %q", got)
	}
	if !strings.Contains(got, disclaimerFooter) {
		t.Fatalf("disclaimer missing from localized reply: %q", got)
	}

	turns, err := store.Recent(context.Background(), "u", 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if turns[0].Language != "es" {
		t.Fatalf("turn language = %q, want es", turns[0].Language)
	}
	if turns[0].Message != "[es]me duele la cabeza" {
		t.Fatalf("turn message = %q, want the original text", turns[0].Message)
	}
	if turns[0].Response != got {
		t.Fatalf("turn response = %q, want the delivered localized reply", turns[0].Response)
	}
}

func TestHandleDeliveryFailureSkipsPersistence(t *testing.T) {
	sender := &recordingSender{err: errors.New("network down")}
	store := memory.NewInMemoryStore()
	orch := newOrchestrator(t, Options{Sender: sender, Store: store})

	if err := orch.Handle(context.Background(), "u", "hello"); err == nil {
		t.Fatalf("Handle() expected delivery error")
	}
	turns, err := store.Recent(context.Background(), "u", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("len(turns) = %d, undelivered replies must not be recorded", len(turns))
	}
}

func TestHandleReplaysHistoryChronologically(t *testing.T) {
	sender := &recordingSender{}
	store := memory.NewInMemoryStore()
	orch := newOrchestrator(t, Options{
		Reasoner: &llm.MockReasoner{AnswerFunc: func(_ context.Context, prompt string, _ []llm.Exchange) (string, error) {
			return "answer to " + prompt, nil
		}},
		Sender:       sender,
		Store:        store,
		HistoryLimit: 2,
	})

	ctx := context.Background()
	for _, msg := range []string{"first", "second", "third"} {
		if err := orch.Handle(ctx, "u", msg); err != nil {
			t.Fatalf("Handle(%q) error = %v", msg, err)
		}
	}

	var gotHistory []llm.Exchange
	orch.reasoner = &llm.MockReasoner{AnswerFunc: func(_ context.Context, _ string, history []llm.Exchange) (string, error) {
		gotHistory = history
		return "ok", nil
	}}
	if err := orch.Handle(ctx, "u", "fourth"); err != nil {
		t.Fatalf("Handle(fourth) error = %v", err)
	}

	if len(gotHistory) != 2 {
		t.Fatalf("len(history) = %d, want limit 2", len(gotHistory))
	}
	if gotHistory[0].User != "second" || gotHistory[1].User != "third" {
		t.Fatalf("history order = [%q, %q], want oldest first within the window",
			gotHistory[0].User, gotHistory[1].User)
	}
}

func TestHandleHistoryErrorContinuesWithoutIt(t *testing.T) {
	sender := &recordingSender{}
	orch := newOrchestrator(t, Options{
		Store: failingStore{},
		Reasoner: &llm.MockReasoner{AnswerFunc: func(_ context.Context, _ string, history []llm.Exchange) (string, error) {
			if len(history) != 0 {
				t.Fatalf("history = %v, want none when the store fails", history)
			}
			return "answer", nil
		}},
		Sender: sender,
	})

	if err := orch.Handle(context.Background(), "u", "hello"); err != nil {
		t.Fatalf("Handle() error = %v, store failure must not block the reply", err)
	}
	if got := sender.last(t); got != "answer"+disclaimerFooter {
		t.Fatalf("sent %q", got)
	}
}

type failingStore struct{}

func (failingStore) AppendTurn(context.Context, memory.Turn) error {
	return errors.New("store down")
}

func (failingStore) Recent(context.Context, string, int) ([]memory.Turn, error) {
	return nil, errors.New("store down")
}

func (failingStore) Stats(context.Context) (memory.Stats, error) {
	return memory.Stats{}, errors.New("store down")
}

func (failingStore) Close() error { return nil }
