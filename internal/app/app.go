// Package app wires configuration into a runnable service.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adityakx/sehat/internal/config"
	"github.com/adityakx/sehat/internal/httpapi"
	"github.com/adityakx/sehat/internal/llm"
	"github.com/adityakx/sehat/internal/memory"
	"github.com/adityakx/sehat/internal/observability"
	"github.com/adityakx/sehat/internal/relay"
	"github.com/adityakx/sehat/internal/strategy"
	"github.com/adityakx/sehat/internal/translate"
	"github.com/adityakx/sehat/internal/whatsapp"
)

// App is the assembled service: HTTP surface, background dispatcher and the
// resources that need closing on shutdown.
type App struct {
	Server     *httpapi.Server
	Dispatcher *relay.Dispatcher
	Store      memory.Store
}

// Build constructs every component from configuration. Providers without
// credentials are still wired; their calls fail as unavailable and the
// pipeline degrades per component.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := memory.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	rules, err := strategy.RulesFromPath(cfg.StrategyRulesPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load strategy rules: %w", err)
	}
	classifier := strategy.NewClassifier(rules)

	reasoner := llm.NewGeminiReasoner(llm.GeminiConfig{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
	searcher := llm.NewPerplexitySearcher(llm.PerplexityConfig{
		APIKey: cfg.PerplexityAPIKey,
		Model:  cfg.PerplexityModel,
	})
	summarizer := llm.NewGroqSummarizer(llm.GroqConfig{
		APIKey: cfg.GroqAPIKey,
		Model:  cfg.GroqModel,
	})

	translator := translate.NewService(
		translate.NewGoogleProvider(cfg.TranslateBaseURL), metrics, logger)

	sender := whatsapp.NewClient(whatsapp.Config{
		Token:           cfg.WhatsAppToken,
		PhoneNumberID:   cfg.WhatsAppPhoneNumberID,
		BaseURL:         cfg.WhatsAppAPIBaseURL,
		MaxMessageChars: cfg.MaxMessageChars,
		ChunkDelay:      cfg.ChunkDelay,
	})

	orch := relay.NewOrchestrator(relay.Options{
		Translator:   translator,
		Classifier:   classifier,
		Reasoner:     reasoner,
		Searcher:     searcher,
		Summarizer:   summarizer,
		Store:        store,
		Sender:       sender,
		Metrics:      metrics,
		Logger:       logger,
		HistoryLimit: cfg.HistoryLimit,
	})

	dispatcher := relay.NewDispatcher(orch, cfg.WorkerCount, cfg.QueueSize, metrics, logger)

	server := httpapi.NewServer(httpapi.Options{
		Queue:       dispatcher,
		Store:       store,
		VerifyToken: cfg.VerifyToken,
		Services: map[string]bool{
			"whatsapp":   sender.Configured(),
			"gemini":     reasoner.Configured(),
			"perplexity": searcher.Configured(),
			"groq":       summarizer.Configured(),
			"translate":  true,
			"store":      true,
		},
		Logger: logger,
	})

	return &App{
		Server:     server,
		Dispatcher: dispatcher,
		Store:      store,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	return a.Store.Close()
}
