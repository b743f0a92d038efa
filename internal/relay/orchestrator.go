// Package relay turns an inbound user message into a delivered reply: it
// normalizes language, picks a response strategy, composes the AI services
// and records the completed turn.
package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/adityakx/sehat/internal/llm"
	"github.com/adityakx/sehat/internal/memory"
	"github.com/adityakx/sehat/internal/observability"
	"github.com/adityakx/sehat/internal/strategy"
)

// Translator converts between the user's language and English. Both
// directions degrade to passthrough instead of failing.
type Translator interface {
	ToEnglish(ctx context.Context, text string) (lang, english string)
	FromEnglish(ctx context.Context, text, lang string) string
}

// Sender delivers a reply to a recipient, reporting how many chunks went
// out. An error means delivery was abandoned partway.
type Sender interface {
	SendText(ctx context.Context, to, text string) (int, error)
}

// Orchestrator runs the full message pipeline for one user message at a
// time. It is safe for concurrent use by the dispatcher's workers.
type Orchestrator struct {
	translator   Translator
	classifier   *strategy.Classifier
	reasoner     llm.Reasoner
	searcher     llm.Searcher
	summarizer   llm.Summarizer
	store        memory.Store
	sender       Sender
	metrics      *observability.Metrics
	logger       *slog.Logger
	historyLimit int
}

type Options struct {
	Translator   Translator
	Classifier   *strategy.Classifier
	Reasoner     llm.Reasoner
	Searcher     llm.Searcher
	Summarizer   llm.Summarizer
	Store        memory.Store
	Sender       Sender
	Metrics      *observability.Metrics
	Logger       *slog.Logger
	HistoryLimit int
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 30
	}
	return &Orchestrator{
		translator:   opts.Translator,
		classifier:   opts.Classifier,
		reasoner:     opts.Reasoner,
		searcher:     opts.Searcher,
		summarizer:   opts.Summarizer,
		store:        opts.Store,
		sender:       opts.Sender,
		metrics:      opts.Metrics,
		logger:       opts.Logger.With("component", "relay"),
		historyLimit: opts.HistoryLimit,
	}
}

// Handle processes one inbound message end to end. The returned error
// reports delivery failure only; upstream degradation (search down,
// summarizer down, reasoner down) is absorbed into the reply itself.
func (o *Orchestrator) Handle(ctx context.Context, userID, text string) error {
	started := time.Now()

	lang, english := o.translator.ToEnglish(ctx, text)
	strat := o.classifier.Classify(english)
	o.metrics.MessagesInbound.WithLabelValues(string(strat)).Inc()

	log := o.logger.With("user", userID, "strategy", string(strat), "lang", lang)

	var reply string
	if strat == strategy.Emergency {
		reply = emergencyScript
	} else {
		reply = o.compose(ctx, log, strat, userID, english) + disclaimerFooter
	}

	localized := o.translator.FromEnglish(ctx, reply, lang)

	chunks, err := o.sender.SendText(ctx, userID, localized)
	if err != nil {
		o.metrics.DeliveryFailures.Inc()
		log.Error("reply delivery failed", "error", err)
		return err
	}
	o.metrics.RepliesDelivered.Inc()
	o.metrics.DeliveryChunks.Observe(float64(chunks))

	if err := o.store.AppendTurn(ctx, memory.Turn{
		UserID:   userID,
		Message:  text,
		Response: localized,
		Language: lang,
		Strategy: string(strat),
	}); err != nil {
		o.metrics.PersistenceErrors.Inc()
		log.Warn("turn not persisted", "error", err)
	} else {
		o.metrics.TurnsPersisted.Inc()
	}

	o.metrics.ObserveTurnLatency(time.Since(started))
	log.Info("reply delivered", "chunks", chunks, "elapsed", time.Since(started))
	return nil
}

// compose produces the English answer body for non-emergency strategies.
func (o *Orchestrator) compose(ctx context.Context, log *slog.Logger, strat strategy.Strategy, userID, english string) string {
	history := o.history(ctx, log, userID)

	prompt := english
	if strat == strategy.SearchAndReason {
		result, err := o.searcher.Search(ctx, english)
		if err != nil {
			o.metrics.ProviderErrors.WithLabelValues("search", "unavailable").Inc()
			log.Warn("search unavailable, answering directly", "error", err)
		} else {
			prompt = searchPrompt(english, result)
		}
	}

	answer, err := o.reasoner.Answer(ctx, prompt, history)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues("reason", "error").Inc()
		log.Error("reasoning failed, sending apology", "error", err)
		return apologyReply
	}

	summary, err := o.summarizer.Summarize(ctx, answer)
	if err != nil {
		o.metrics.ProviderErrors.WithLabelValues("summarize", "unavailable").Inc()
		log.Warn("summarizer unavailable, keeping full answer", "error", err)
		return answer
	}
	return summary
}

func (o *Orchestrator) history(ctx context.Context, log *slog.Logger, userID string) []llm.Exchange {
	turns, err := o.store.Recent(ctx, userID, o.historyLimit)
	if err != nil {
		o.metrics.PersistenceErrors.Inc()
		log.Warn("history unavailable, continuing without it", "error", err)
		return nil
	}
	return exchanges(turns)
}
