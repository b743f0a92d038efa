// Package translate provides language detection and translation with
// soft-failure semantics: a translation problem never aborts the message
// pipeline, it degrades to passing the text through unchanged.
package translate

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/adityakx/sehat/internal/observability"
)

// Auto asks the provider to detect the source language.
const Auto = "auto"

// English is the pipeline's working language.
const English = "en"

// Result is a detection + translation outcome.
type Result struct {
	DetectedLanguage string
	Text             string
}

// Provider performs one translation call. Source may be Auto, in which case
// the provider detects the language and reports it in the result.
type Provider interface {
	Translate(ctx context.Context, text, source, target string) (Result, error)
}

// Service wraps a Provider with the relay's degradation policy. Its methods
// never return errors: failures are logged for operators, counted, and the
// caller gets the safe default (English passthrough).
type Service struct {
	provider Provider
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func NewService(provider Provider, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		metrics:  metrics,
		logger:   logger.With("component", "translate"),
	}
}

// ToEnglish detects the language of text and returns its English rendering.
// On any provider failure it returns ("en", text) unchanged so downstream
// reasoning proceeds in English.
func (s *Service) ToEnglish(ctx context.Context, text string) (string, string) {
	if strings.TrimSpace(text) == "" {
		return English, text
	}

	res, err := s.provider.Translate(ctx, text, Auto, English)
	if err != nil {
		s.fail("detect_translate", err)
		return English, text
	}

	lang := NormalizeLang(res.DetectedLanguage)
	if res.Text == "" {
		return lang, text
	}
	return lang, res.Text
}

// FromEnglish renders English text into lang. It is a no-op when lang
// normalizes to English, and returns the English text unchanged on failure
// rather than blocking delivery.
func (s *Service) FromEnglish(ctx context.Context, text, lang string) string {
	if SameLanguage(lang, English) || strings.TrimSpace(text) == "" {
		return text
	}

	res, err := s.provider.Translate(ctx, text, English, NormalizeLang(lang))
	if err != nil {
		s.fail("translate_back", err)
		return text
	}
	if res.Text == "" {
		return text
	}
	return res.Text
}

func (s *Service) fail(code string, err error) {
	s.logger.Warn("translation failed, using passthrough", "code", code, "error", err)
	if s.metrics != nil {
		s.metrics.ProviderErrors.WithLabelValues("translate", code).Inc()
	}
}

// NormalizeLang reduces a language code to its base form ("en-US" -> "en").
// Unparseable or empty codes normalize to English.
func NormalizeLang(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, Auto) {
		return English
	}
	tag, err := language.Parse(code)
	if err != nil {
		return English
	}
	base, _ := tag.Base()
	return base.String()
}

// SameLanguage reports whether two codes share a base language.
func SameLanguage(a, b string) bool {
	return NormalizeLang(a) == NormalizeLang(b)
}
