// Package strategy classifies inbound messages into a response strategy.
//
// Classification is case-insensitive substring matching against an ordered
// rule list. The order is the precedence: the first rule whose keyword set
// matches wins, so emergency keywords always short-circuit everything else
// no matter what other keywords appear in the same message.
package strategy

import (
	"strings"
)

// Strategy selects which pipeline branch answers a message.
type Strategy string

const (
	// Emergency replies use a fixed safety script with no AI calls.
	Emergency Strategy = "emergency"
	// SearchAndReason retrieves current information before reasoning.
	SearchAndReason Strategy = "search_and_reason"
	// ReasonOnly goes straight to the reasoning engine.
	ReasonOnly Strategy = "reason_only"
)

// Rule binds a keyword set to the strategy it selects.
type Rule struct {
	Strategy Strategy `yaml:"strategy"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules returns the built-in rule list, highest precedence first.
func DefaultRules() []Rule {
	return []Rule{
		{
			Strategy: Emergency,
			Keywords: []string{"emergency", "chest pain", "heart attack", "stroke"},
		},
		{
			Strategy: SearchAndReason,
			Keywords: []string{"latest", "recent", "new treatment"},
		},
	}
}

// Classifier evaluates rules in order against lowercased message text.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier from an ordered rule list. Keywords are
// lowercased once at construction. A nil or empty rule list means every
// message classifies as ReasonOnly.
func NewClassifier(rules []Rule) *Classifier {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		nr := Rule{Strategy: r.Strategy, Keywords: make([]string, 0, len(r.Keywords))}
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			nr.Keywords = append(nr.Keywords, kw)
		}
		if len(nr.Keywords) > 0 {
			normalized = append(normalized, nr)
		}
	}
	return &Classifier{rules: normalized}
}

// Classify returns the strategy for a message. Always returns a value;
// unmatched messages fall through to ReasonOnly.
func (c *Classifier) Classify(text string) Strategy {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Strategy
			}
		}
	}
	return ReasonOnly
}
