package whatsapp

import (
	"encoding/json"
	"fmt"
)

// Inbound is one user text message extracted from a webhook delivery.
type Inbound struct {
	From string
	Text string
}

// webhookEvent mirrors the Cloud API webhook envelope down to the fields
// the relay cares about.
type webhookEvent struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseWebhook extracts text messages from a webhook payload. Non-text
// messages and status-only deliveries are skipped, not errors; only
// malformed JSON fails.
func ParseWebhook(body []byte) ([]Inbound, error) {
	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}

	var inbound []Inbound
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text.Body == "" {
					continue
				}
				inbound = append(inbound, Inbound{From: msg.From, Text: msg.Text.Body})
			}
		}
	}
	return inbound, nil
}
