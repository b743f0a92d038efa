// Command broadcast sends a one-shot announcement message, typically used
// after a deploy to confirm the channel works end to end.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/adityakx/sehat/internal/config"
	"github.com/adityakx/sehat/internal/whatsapp"
)

const defaultAnnouncement = "Hello! The Health AI Chatbot is now online and ready to assist you. 🤖"

func main() {
	_ = godotenv.Load()

	to := flag.String("to", "", "recipient phone number (defaults to BROADCAST_RECIPIENT)")
	message := flag.String("message", defaultAnnouncement, "text to send")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	recipient := *to
	if recipient == "" {
		recipient = cfg.BroadcastRecipient
	}
	if recipient == "" {
		logger.Error("no recipient: pass -to or set BROADCAST_RECIPIENT")
		os.Exit(1)
	}

	client := whatsapp.NewClient(whatsapp.Config{
		Token:           cfg.WhatsAppToken,
		PhoneNumberID:   cfg.WhatsAppPhoneNumberID,
		BaseURL:         cfg.WhatsAppAPIBaseURL,
		MaxMessageChars: cfg.MaxMessageChars,
		ChunkDelay:      cfg.ChunkDelay,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	chunks, err := client.SendText(ctx, recipient, *message)
	if err != nil {
		logger.Error("broadcast failed", "error", err)
		os.Exit(1)
	}
	logger.Info("broadcast delivered", "to", recipient, "chunks", chunks)
}
