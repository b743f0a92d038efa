package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":5000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":5000")
	}
	if cfg.HistoryLimit != 30 {
		t.Fatalf("HistoryLimit = %d, want 30", cfg.HistoryLimit)
	}
	if cfg.MaxMessageChars != 4096 {
		t.Fatalf("MaxMessageChars = %d, want 4096", cfg.MaxMessageChars)
	}
	if cfg.ChunkDelay != time.Second {
		t.Fatalf("ChunkDelay = %v, want 1s", cfg.ChunkDelay)
	}
	if !strings.HasPrefix(cfg.DatabaseURL, "sqlite://") {
		t.Fatalf("DatabaseURL = %q, want sqlite default", cfg.DatabaseURL)
	}
}

func TestLoadPortFallback(t *testing.T) {
	t.Setenv("PORT", "8081")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8081" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8081")
	}
}

func TestLoadBindAddrWinsOverPort(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("APP_BIND_ADDR", "127.0.0.1:9000")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:9000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, "127.0.0.1:9000")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad duration", key: "WHATSAPP_CHUNK_DELAY", value: "soon"},
		{name: "bad int", key: "HISTORY_LIMIT", value: "many"},
		{name: "zero history", key: "HISTORY_LIMIT", value: "0"},
		{name: "zero workers", key: "WORKER_COUNT", value: "0"},
		{name: "zero chunk size", key: "WHATSAPP_MAX_MESSAGE_CHARS", value: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
