package worker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"billkeep/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Format: "text", Component: "test"})
}

func TestNewReminderRejectsBadSpec(t *testing.T) {
	if _, err := NewReminder("every morning", nil, testLogger()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestNewReminderAcceptsStandardSpec(t *testing.T) {
	r, err := NewReminder("0 9 * * *", nil, testLogger())
	if err != nil {
		t.Fatalf("new reminder: %v", err)
	}
	if r == nil {
		t.Fatal("nil reminder")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	r, err := NewReminder("0 9 * * *", nil, testLogger())
	if err != nil {
		t.Fatalf("new reminder: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
