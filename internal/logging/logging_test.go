package logging

import (
	"context"
	"testing"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := RunIDFromContext(ctx); got != "" {
		t.Errorf("empty context yields run id %q", got)
	}

	ctx = ContextWithRunID(ctx, "run-123")
	if got := RunIDFromContext(ctx); got != "run-123" {
		t.Errorf("RunIDFromContext = %q, want run-123", got)
	}
}

func TestWithRunLoggerNilBase(t *testing.T) {
	ctx, log := WithRunLogger(context.Background(), nil, "run-456")
	if log == nil {
		t.Fatal("WithRunLogger returned nil logger")
	}
	if got := RunIDFromContext(ctx); got != "run-456" {
		t.Errorf("run id = %q, want run-456", got)
	}
	// The noop fallback must be safe to use.
	log.Info(ctx, "message", String("key", "value"))
}

func TestNoopLoggerIsSilentAndChainable(t *testing.T) {
	log := Noop().With(String("component", "test"))
	log.Debug(context.Background(), "dropped")
	log.Error(context.Background(), "dropped", Int("n", 1), Float64("f", 2.5), Any("v", struct{}{}))
}
