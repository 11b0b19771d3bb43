package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-init must be safe.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	logger := Get()
	logger.Info(ctx, "test message",
		String("k", "v"),
		Int("n", 1),
		Float64("f", 1.5),
		Bool("b", true),
		Any("a", struct{}{}),
		Error(nil),
	)
	logger.Debug(ctx, "debug message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}
	namedLogger.Info(context.Background(), "test message")
}

func TestFieldConstructors(t *testing.T) {
	cases := []struct {
		field Field
		key   string
		value interface{}
	}{
		{String("s", "v"), "s", "v"},
		{Int("i", 7), "i", 7},
		{Float64("f", 2.5), "f", 2.5},
		{Bool("b", false), "b", false},
		{Any("a", "anything"), "a", "anything"},
	}
	for _, c := range cases {
		if c.field.Key != c.key {
			t.Errorf("field key = %q, want %q", c.field.Key, c.key)
		}
		if c.field.Value != c.value {
			t.Errorf("field value = %v, want %v", c.field.Value, c.value)
		}
	}
	if e := Error(nil); e.Key != "error" {
		t.Errorf("error field key = %q, want error", e.Key)
	}
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	valid := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"Error":   slog.LevelError,
	}
	for in, want := range valid {
		if err := SetLevelString(in); err != nil {
			t.Errorf("SetLevelString(%q) returned error: %v", in, err)
		}
		if got := levelVar.Level(); got != want {
			t.Errorf("SetLevelString(%q) set level %v, want %v", in, got, want)
		}
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("SetLevelString(verbose) should have failed")
	}
}
