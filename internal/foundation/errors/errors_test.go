package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "exportcfg.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "exportcfg.yaml" {
			t.Errorf("expected context file=exportcfg.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if err.Severity() != SeverityFatal {
			t.Error("expected error to have fatal severity")
		}
		if err.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := InvalidOption("adapter.fallback", "").Build()
		wrapped := fmt.Errorf("resolve: %w", inner)

		if !IsClassified(wrapped) {
			t.Fatal("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryInvalidOption) {
			t.Errorf("expected category %s", CategoryInvalidOption)
		}
	})
}

func TestSentinelMatching(t *testing.T) {
	invalid := InvalidOption("adapter.fallback", "").WithContext("reason", "must not be empty").Build()
	unknown := UnknownCapability("adapter", "vercel").Build()

	if !errors.Is(invalid, ErrInvalidOption) {
		t.Error("expected invalid option error to match ErrInvalidOption")
	}
	if errors.Is(invalid, ErrUnknownCapability) {
		t.Error("invalid option error must not match ErrUnknownCapability")
	}
	if !IsUnknownCapability(fmt.Errorf("load: %w", unknown)) {
		t.Error("expected wrapped unknown capability error to match")
	}
	if IsInvalidOption(errors.New("plain")) {
		t.Error("plain error must not match ErrInvalidOption")
	}
	if len(ErrInvalidOption.Context()) != 0 {
		t.Error("sentinel context must stay empty")
	}
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("original error")
	err := WrapError(originalErr, CategoryFileSystem, "read failed").
		WithSeverity(SeverityWarning).
		WithContext("path", "/tmp/out").
		Build()

	if err.Severity() != SeverityWarning {
		t.Errorf("expected warning severity, got %s", err.Severity())
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected cause to be reachable through errors.Is")
	}
	if err.Cause() != originalErr {
		t.Error("expected cause to be preserved")
	}

	derived := err.WithContext("attempt", 2)
	if _, ok := err.Context().Get("attempt"); ok {
		t.Error("WithContext must not mutate the original error")
	}
	if v, ok := derived.Context().Get("attempt"); !ok || v != 2 {
		t.Errorf("expected derived context attempt=2, got %v", v)
	}
}

func TestErrorStringIncludesField(t *testing.T) {
	err := InvalidOption("prerender.crawl", "yes").Build()
	want := "[invalid_option:fatal] invalid option value (field prerender.crawl)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
