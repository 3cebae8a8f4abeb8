package resilience

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/iockit/errors"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	callCount := 0
	result, err := Retry(context.Background(), DefaultRetryConfig(), func() (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestRetry_FactoryFailureRetried(t *testing.T) {
	callCount := 0
	result, err := Retry(context.Background(), fastConfig(3), func() (string, error) {
		callCount++
		if callCount < 3 {
			return "", errors.FactoryFailed("db", fmt.Errorf("connection refused"))
		}
		return "connected", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "connected" {
		t.Errorf("expected 'connected', got %s", result)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestRetry_ExceedsMaxAttempts(t *testing.T) {
	callCount := 0
	var retries []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		retries = append(retries, attempt)
	}

	err := RetryFunc(context.Background(), cfg, func() error {
		callCount++
		return errors.FactoryFailed("db", fmt.Errorf("timeout"))
	})

	if !errors.HasCode(err, errors.ErrCodeFactoryFailed) {
		t.Errorf("expected last factory failure, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
	if len(retries) != 2 {
		t.Errorf("expected OnRetry before attempts 2 and 3, got %v", retries)
	}
}

func TestRetry_PermanentErrorsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unknown dependency", errors.UnknownDependency("cache", "")},
		{"cycle", errors.CyclicDependency([]string{"a", "b", "a"})},
		{"ambiguous", errors.AmbiguousBinding("role", "discountPolicy", []string{"a", "b"})},
		{"plain error", fmt.Errorf("boom")},
		{"canceled", context.Canceled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			callCount := 0
			err := RetryFunc(context.Background(), fastConfig(5), func() error {
				callCount++
				return tc.err
			})
			if err != tc.err {
				t.Errorf("expected the original error, got %v", err)
			}
			if callCount != 1 {
				t.Errorf("expected 1 call, got %d", callCount)
			}
		})
	}
}

func TestRetry_CustomRetryIf(t *testing.T) {
	cfg := fastConfig(4)
	cfg.RetryIf = func(error) bool { return true }
	callCount := 0
	_ = RetryFunc(context.Background(), cfg, func() error {
		callCount++
		return fmt.Errorf("always")
	})
	if callCount != 4 {
		t.Errorf("expected 4 calls, got %d", callCount)
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 10, InitialBackoff: time.Second}
	callCount := 0

	done := make(chan error, 1)
	go func() {
		done <- RetryFunc(ctx, cfg, func() error {
			callCount++
			return errors.FactoryFailed("db", fmt.Errorf("down"))
		})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not stop on cancellation")
	}
	if callCount != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", callCount)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{5, time.Second},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("attempt %d", tc.attempt), func(t *testing.T) {
			if got := calculateBackoff(tc.attempt, cfg); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}

	cfg.Jitter = 0.5
	for range 20 {
		got := calculateBackoff(1, cfg)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("jittered backoff %v out of range", got)
		}
	}
}
