package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/pacstage/pkg/observability"
)

func TestSpinnerBasic(t *testing.T) {
	s := newSpinner("Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// Spinner should be stopped, not cancelled
	// (Cancelled returns true only if Stop was called due to context cancellation)
	_ = s.Cancelled() // Verify method is callable; value not asserted as Stop() doesn't set cancelled
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.Start()

	// Cancel the context
	cancel()

	// Give goroutine time to notice cancellation
	time.Sleep(100 * time.Millisecond)

	// Spinner should be cancelled
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Testing with timeout...")
	s.Start()

	// Wait for timeout
	time.Sleep(100 * time.Millisecond)

	// Spinner should be cancelled due to timeout
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.Start()

	// Stop multiple times should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Testing success...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Done!")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Testing error...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Failed!")
}

func TestNewSpinnerWithContextNilParent(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Test")
	s.Start()
	s.Stop()
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinner("first")
	s.Start()
	s.SetMessage("a much longer second message")
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.message != "a much longer second message" {
		t.Errorf("message = %q", s.message)
	}
}

func TestWithResolveSpinner(t *testing.T) {
	var progress *resolveProgress
	want := errors.New("boom")

	err := withResolveSpinner(context.Background(), func() error {
		hooks, ok := observability.Resolve().(*resolveProgress)
		if !ok {
			t.Fatalf("resolve hooks not registered: %T", observability.Resolve())
		}
		progress = hooks
		hooks.OnVisit(context.Background(), "bash", 0)
		hooks.OnVisit(context.Background(), "glibc", 1)
		return want
	})
	if err != want {
		t.Errorf("err = %v, want %v", err, want)
	}
	if got := progress.visited.Load(); got != 2 {
		t.Errorf("visited = %d, want 2", got)
	}
	if progress.spinner.message != "Resolving… 2 packages" {
		t.Errorf("message = %q", progress.spinner.message)
	}
	if _, ok := observability.Resolve().(*resolveProgress); ok {
		t.Error("hooks not reset after the spinner stopped")
	}
}
