package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunner_RestartsOnFailure(t *testing.T) {
	var calls int32
	boom := errors.New("boom")

	task := func(ctx context.Context) error {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			return boom
		}
		<-ctx.Done()
		return ctx.Err()
	}

	r := NewRunner(Config{Name: "t", RestartDelay: 5 * time.Millisecond, MaxRestartAttempts: 10})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, task) }()

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&calls) < 3 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for 3 attempts")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Run() to return")
	}

	if r.RestartCount() < 2 {
		t.Errorf("RestartCount() = %d, want >= 2", r.RestartCount())
	}
}

func TestRunner_ExhaustsMaxAttempts(t *testing.T) {
	boom := errors.New("boom")
	task := func(ctx context.Context) error { return boom }

	r := NewRunner(Config{Name: "t", RestartDelay: time.Millisecond, MaxRestartAttempts: 2})

	err := r.Run(context.Background(), task)
	if !errors.Is(err, ErrRestartsExhausted) {
		t.Fatalf("Run() = %v, want ErrRestartsExhausted", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("Run() = %v, want it to wrap the last task error", err)
	}
}

func TestRunner_NilErrorStopsWithoutRestart(t *testing.T) {
	var calls int32
	task := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	r := NewRunner(Config{Name: "t", RestartDelay: time.Millisecond, MaxRestartAttempts: 5})

	err := r.Run(context.Background(), task)
	if err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("task invoked %d times, want exactly 1 (no restart on clean stop)", n)
	}
	if r.Status() != StatusStopped {
		t.Fatalf("Status() = %v, want StatusStopped", r.Status())
	}
}

func TestRunner_RestartCancelsCurrentAttempt(t *testing.T) {
	var calls int32
	task := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		<-ctx.Done()
		return ctx.Err()
	}

	r := NewRunner(Config{Name: "t", RestartDelay: 5 * time.Millisecond, MaxRestartAttempts: 10})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, task) }()

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&calls) < 1 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for first attempt to start")
		case <-time.After(time.Millisecond):
		}
	}

	r.Restart()

	deadline = time.After(time.Second)
	for atomic.LoadInt32(&calls) < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for Restart() to trigger a relaunch")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	<-done
}
