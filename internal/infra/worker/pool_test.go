package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	logger := zerolog.Nop()
	p := NewPool(2, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	var ran int32
	done := make(chan struct{})
	err := p.Submit(func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	if atomic.LoadInt32(&ran) != 1 {
		t.Errorf("ran = %d", ran)
	}
}

func TestPoolRejectsWhenSaturated(t *testing.T) {
	logger := zerolog.Nop()
	p := NewPool(1, &logger) // queue capacity 4, never started

	blocker := func(ctx context.Context) error { return nil }
	for i := 0; i < 4; i++ {
		if err := p.Submit(blocker); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}
	if err := p.Submit(blocker); err == nil {
		t.Error("expected rejection when the queue is full")
	}
}

func TestPoolRejectsNilTask(t *testing.T) {
	logger := zerolog.Nop()
	p := NewPool(1, &logger)
	if err := p.Submit(nil); err == nil {
		t.Error("expected error for nil task")
	}
}
