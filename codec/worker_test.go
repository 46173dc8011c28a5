package codec

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPoolRunsJobs(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	var ran atomic.Int32
	ctx := context.Background()

	tasks := make([]*Task, 10)
	for i := range tasks {
		tasks[i] = pool.Submit(ctx, func(context.Context, func(float64)) error {
			ran.Add(1)
			return nil
		}, nil)
	}
	for _, task := range tasks {
		if err := task.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if got := ran.Load(); got != 10 {
		t.Errorf("ran %d jobs, want 10", got)
	}
}

func TestPoolPropagatesError(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	want := errors.New("boom")
	task := pool.Submit(context.Background(), func(context.Context, func(float64)) error {
		return want
	}, nil)

	if err := task.Wait(context.Background()); !errors.Is(err, want) {
		t.Errorf("Wait = %v, want %v", err, want)
	}
}

func TestPoolProgressCallback(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	var last atomic.Uint64
	task := pool.Submit(context.Background(), func(_ context.Context, progress func(float64)) error {
		progress(0.5)
		progress(1.0)
		return nil
	}, func(p float64) {
		last.Store(uint64(p * 100))
	})

	if err := task.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if last.Load() != 100 {
		t.Errorf("last progress = %d, want 100", last.Load())
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	pool := NewPool(1)
	pool.Close()

	task := pool.Submit(context.Background(), func(context.Context, func(float64)) error {
		return nil
	}, nil)
	if err := task.Wait(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Wait = %v, want ErrPoolClosed", err)
	}
}

func TestTaskWaitRespectsContext(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	block := make(chan struct{})
	task := pool.Submit(context.Background(), func(context.Context, func(float64)) error {
		<-block
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := task.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
	close(block)
}
