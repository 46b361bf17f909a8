package fn

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FanOut runs functions concurrently and returns results in order.
func FanOut[T any](fns ...func() T) []T {
	out := make([]T, len(fns))
	var wg sync.WaitGroup
	for i, f := range fns {
		wg.Add(1)
		go func(i int, f func() T) {
			defer wg.Done()
			out[i] = f()
		}(i, f)
	}
	wg.Wait()
	return out
}

// Task is a unit of work for Gather.
type Task[T any] func(ctx context.Context) Result[T]

// Gather runs every task concurrently, each under its own deadline when
// timeout > 0, and returns one Result per task in task order. A panic or a
// missed deadline becomes an Err for that slot only; siblings keep running.
// A task that overruns its deadline is abandoned and anything it returns
// later is discarded.
func Gather[T any](ctx context.Context, timeout time.Duration, tasks ...Task[T]) []Result[T] {
	return FanOut(wrapTasks(ctx, timeout, tasks)...)
}

func wrapTasks[T any](ctx context.Context, timeout time.Duration, tasks []Task[T]) []func() Result[T] {
	fns := make([]func() Result[T], len(tasks))
	for i, task := range tasks {
		fns[i] = func() Result[T] { return runTask(ctx, timeout, task) }
	}
	return fns
}

func runTask[T any](ctx context.Context, timeout time.Duration, task Task[T]) Result[T] {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan Result[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- Errf[T]("task panicked: %v", p)
			}
		}()
		done <- task(ctx)
	}()

	select {
	case r := <-done:
		if ctx.Err() != nil {
			return Err[T](fmt.Errorf("task abandoned: %w", ctx.Err()))
		}
		return r
	case <-ctx.Done():
		return Err[T](fmt.Errorf("task abandoned: %w", ctx.Err()))
	}
}
