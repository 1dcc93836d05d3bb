// Package settle runs lifecycle callbacks so that a single broken callback
// can never take down the sequence it belongs to.
//
// Run converts panics and overrun deadlines into errors. All is the
// join-all-settled primitive: it starts every callback concurrently and
// returns only when each one has either returned, panicked or timed out.
package settle

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/kbukum/svcapp/errors"
)

// Func is a lifecycle callback.
type Func func(ctx context.Context) error

// Task is a named callback for All.
type Task struct {
	Name string
	Fn   Func
}

// Run invokes fn and reports its outcome as an error. A panic becomes a
// PANIC error. When timeout > 0 and fn has not returned by then, Run gives
// up waiting and returns a TIMEOUT error; fn keeps its canceled context and
// is left to finish on its own.
func Run(ctx context.Context, name string, timeout time.Duration, fn Func) error {
	if fn == nil {
		return apperrors.InvalidArgument(name, "callback is nil")
	}
	if timeout <= 0 {
		return invoke(ctx, name, fn)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- invoke(runCtx, name, fn)
	}()

	select {
	case err := <-done:
		return err
	case <-runCtx.Done():
		// fn may have finished at the same instant; prefer its result.
		select {
		case err := <-done:
			return err
		default:
		}
		if ctx.Err() != nil {
			return apperrors.Internal(ctx.Err()).WithDetail("operation", name)
		}
		return apperrors.Timeout(name, timeout)
	}
}

// All runs every task concurrently through Run and waits for all of them to
// settle. The returned slice holds one entry per task, in task order.
func All(ctx context.Context, timeout time.Duration, tasks []Task) []error {
	results := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			results[i] = Run(ctx, task.Name, timeout, task.Fn)
		}(i, task)
	}
	wg.Wait()
	return results
}

func invoke(ctx context.Context, name string, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Panic(name, r)
		}
	}()
	return fn(ctx)
}
