// Package shutdownqueue holds a process-wide LIFO queue of cleanup tasks.
//
// Components register their teardown with Add as they start; main drains
// the queue once at exit:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	defer shutdownqueue.Shutdown(ctx)
//
// Tasks run once, newest first. A panicking task is recovered and reported.
// Shutdown is idempotent; task errors are aggregated with errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it cannot finish in time.
type Task func(ctx context.Context) error

var global = &queue{}

type queue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
}

// Add registers a task to run on Shutdown. Safe from any goroutine.
// Nil tasks and tasks added after shutdown has started are ignored.
func Add(t Task) {
	if t == nil {
		return
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.closed {
		return
	}

	global.tasks = append(global.tasks, t)
}

// Shutdown runs all registered tasks in LIFO order and returns their
// errors joined. If ctx expires mid-drain the remaining tasks are skipped
// and the context error is included. Subsequent calls are no-ops.
func Shutdown(ctx context.Context) error {
	global.mu.Lock()

	if global.closed && len(global.tasks) == 0 {
		global.mu.Unlock()

		return nil
	}

	global.closed = true
	tasks := global.tasks
	global.tasks = nil

	global.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := runOne(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runOne(ctx context.Context, t Task) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}
