package repository

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// runBestEffort executes fn on its own goroutine and waits for it. The
// goroutine gets a context that survives cancellation of ctx and is bounded
// by timeout when timeout > 0. A panic in fn is returned as an error.
func runBestEffort(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	mctx := context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		mctx, cancel = context.WithTimeout(mctx, timeout)
		defer cancel()
	}

	var (
		wg  sync.WaitGroup
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("mirror panic: %v", rec)
			}
		}()
		err = fn(mctx)
	}()
	wg.Wait()
	return err
}
