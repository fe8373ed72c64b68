// Package utils holds small concurrency helpers shared by the application.
package utils //nolint:revive // var-naming: utils is an acceptable package name for shared utilities

import (
	"context"
	"sync"
)

// MergeErrorChans fans in channels. The result is closed once every input is closed.
func MergeErrorChans(channels ...<-chan error) <-chan error {
	out := make(chan error)
	var wg sync.WaitGroup

	for _, ch := range channels {
		wg.Add(1)
		go func(c <-chan error) {
			defer wg.Done()
			for err := range c {
				out <- err
			}
		}(ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Go runs fn in a goroutine and returns a channel that yields its error,
// if any, and is then closed.
func Go(ctx context.Context, fn func(context.Context) error) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		if err := fn(ctx); err != nil {
			errc <- err
		}
	}()
	return errc
}
