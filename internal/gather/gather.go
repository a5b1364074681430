// Package gather runs the same fetch or mutation across a set of keys
// concurrently and reports per-key outcomes. Read-side callers keep
// whatever succeeded; write-side callers turn the failures into a
// partial-batch error.
package gather

import (
	"context"
	"sync"
)

// Failure is one key's error.
type Failure struct {
	Key string
	Err error
}

// Gather calls fn once per key and collects results keyed by input.
// All calls run even when some fail; order of failures follows input
// order.
func Gather[T any](ctx context.Context, keys []string, fn func(ctx context.Context, key string) (T, error)) (map[string]T, []Failure) {
	results := make(map[string]T, len(keys))
	errs := make([]error, len(keys))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			v, err := fn(ctx, key)
			if err != nil {
				errs[i] = err
				return
			}
			mu.Lock()
			results[key] = v
			mu.Unlock()
		}(i, key)
	}
	wg.Wait()
	var failures []Failure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, Failure{Key: keys[i], Err: err})
		}
	}
	return results, failures
}

// Run is Gather for calls without a result value.
func Run(ctx context.Context, keys []string, fn func(ctx context.Context, key string) error) []Failure {
	_, failures := Gather(ctx, keys, func(ctx context.Context, key string) (struct{}, error) {
		return struct{}{}, fn(ctx, key)
	})
	return failures
}
