// ABOUTME: Generic page data-fetching state shared by every page handler
// ABOUTME: Result is a tagged union of loading, error and loaded; All joins concurrent fetches

package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type State int

const (
	Loading State = iota
	Failed
	Loaded
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "error"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Result is exactly one of loading, error(reason) or loaded(data).
// The zero value is Loading.
type Result[T any] struct {
	state State
	data  T
	err   error
}

func Ok[T any](data T) Result[T] {
	return Result[T]{state: Loaded, data: data}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{state: Failed, err: err}
}

// Load runs fn and wraps its outcome.
func Load[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	data, err := fn(ctx)
	if err != nil {
		return Fail[T](err)
	}
	return Ok(data)
}

func (r Result[T]) State() State { return r.state }
func (r Result[T]) IsLoading() bool { return r.state == Loading }
func (r Result[T]) IsError() bool { return r.state == Failed }
func (r Result[T]) IsLoaded() bool { return r.state == Loaded }
func (r Result[T]) Err() error { return r.err }
func (r Result[T]) Data() T { return r.data }

// Get returns the data and whether the result is loaded.
func (r Result[T]) Get() (T, bool) {
	return r.data, r.state == Loaded
}

// All runs every fn concurrently. The first failure cancels the rest and is
// returned; no tie-break is made between simultaneous failures.
func All(ctx context.Context, fns ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		g.Go(func() error { return fn(gctx) })
	}
	return g.Wait()
}

// Into adapts a typed fetch so its result lands in dst, for use with All.
func Into[T any](dst *T, fn func(context.Context) (T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
