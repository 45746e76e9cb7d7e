package resource

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Loader fetches into some resource and reports the outcome
type Loader func(ctx context.Context) error

// Bind makes a Loader that loads r with fetch
func Bind[T any](r *Resource[T], fetch func(context.Context) (T, error)) Loader {
	return func(ctx context.Context) error {
		return r.Load(ctx, fetch)
	}
}

// LoadAll runs every loader concurrently and waits for all of them. A
// failing loader does not cancel its siblings; each resource records its
// own outcome. The first error is returned.
func LoadAll(ctx context.Context, loaders ...Loader) error {
	var g errgroup.Group
	for _, load := range loaders {
		load := load
		g.Go(func() error {
			return load(ctx)
		})
	}
	return g.Wait()
}

// LoadSequence runs loaders one after another and stops at the first
// failure
func LoadSequence(ctx context.Context, loaders ...Loader) error {
	for _, load := range loaders {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Patch returns a copy of items with patch applied to every element that
// matches
func Patch[T any](items []T, match func(T) bool, patch func(T) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		if match(item) {
			item = patch(item)
		}
		out[i] = item
	}
	return out
}

// Remove returns a copy of items without the elements that match
func Remove[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Append returns a copy of items with extra added at the end
func Append[T any](items []T, extra ...T) []T {
	out := make([]T, 0, len(items)+len(extra))
	out = append(out, items...)
	return append(out, extra...)
}
