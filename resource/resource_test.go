package resource

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestLoadTransitions(t *testing.T) {
	var r Resource[[]string]
	assert.Equal(t, Idle, r.State())

	seen := make(chan State, 1)
	err := r.Load(context.Background(), func(ctx context.Context) ([]string, error) {
		seen <- r.State()
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, Loading, <-seen)
	assert.Equal(t, Ready, r.State())
	assert.Equal(t, []string{"a", "b"}, r.Value())
	assert.False(t, r.LoadedAt().IsZero())
}

func TestLoadFailureKeepsValue(t *testing.T) {
	r := Of([]int{1, 2})

	err := r.Load(context.Background(), func(ctx context.Context) ([]int, error) {
		return nil, errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, Failed, r.State(), "loading flag clears on failure")
	assert.Equal(t, []int{1, 2}, r.Value())
	assert.ErrorIs(t, r.Err(), errBoom)

	require.NoError(t, r.Load(context.Background(), func(ctx context.Context) ([]int, error) {
		return []int{3}, nil
	}))
	assert.NoError(t, r.Err())
}

func TestMutateAppliesAfterAck(t *testing.T) {
	r := Of([]int{1, 2, 3})
	var calls int32

	err := r.Mutate(context.Background(),
		func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			assert.Equal(t, []int{1, 2, 3}, r.Value(), "nothing applied before the call returns")
			return nil
		},
		func(v []int) []int { return Remove(v, func(n int) bool { return n == 2 }) },
	)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls)
	assert.Equal(t, []int{1, 3}, r.Value())
}

// A failed mutation leaves the resource exactly as it was
func TestMutateFailureLeavesStateUnchanged(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("failed mutation is a no-op", prop.ForAll(
		func(items []int, target int, replacement int) bool {
			r := Of(items)
			before := append([]int{}, r.Value()...)
			stateBefore := r.State()

			err := r.Mutate(context.Background(),
				func(ctx context.Context) error { return errBoom },
				func(v []int) []int {
					return Patch(v, func(n int) bool { return n == target }, func(int) int { return replacement })
				},
			)

			return errors.Is(err, errBoom) &&
				reflect.DeepEqual(before, append([]int{}, r.Value()...)) &&
				r.State() == stateBefore
		},
		gen.SliceOf(gen.IntRange(0, 20)),
		gen.IntRange(0, 20),
		gen.Int(),
	))

	properties.Property("successful patch touches only matching rows", prop.ForAll(
		func(items []int, target int) bool {
			r := Of(items)
			err := r.Mutate(context.Background(),
				func(ctx context.Context) error { return nil },
				func(v []int) []int {
					return Patch(v, func(n int) bool { return n == target }, func(n int) int { return -1 })
				},
			)
			if err != nil {
				return false
			}
			got := r.Value()
			if len(got) != len(items) {
				return false
			}
			for i := range items {
				if items[i] == target && got[i] != -1 {
					return false
				}
				if items[i] != target && got[i] != items[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

func TestLoadAllRunsConcurrently(t *testing.T) {
	var a Resource[string]
	var b Resource[int]
	var c Resource[bool]

	start := make(chan struct{})
	var ready int32
	wait := func() {
		if atomic.AddInt32(&ready, 1) == 2 {
			close(start)
		}
		select {
		case <-start:
		case <-time.After(2 * time.Second):
		}
	}

	err := LoadAll(context.Background(),
		Bind(&a, func(ctx context.Context) (string, error) { wait(); return "x", nil }),
		Bind(&b, func(ctx context.Context) (int, error) { wait(); return 7, nil }),
		Bind(&c, func(ctx context.Context) (bool, error) { return false, errBoom }),
	)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, "x", a.Value())
	assert.Equal(t, 7, b.Value())
	assert.True(t, c.Failed(), "a failing loader does not stop its siblings")
	assert.True(t, a.Ready())
}

func TestLoadSequenceStopsAtFirstFailure(t *testing.T) {
	var order []string
	step := func(name string, err error) Loader {
		return func(ctx context.Context) error {
			order = append(order, name)
			return err
		}
	}

	err := LoadSequence(context.Background(), step("one", nil), step("two", errBoom), step("three", nil))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"one", "two"}, order)
}

func TestLoadSequenceHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := LoadSequence(ctx, func(ctx context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSliceHelpersDoNotAlias(t *testing.T) {
	in := []int{1, 2, 3}
	patched := Patch(in, func(n int) bool { return n == 2 }, func(int) int { return 20 })
	removed := Remove(in, func(n int) bool { return n == 1 })
	appended := Append(in, 4)

	assert.Equal(t, []int{1, 2, 3}, in)
	assert.Equal(t, []int{1, 20, 3}, patched)
	assert.Equal(t, []int{2, 3}, removed)
	assert.Equal(t, []int{1, 2, 3, 4}, appended)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "unknown", State(42).String())
}
