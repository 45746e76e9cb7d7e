package views

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampDebounce(t *testing.T) {
	assert.Equal(t, DefaultDebounce, ClampDebounce(0))
	assert.Equal(t, MinDebounce, ClampDebounce(10*time.Millisecond))
	assert.Equal(t, MaxDebounce, ClampDebounce(2*time.Second))
	assert.Equal(t, 350*time.Millisecond, ClampDebounce(350*time.Millisecond))
}

func TestDebouncerRunsOnlyLastTrigger(t *testing.T) {
	d := NewDebouncer(MinDebounce)
	var runs int32
	var last int32

	for i := int32(1); i <= 5; i++ {
		i := i
		d.Trigger(func() {
			atomic.AddInt32(&runs, 1)
			atomic.StoreInt32(&last, i)
		})
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(MinDebounce + 100*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
	assert.Equal(t, int32(5), atomic.LoadInt32(&last))
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(0)
	assert.False(t, d.Stop())

	var ran int32
	d.Trigger(func() { atomic.StoreInt32(&ran, 1) })
	assert.True(t, d.Stop())

	time.Sleep(DefaultDebounce + 100*time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}
