package debounce_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/deltegui/bankconsole/clock"
	"github.com/deltegui/bankconsole/debounce"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBurstRunsOnlyLastCall(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	d := debounce.New(c, debounce.DefaultWindow)

	var got []int
	for i := 1; i <= 3; i++ {
		value := i
		d.Trigger("filters", func() { got = append(got, value) })
		c.Advance(200 * time.Millisecond)
	}
	assert.Empty(t, got, "window restarts on every trigger")

	c.Advance(300 * time.Millisecond)
	assert.Equal(t, []int{3}, got)
	assert.Zero(t, d.Pending())
}

func TestKeysAreIndependent(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	d := debounce.New(c, time.Second)
	var a, b int32
	d.Trigger("a", func() { atomic.AddInt32(&a, 1) })
	c.Advance(600 * time.Millisecond)
	d.Trigger("b", func() { atomic.AddInt32(&b, 1) })
	c.Advance(400 * time.Millisecond)
	assert.EqualValues(t, 1, a)
	assert.EqualValues(t, 0, b)
	c.Advance(600 * time.Millisecond)
	assert.EqualValues(t, 1, b)
}

func TestFlushAndStop(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	d := debounce.New(c, time.Second)
	calls := 0
	d.Trigger("x", func() { calls++ })
	d.Flush()
	assert.Equal(t, 1, calls)

	d.Trigger("y", func() { calls++ })
	d.Stop()
	c.Advance(time.Minute)
	d.Trigger("z", func() { calls++ })
	assert.Equal(t, 1, calls)
	assert.Zero(t, d.Pending())
}

func TestZeroWindowRunsImmediately(t *testing.T) {
	d := debounce.New(clock.NewFake(time.Unix(0, 0)), 0)
	ran := false
	d.Trigger("k", func() { ran = true })
	assert.True(t, ran)
}

func TestRealClock(t *testing.T) {
	d := debounce.New(nil, 10*time.Millisecond)
	done := make(chan struct{})
	d.Trigger("k", func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call did not run")
	}
}
