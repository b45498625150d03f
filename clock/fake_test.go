package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/deltegui/bankconsole/clock"
)

func TestFakeFiresTimersInDeadlineOrder(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := clock.NewFake(start)
	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "second") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "first") })
	stopped := c.AfterFunc(time.Second, func() { fired = append(fired, "stopped") })
	assert.True(t, stopped.Stop())

	c.Advance(500 * time.Millisecond)
	assert.Empty(t, fired)

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"first", "second"}, fired)
	assert.Equal(t, start.Add(2500*time.Millisecond), c.Now())
	assert.Zero(t, c.Pending())
}

func TestFakeTickerDropsMissedTicks(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	ticker := c.Tick(time.Second)
	c.Advance(3 * time.Second)
	select {
	case <-ticker.C():
	default:
		t.Fatal("expected a tick")
	}
	select {
	case <-ticker.C():
		t.Fatal("ticker channel must hold a single tick")
	default:
	}
	ticker.Stop()
	assert.Zero(t, c.Pending())
}
