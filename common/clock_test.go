package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewManualClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(16 * time.Millisecond)
	assert.Equal(t, start.Add(16*time.Millisecond), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestHourClock(t *testing.T) {
	base := NewManualClock(time.Date(2024, 1, 1, 9, 45, 0, 0, time.UTC))
	c := NewHourClock(base, 20)
	assert.Equal(t, time.Date(2024, 1, 1, 20, 45, 0, 0, time.UTC), c.Now())

	base.Advance(time.Minute)
	assert.Equal(t, 46, c.Now().Minute())
	assert.Equal(t, 20, c.Now().Hour())

	assert.Equal(t, 23, NewHourClock(base, -1).Now().Hour())
}
