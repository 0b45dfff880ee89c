package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BeatGlow/badge/share"
)

func TestPublish(t *testing.T) {
	s := share.New()
	now := time.Date(2024, 5, 1, 10, 57, 0, 0, time.UTC)
	p := New(s, func() time.Time { return now }, "")

	assert.True(t, p.Publish())
	assert.Equal(t, "10:57", s.Clock())
	assert.True(t, s.Take(share.ClockChanged))

	now = now.Add(30 * time.Second)
	assert.False(t, p.Publish(), "same minute")
	assert.False(t, s.Pending(share.ClockChanged))

	now = now.Add(30 * time.Second)
	assert.True(t, p.Publish())
	assert.Equal(t, "10:58", s.Clock())
	assert.True(t, s.Take(share.ClockChanged))
}

func TestLongLayoutTruncates(t *testing.T) {
	s := share.New()
	p := New(s, func() time.Time { return time.Date(2024, 5, 1, 10, 57, 3, 0, time.UTC) }, "Monday 2 January 15:04:05")

	assert.True(t, p.Publish())
	assert.Equal(t, "Wednesday 1 May ", s.Clock())
}
