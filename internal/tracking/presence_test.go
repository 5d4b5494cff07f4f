package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPresenceSamples(t *testing.T) {
	var p Presence
	steps := []struct {
		x, y   float64
		inside bool
		want   bool
		kind   EventKind
	}{
		{0, 0, false, false, EventMove},
		{10, 10, true, true, EventMove},
		{10, 10, true, false, EventMove},
		{12, 10, true, true, EventMove},
		{-1, 10, false, true, EventLeave},
		{-2, 10, false, false, EventMove},
		{12, 10, true, true, EventMove},
	}
	for i, s := range steps {
		e, ok := p.Sample(s.x, s.y, s.inside, time.Duration(i)*time.Millisecond)
		assert.Equal(t, s.want, ok, "step %d", i)
		if ok {
			assert.Equal(t, s.kind, e.Kind, "step %d", i)
			assert.Equal(t, time.Duration(i)*time.Millisecond, e.At)
		}
	}
}

func TestPresenceFeedsTracker(t *testing.T) {
	var p Presence
	tr, _ := newTestTracker()

	if e, ok := p.Sample(5, 5, true, time.Millisecond); ok {
		tr.Handle(e)
	}
	assert.True(t, tr.State().Valid)

	if e, ok := p.Sample(0, 0, false, 2*time.Millisecond); ok {
		tr.Handle(e)
	}
	assert.False(t, tr.State().Valid)
}
