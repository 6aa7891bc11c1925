package terrain

import (
	"math/rand"
	"time"
)

// intervalTimer accumulates elapsed time and fires once per interval.
type intervalTimer struct {
	interval time.Duration
	current  time.Duration
}

func (t *intervalTimer) update(d time.Duration) { t.current += d }

func (t *intervalTimer) passed() bool { return t.current >= t.interval }

func (t *intervalTimer) reset() {
	if t.current >= t.interval {
		t.current %= t.interval
	}
}

// newSweepTimer builds the eviction timer with a randomized initial phase so
// that many caches created together do not sweep in the same tick.
func newSweepTimer(interval time.Duration) intervalTimer {
	third := interval / 3
	return intervalTimer{
		interval: interval,
		current:  third + time.Duration(rand.Int63n(int64(third)+1)),
	}
}
