package terrain

import (
	"testing"
	"time"
)

func TestIntervalTimer(t *testing.T) {
	tm := intervalTimer{interval: 10 * time.Second}

	tm.update(4 * time.Second)
	if tm.passed() {
		t.Fatal("passed before the interval")
	}
	tm.update(6 * time.Second)
	if !tm.passed() {
		t.Fatal("not passed at the interval")
	}

	// Reset keeps the overshoot so long stalls do not skew the cadence.
	tm.update(5 * time.Second)
	tm.reset()
	if tm.current != 5*time.Second {
		t.Fatalf("current after reset = %v, want 5s carryover", tm.current)
	}
}

func TestSweepTimerPhase(t *testing.T) {
	for i := 0; i < 50; i++ {
		tm := newSweepTimer(time.Minute)
		if tm.current < 20*time.Second || tm.current > 40*time.Second {
			t.Fatalf("initial phase %v outside [20s, 40s]", tm.current)
		}
		if tm.interval != time.Minute {
			t.Fatalf("interval = %v, want 1m", tm.interval)
		}
	}
}
