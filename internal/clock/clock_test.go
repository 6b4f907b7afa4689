// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package clock

import (
	"testing"
	"time"
)

func TestMockClockSleepAdvances(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	c.Sleep(5 * time.Millisecond)
	if got := c.Now(); !got.Equal(start.Add(5 * time.Millisecond)) {
		t.Fatalf("expected clock to advance, got %v", got)
	}
	if got := c.Sleeps(); len(got) != 1 || got[0] != 5*time.Millisecond {
		t.Fatalf("unexpected recorded sleeps: %v", got)
	}
}

func TestMockClockAdvanceIndependentOfSleep(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	c.Advance(time.Second)
	if got := c.Now(); !got.Equal(start.Add(time.Second)) {
		t.Fatalf("expected advance to move clock, got %v", got)
	}
	if len(c.Sleeps()) != 0 {
		t.Fatal("Advance must not record a sleep")
	}
}

func TestRealClockSleepZero(t *testing.T) {
	c := NewReal()
	before := c.Now()
	c.Sleep(0)
	if c.Now().Before(before) {
		t.Fatal("clock moved backwards")
	}
}
