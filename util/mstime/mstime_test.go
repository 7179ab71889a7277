package mstime

import (
	"testing"
	"time"
)

func TestReduceToMillisecondPrecision(t *testing.T) {
	original := time.Unix(1600000000, 123456789)
	reduced := ReduceToMillisecondPrecision(original)
	if reduced.Nanosecond() != 123000000 {
		t.Fatalf("TestReduceToMillisecondPrecision: expected 123000000 nanoseconds, got %d",
			reduced.Nanosecond())
	}
	if reduced.Unix() != original.Unix() {
		t.Fatalf("TestReduceToMillisecondPrecision: seconds changed from %d to %d",
			original.Unix(), reduced.Unix())
	}
}

func TestManualClock(t *testing.T) {
	start := time.Unix(1600000000, 0)
	clock := NewManualClock(start)
	if !clock.Now().Equal(start) {
		t.Fatalf("TestManualClock: expected %s, got %s", start, clock.Now())
	}

	clock.Add(10 * time.Second)
	if expected := start.Add(10 * time.Second); !clock.Now().Equal(expected) {
		t.Fatalf("TestManualClock: expected %s after Add, got %s", expected, clock.Now())
	}

	clock.Set(start)
	if !clock.Now().Equal(start) {
		t.Fatalf("TestManualClock: expected %s after Set, got %s", start, clock.Now())
	}
}
