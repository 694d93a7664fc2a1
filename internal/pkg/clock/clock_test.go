package clock

import (
	"testing"
	"time"
)

func TestTimeClocker_Now(t *testing.T) {
	now := New().Now()

	if now.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %s", now.Location())
	}
	if now.Nanosecond()%int(time.Microsecond) != 0 {
		t.Fatalf("expected microsecond resolution, got %d ns", now.Nanosecond())
	}
	if time.Since(now) > time.Minute {
		t.Fatalf("clock is too far in the past: %s", now)
	}
}
