package hash

import (
	"errors"
	"testing"
)

func TestHMACSHA256(t *testing.T) {
	h, err := NewHMACSHA256("pepper")
	if err != nil {
		t.Fatalf("NewHMACSHA256() error = %v", err)
	}

	d := h.Digest("123456")

	if len(d) != 64 {
		t.Fatalf("digest length = %d, want 64", len(d))
	}
	if d != h.Digest("123456") {
		t.Fatalf("digest is not deterministic")
	}
	if !h.Verify(d, "123456") {
		t.Fatalf("Verify() rejected matching input")
	}
	if h.Verify(d, "654321") {
		t.Fatalf("Verify() accepted different input")
	}

	other, _ := NewHMACSHA256("another")
	if other.Digest("123456") == d {
		t.Fatalf("different keys produced the same digest")
	}
}

func TestNewHMACSHA256_EmptySecret(t *testing.T) {
	if _, err := NewHMACSHA256(""); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("error = %v, want ErrEmptySecret", err)
	}
}
