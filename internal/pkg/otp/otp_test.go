package otp

import (
	"errors"
	"regexp"
	"testing"
)

func TestNumeric_Generate(t *testing.T) {
	g := NewNumeric()

	for _, length := range []int{1, 6, 7, 8, 9} {
		re := regexp.MustCompile(`^[0-9]+$`)
		for range 200 {
			code, err := g.Generate(length)
			if err != nil {
				t.Fatalf("Generate(%d) error = %v", length, err)
			}
			if len(code) != length || !re.MatchString(code) {
				t.Fatalf("Generate(%d) = %q", length, code)
			}
		}
	}
}

func TestNumeric_Generate_InvalidLength(t *testing.T) {
	for _, length := range []int{-1, 0, 10} {
		if _, err := NewNumeric().Generate(length); !errors.Is(err, ErrInvalidLength) {
			t.Fatalf("Generate(%d) error = %v, want ErrInvalidLength", length, err)
		}
	}
}

func TestNumeric_Generate_DigitSpread(t *testing.T) {
	g := NewNumeric()
	var counts [10]int

	for range 2000 {
		code, _ := g.Generate(6)
		for _, r := range code {
			counts[r-'0']++
		}
	}

	// 12000 digits, expected 1200 per bucket.
	for d, c := range counts {
		if c < 900 || c > 1500 {
			t.Fatalf("digit %d appeared %d times, distribution looks skewed: %v", d, c, counts)
		}
	}
}
