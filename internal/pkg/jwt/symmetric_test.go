package jwt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type fixedID struct{}

func (fixedID) Generate() string { return "jti-1" }

var testSecret = []byte(strings.Repeat("k", 64))

func newSymmetric(t *testing.T, clk *fixedClock) *Symmetric {
	t.Helper()
	s, err := NewHS512(Config{
		Secret:    testSecret,
		Issuer:    "gobite-otp",
		Audiences: []string{"otp-api"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      fixedID{},
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	return s
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	clk := &fixedClock{t: time.Now().Truncate(time.Second)}
	s := newSymmetric(t, clk)

	token, err := s.Generate(42, "a@b.test", "admin")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != 42 || claims.Role != "admin" || claims.UserEmail != "a@b.test" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSymmetric_Verify_Expired(t *testing.T) {
	clk := &fixedClock{t: time.Now().Truncate(time.Second)}
	s := newSymmetric(t, clk)
	token, _ := s.Generate(1, "", "user")

	clk.t = clk.t.Add(2 * time.Hour)

	if _, err := s.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestSymmetric_Verify_WrongIssuer(t *testing.T) {
	clk := &fixedClock{t: time.Now().Truncate(time.Second)}
	other, _ := NewHS512(Config{Secret: testSecret, Issuer: "someone-else", Audiences: []string{"otp-api"}, TTL: time.Hour, Clock: clk, UUID: fixedID{}})
	token, _ := other.Generate(1, "", "user")

	if _, err := newSymmetric(t, clk).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestNewHS512_ShortKey(t *testing.T) {
	if _, err := NewHS512(Config{Secret: []byte("short")}); !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("error = %v, want ErrSigningKeyTooShort", err)
	}
}

func TestAuthContext(t *testing.T) {
	if GetAuth(context.Background()) != nil {
		t.Fatalf("empty context should have no claims")
	}

	ctx := SetAuth(context.Background(), Claims{UserID: 7, Role: "user"})

	if got := GetAuth(ctx); got == nil || got.UserID != 7 {
		t.Fatalf("GetAuth() = %+v", got)
	}
}
