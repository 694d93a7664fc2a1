package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
)

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		wantFields []string
	}{
		{name: "default", policy: DefaultPolicy()},
		{name: "upper bounds", policy: Policy{CodeLength: 8, LifetimeMinutes: 15}},
		{name: "lower bounds", policy: Policy{CodeLength: 6, LifetimeMinutes: 1}},
		{name: "short code", policy: Policy{CodeLength: 5, LifetimeMinutes: 5}, wantFields: []string{"code_length"}},
		{name: "long lifetime", policy: Policy{CodeLength: 6, LifetimeMinutes: 16}, wantFields: []string{"lifetime_minutes"}},
		{name: "both", policy: Policy{CodeLength: 9, LifetimeMinutes: 0}, wantFields: []string{"code_length", "lifetime_minutes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var gerr *goerror.Error
			if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
				t.Fatalf("Validate() error = %v, want invalid input", err)
			}
			if len(gerr.Fields()) != len(tt.wantFields) {
				t.Fatalf("fields = %v, want %v", gerr.Fields(), tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := gerr.Fields()[f]; !ok {
					t.Fatalf("missing field %q in %v", f, gerr.Fields())
				}
			}
		})
	}
}

func TestChannelFromString(t *testing.T) {
	for _, ch := range []Channel{ChannelEmail, ChannelSMS, ChannelTelegram, ChannelFile} {
		if got := ChannelFromString(" " + ch.String() + " "); got != ch {
			t.Fatalf("ChannelFromString(%q) = %v", ch.String(), got)
		}
		if !ch.Valid() {
			t.Fatalf("%v should be valid", ch)
		}
	}
	if got := ChannelFromString("pigeon"); got != ChannelUnknown || got.Valid() {
		t.Fatalf("unknown channel accepted: %v", got)
	}
	if !ChannelFile.EchoesCode() || ChannelEmail.EchoesCode() {
		t.Fatal("only the file channel echoes the code")
	}
}

func TestRecipient_Address(t *testing.T) {
	empty := Recipient{}
	for _, ch := range []Channel{ChannelEmail, ChannelSMS, ChannelTelegram, ChannelUnknown} {
		if _, ok := empty.Address(ch); ok {
			t.Fatalf("empty recipient has an address for %v", ch)
		}
	}
	if _, ok := empty.Address(ChannelFile); !ok {
		t.Fatal("file channel needs no address")
	}

	full := Recipient{Email: "a@b.c", Phone: "+628", TelegramChatID: "42"}
	if addr, _ := full.Address(ChannelTelegram); addr != "42" {
		t.Fatalf("telegram address = %q", addr)
	}
}

func TestVerifyOutcome_Err(t *testing.T) {
	tests := []struct {
		outcome VerifyOutcome
		cause   error
		status  int
	}{
		{VerifyNotFound, ErrVerifyNotFound, 404},
		{VerifyExpired, ErrVerifyExpired, 410},
		{VerifyAlreadyTerminal, ErrVerifyAlreadyTerminal, 409},
	}

	if VerifySuccess.Err() != nil {
		t.Fatal("success must not map to an error")
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			err := tt.outcome.Err()
			if !errors.Is(err, tt.cause) {
				t.Fatalf("Err() = %v, want cause %v", err, tt.cause)
			}
			var gerr *goerror.Error
			if !errors.As(err, &gerr) || gerr.StatusCode() != tt.status {
				t.Fatalf("status = %v, want %d", err, tt.status)
			}
		})
	}
}

func TestRecord_ExpiredAt(t *testing.T) {
	exp := time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
	r := Record{ExpiresAt: exp}
	if r.ExpiredAt(exp) {
		t.Fatal("a record is still valid at its deadline")
	}
	if !r.ExpiredAt(exp.Add(time.Microsecond)) {
		t.Fatal("a record is expired after its deadline")
	}
	if StatusActive.Terminal() || !StatusUsed.Terminal() || !StatusExpired.Terminal() {
		t.Fatal("terminal states mismatch")
	}
}
