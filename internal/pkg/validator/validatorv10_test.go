package validator

import (
	"errors"
	"testing"
)

type verifyRequest struct {
	Code        string `validate:"required,otp_code"`
	OperationID string `validate:"required,max=100"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	tests := []struct {
		name       string
		in         verifyRequest
		wantFields []string
	}{
		{name: "valid six digits", in: verifyRequest{Code: "012345", OperationID: "login"}},
		{name: "valid eight digits", in: verifyRequest{Code: "01234567", OperationID: "login"}},
		{name: "too short", in: verifyRequest{Code: "12345", OperationID: "login"}, wantFields: []string{"code"}},
		{name: "letters", in: verifyRequest{Code: "12a456", OperationID: "login"}, wantFields: []string{"code"}},
		{name: "all missing", in: verifyRequest{}, wantFields: []string{"code", "operation_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)

			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected V10ValidationError, got %T (%v)", err, err)
			}
			if len(verr) != len(tt.wantFields) {
				t.Fatalf("fields = %v, want %v", verr, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if verr.Values()[f] == "" {
					t.Fatalf("missing message for %q in %v", f, verr)
				}
			}
		})
	}
}

func TestV10Validator_OTPCodeMessage(t *testing.T) {
	v, _ := NewV10Validator()

	err := v.Validate(verifyRequest{Code: "abc", OperationID: "x"})

	var verr V10ValidationError
	if !errors.As(err, &verr) || verr["code"] != "Code must be 6-8 digits" {
		t.Fatalf("unexpected message: %v", err)
	}
}
