package entity

import (
	"errors"

	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
)

var (
	// ErrPolicyMissing means no policy row exists; issuance cannot proceed.
	ErrPolicyMissing = errors.New("otp policy missing")
	// ErrPersistFailure means the ledger write failed; no record was created.
	ErrPersistFailure = errors.New("otp persist failure")
	// ErrMissingAddress means the recipient lacks the address the channel needs.
	ErrMissingAddress = errors.New("recipient address missing for channel")
	// ErrUnknownChannel is returned for a channel outside the closed set.
	ErrUnknownChannel = errors.New("unknown delivery channel")

	ErrVerifyNotFound        = errors.New("otp not found")
	ErrVerifyExpired         = errors.New("otp expired")
	ErrVerifyAlreadyTerminal = errors.New("otp already used or expired")
	ErrTooManyAttempts       = errors.New("too many failed verification attempts")
)

// VerifyOutcome is the result of a verification. Every value is distinct.
type VerifyOutcome int

const (
	VerifySuccess VerifyOutcome = iota + 1
	VerifyNotFound
	VerifyExpired
	VerifyAlreadyTerminal
)

func (o VerifyOutcome) String() string {
	switch o {
	case VerifySuccess:
		return "success"
	case VerifyNotFound:
		return "not_found"
	case VerifyExpired:
		return "expired"
	case VerifyAlreadyTerminal:
		return "already_terminal"
	default:
		return "unknown"
	}
}

// Err maps a non-success outcome onto a business error; Success yields nil.
func (o VerifyOutcome) Err() error {
	switch o {
	case VerifySuccess:
		return nil
	case VerifyNotFound:
		return goerror.NewBusinessCause(ErrVerifyNotFound, "OTP not found", goerror.CodeNotFound)
	case VerifyExpired:
		return goerror.NewBusinessCause(ErrVerifyExpired, "OTP has expired", goerror.CodeGone)
	case VerifyAlreadyTerminal:
		return goerror.NewBusinessCause(ErrVerifyAlreadyTerminal, "OTP has already been used or expired", goerror.CodeConflict)
	default:
		return goerror.NewServer(errors.New("unknown verify outcome"))
	}
}
