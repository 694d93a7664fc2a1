package entity

import (
	"strconv"
	"time"

	"github.com/shandysiswandi/gobite-otp/internal/pkg/goerror"
)

const (
	MinCodeLength      = 6
	MaxCodeLength      = 8
	MinLifetimeMinutes = 1
	MaxLifetimeMinutes = 15
)

// Policy governs code length and lifetime. Exactly one exists.
type Policy struct {
	CodeLength      int
	LifetimeMinutes int
	UpdatedAt       time.Time
}

// DefaultPolicy is bootstrapped when no policy row exists.
func DefaultPolicy() Policy {
	return Policy{CodeLength: 6, LifetimeMinutes: 5}
}

// Lifetime returns the lifetime as a duration.
func (p Policy) Lifetime() time.Duration {
	return time.Duration(p.LifetimeMinutes) * time.Minute
}

// Validate enforces the policy bounds and reports every violating field.
func (p Policy) Validate() error {
	var kv []string
	if p.CodeLength < MinCodeLength || p.CodeLength > MaxCodeLength {
		kv = append(kv, "code_length", "code_length must be between "+
			strconv.Itoa(MinCodeLength)+" and "+strconv.Itoa(MaxCodeLength))
	}
	if p.LifetimeMinutes < MinLifetimeMinutes || p.LifetimeMinutes > MaxLifetimeMinutes {
		kv = append(kv, "lifetime_minutes", "lifetime_minutes must be between "+
			strconv.Itoa(MinLifetimeMinutes)+" and "+strconv.Itoa(MaxLifetimeMinutes))
	}
	if len(kv) == 0 {
		return nil
	}
	return goerror.NewInvalidInput(nil, kv...)
}
