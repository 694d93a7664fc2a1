package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/pquerna/otp"
)

// MaxLength is the longest code Numeric can produce.
const MaxLength = 9

// ErrInvalidLength is returned for lengths outside [1, MaxLength].
var ErrInvalidLength = errors.New("otp: invalid code length")

// Generator produces numeric codes of a requested length.
type Generator interface {
	Generate(length int) (string, error)
}

// Numeric draws codes from crypto/rand.
type Numeric struct{}

// NewNumeric returns a Numeric generator.
func NewNumeric() *Numeric {
	return &Numeric{}
}

// Generate returns exactly length decimal digits.
func (*Numeric) Generate(length int) (string, error) {
	if length < 1 || length > MaxLength {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}

	return otp.Digits(length).Format(int32(n.Int64())), nil
}
