package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// ErrEmptySecret is returned when a digester is built without a key.
var ErrEmptySecret = errors.New("hash: empty secret")

// HMACSHA256 computes hex-encoded HMAC-SHA256 digests under a fixed key.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a digester keyed with secret.
func NewHMACSHA256(secret string) (*HMACSHA256, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HMACSHA256{secret: []byte(secret)}, nil
}

// Digest returns the 64-character hex digest of s.
func (h *HMACSHA256) Digest(s string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(s))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether digest was produced from s under the same key.
func (h *HMACSHA256) Verify(digest, s string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(h.Digest(s))) == 1
}
