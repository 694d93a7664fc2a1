package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values and scales them into durations.
//
// A missing or non-numeric key yields a zero duration; callers decide whether
// zero means "use the default".
type TimeConfig interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
}

// NumberConfig reads numeric values. Missing keys yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64
}

// Config is the read-only view over runtime configuration used by the app.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool reads a boolean. Missing keys yield false.
	GetBool(key string) bool

	// GetString reads a string. Missing keys yield "".
	GetString(key string) string

	// GetBinary reads a base64 encoded value and returns the decoded bytes,
	// or nil when the value is absent or not valid base64.
	GetBinary(key string) []byte

	// GetArray reads a comma separated list (<a>,<b>,...) or a YAML sequence.
	// Elements are trimmed and empty elements are dropped.
	GetArray(key string) []string

	// GetMap reads "<k1>:<v1>,<k2>:<v2>" pairs or a YAML mapping.
	GetMap(key string) map[string]string
}
