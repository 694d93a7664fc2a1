// Package uid generates identifiers: numeric snowflake ids for rows and
// UUID strings for correlation and object keys.
package uid

// NumberID generates unique, roughly time-ordered 64-bit identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
