// Package validator checks request structs against struct tags.
//
// Callers depend on the Validator interface; V10Validator is the
// go-playground/validator backed implementation with English messages and
// snake_case field names.
package validator

// Validator validates a struct and returns a field-keyed error on failure.
type Validator interface {
	Validate(data any) error
}
