// Package clock provides a tiny time abstraction.
//
// Business code depends on Clocker instead of calling time.Now directly, so
// tests can pin "now" and step it forward to cross an OTP deadline without
// sleeping.
package clock
