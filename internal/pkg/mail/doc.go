// Package mail sends plain email through an SMTP relay.
//
// Callers depend on the Mail interface; SMTP is the production implementation.
package mail
