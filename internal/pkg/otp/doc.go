// Package otp generates one-time numeric codes.
//
// Codes come from crypto/rand with every digit uniform over 0-9; leading
// zeros are kept, so a six-digit code may be "004217".
package otp
