// Package jwt verifies HS512 bearer tokens and carries their claims through
// a request context.
package jwt
