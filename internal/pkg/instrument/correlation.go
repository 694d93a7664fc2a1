package instrument

import "context"

type correlationKey struct{}

// CorrelationHeader is the broker header carrying the correlation id.
const CorrelationHeader = "cID"

// SetCorrelationID stores id in ctx.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the id stored in ctx, or "" when absent.
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
