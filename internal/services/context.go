package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	operatorKey  contextKey = "operator"
)

// WithRequestID annotates context with the API request identifier so log
// lines from the tracker and store can be correlated with the request.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the request identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(requestIDKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithOperator annotates context with the acting operator.
func WithOperator(ctx context.Context, operator string) context.Context {
	if operator == "" {
		return ctx
	}
	return context.WithValue(ctx, operatorKey, operator)
}

// OperatorFromContext returns the acting operator if present.
func OperatorFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(operatorKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
