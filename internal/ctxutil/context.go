// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	senderIDKey  contextKey = "ctxutil.senderID"
	requestIDKey contextKey = "ctxutil.requestID"
)

// WithSenderID adds the WhatsApp sender id to the context. It is used
// for log correlation across the dispatch pipeline.
func WithSenderID(ctx context.Context, senderID string) context.Context {
	return context.WithValue(ctx, senderIDKey, senderID)
}

// GetSenderID retrieves the sender id from the context.
// Returns the sender id if found, empty string otherwise.
func GetSenderID(ctx context.Context) string {
	if v := ctx.Value(senderIDKey); v != nil {
		if senderID, ok := v.(string); ok && senderID != "" {
			return senderID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context for tracing.
// The inbound message id serves as the request id for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// Use for async operations that need tracing but must outlive the parent
// context, such as webhook processing that continues after the HTTP
// response is sent.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if senderID := GetSenderID(ctx); senderID != "" {
		newCtx = WithSenderID(newCtx, senderID)
	}
	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}

	return newCtx
}
