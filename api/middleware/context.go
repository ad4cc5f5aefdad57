package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID    contextKey = "userID"
	ctxAccessID  contextKey = "accessID"
	ctxStoreID   contextKey = "storeID"
	ctxRequestID contextKey = "requestID"
)

// WithUserID stores the authenticated user's ID on the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserIDFromContext returns the authenticated user's ID, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithAccessID stores the session access ID (the token's JTI) on the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// AccessIDFromContext returns the session access ID, if any.
func AccessIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxAccessID).(string)
	return id, ok && id != ""
}

// WithStoreID stores the store scoping the current request on the context.
func WithStoreID(ctx context.Context, storeID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxStoreID, storeID)
}

// StoreIDFromContext returns the store scoping the current request, if any.
func StoreIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxStoreID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// RequestIDFromContext returns the request correlation ID, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxRequestID).(string)
	return id, ok && id != ""
}
