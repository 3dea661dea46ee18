package auth

import (
	"context"
)

type contextKey string

var (
	adminClaimsKey contextKey = "admin_claims"
	requestIDKey   contextKey = "request_id"
)

func SetAdminClaims(ctx context.Context, claims *AdminClaims) context.Context {
	return context.WithValue(ctx, adminClaimsKey, claims)
}

func GetAdminClaims(ctx context.Context) *AdminClaims {
	if claims, ok := ctx.Value(adminClaimsKey).(*AdminClaims); ok {
		return claims
	}
	return nil
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
