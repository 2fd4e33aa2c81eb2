package middleware

import (
	"context"

	pkgAuth "github.com/angelmondragon/hourstay-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
)

type contextKey string

const (
	ctxPrincipal contextKey = "principal"
	ctxAccessID  contextKey = "access_id"
)

// PrincipalFromContext returns the authenticated actor, if any.
func PrincipalFromContext(ctx context.Context) (pkgAuth.Principal, bool) {
	if ctx == nil {
		return pkgAuth.Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(pkgAuth.Principal)
	return p, ok
}

// ActorFromContext returns the authenticated actor or an unauthorized error.
func ActorFromContext(ctx context.Context) (pkgAuth.Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return pkgAuth.Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return p, nil
}

// AccessIDFromContext returns the jti of the token that authenticated the request.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// UserIDFromContext returns the authenticated user id as a string.
func UserIDFromContext(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.UserID.String()
	}
	return ""
}

// WithPrincipal injects the actor into the context for downstream handlers.
func WithPrincipal(ctx context.Context, p pkgAuth.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

// WithAccessID injects the session identifier into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
