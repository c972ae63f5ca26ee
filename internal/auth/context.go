package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
)

type ctxKey int

const ctxUID ctxKey = iota

// GinUIDKey is the gin context key holding the authenticated UID.
const GinUIDKey = "uid"

// WithUID attaches the authenticated subject to ctx.
func WithUID(ctx context.Context, uid UID) context.Context {
	return context.WithValue(ctx, ctxUID, uid)
}

// UIDFrom returns the authenticated subject attached by RequireAccessToken.
func UIDFrom(ctx context.Context) (UID, error) {
	v := ctx.Value(ctxUID)
	if u, ok := v.(UID); ok && u != "" {
		return u, nil
	}
	return "", errors.New("uid not in context")
}

// UIDFromGin reads the subject from the gin context, falling back to the request context.
func UIDFromGin(c *gin.Context) (UID, error) {
	if v, ok := c.Get(GinUIDKey); ok {
		if u, ok := v.(UID); ok && u != "" {
			return u, nil
		}
	}
	return UIDFrom(c.Request.Context())
}
