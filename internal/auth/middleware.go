package auth

import (
	"strings"
	"time"

	"petshop-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// TokenVerifier is what the middleware needs from a Verifier.
type TokenVerifier interface {
	Verify(raw string, now time.Time) (Claims, error)
}

// BearerToken extracts the credential from an "Authorization: Bearer <token>" header.
// Any other scheme, or an empty token, yields "".
func BearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if !strings.HasPrefix(raw, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
}

// RequireAccessToken verifies the bearer token and injects the uid into the request context.
// Every rejection aborts with 401 and {"message": ...}. clock may be nil for time.Now.
func RequireAccessToken(v TokenVerifier, clock func() time.Time) gin.HandlerFunc {
	if clock == nil {
		clock = time.Now
	}
	return func(c *gin.Context) {
		tok := BearerToken(c.GetHeader(authorizationHeader))

		var (
			claims Claims
			err    error
		)
		if tok == "" {
			err = ErrMissingToken
		} else {
			claims, err = v.Verify(tok, clock())
		}
		if err != nil {
			rej := Reject(err)
			logger.FromGin(c).Debug("access token rejected", "reason", rej.Reason, "err", err)
			c.AbortWithStatusJSON(rej.Status, gin.H{"message": rej.Message})
			return
		}

		ctx := WithUID(c.Request.Context(), claims.UID)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set(GinUIDKey, claims.UID)

		c.Next()
	}
}
