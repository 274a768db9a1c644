package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sketchmotion/sketchmotion/internal/server/auth"
)

const identityKey = "identity"

// AuthMiddleware verifies the bearer credential and stores the resolved
// identity on the request context. A missing or malformed header fails 401
// before any request parsing happens.
func AuthMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				ErrorResponse{Error: ErrorBody{Code: "UNAUTHENTICATED", Message: "missing token"}})
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				ErrorResponse{Error: ErrorBody{Code: "UNAUTHENTICATED", Message: "invalid token"}})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFromContext returns the identity the auth middleware attached.
func IdentityFromContext(c *gin.Context) (*auth.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "identity missing")
		return nil, false
	}
	identity, ok := value.(*auth.Identity)
	if !ok {
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "identity invalid")
		return nil, false
	}
	return identity, true
}
