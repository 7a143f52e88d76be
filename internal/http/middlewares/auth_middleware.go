package middlewares

import (
	"github.com/geocoder89/userhub/internal/actorctx"
	"github.com/geocoder89/userhub/internal/apperr"
	"github.com/geocoder89/userhub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenDecoder interface {
	Decode(token string) (string, error)
}

type AuthMiddleware struct {
	tokens TokenDecoder
}

func NewAuthMiddleware(tokens TokenDecoder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth resolves the Authorization header to a user id or aborts with "wrong token".
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c.GetHeader("Authorization"))

		userID, err := m.tokens.Decode(raw)
		if err != nil {
			_ = c.Error(&apperr.Error{Kind: apperr.KindForbidden, Message: "wrong token", Err: err})
			c.Abort()
			return
		}

		c.Set(CtxUserID, userID)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), userID))

		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
