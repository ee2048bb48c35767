package middleware

import (
	"net/http"

	"github.com/ableKiHo/community-web/internal/auth"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is the gin context key holding the resolved *auth.User.
const ContextUserKey = "user"

// GinResolveIdentity adapts AuthMiddleware.ResolveIdentity to Gin and
// mirrors the user into the gin context.
func GinResolveIdentity(a *AuthMiddleware) gin.HandlerFunc {
	return ginAdapt(a.ResolveIdentity, func(c *gin.Context) {
		if u, ok := UserFromContext(c.Request.Context()); ok {
			c.Set(ContextUserKey, u)
		}
	})
}

// GinRequireUser adapts AuthMiddleware.RequireUser to Gin.
func GinRequireUser(a *AuthMiddleware) gin.HandlerFunc {
	return ginAdapt(a.RequireUser, nil)
}

// CurrentUser returns the user GinResolveIdentity attached, or nil.
func CurrentUser(c *gin.Context) *auth.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*auth.User)
	return u
}

func ginAdapt(mw func(http.Handler) http.Handler, before func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			if before != nil {
				before(c)
			}
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		// If the middleware already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
		}
	}
}
