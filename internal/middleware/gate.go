package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/session"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/response"
)

// SignInPath is where anonymous visitors are redirected, preserving the
// originally requested location for post-login return.
const SignInPath = "/auth/login"

// LandingPath is the default location for authenticated visitors whose
// role does not match a guarded view.
const LandingPath = "/"

// Gate admits requests based on the session authority's state and an
// optional required role set (empty means any authenticated identity):
//
//   - Resolving: a neutral loading response, no navigation.
//   - Anonymous: redirect to sign-in with the requested path preserved.
//   - Authenticated, role mismatch: redirect to the default landing.
//   - Authenticated, role admitted: pass through with identity attached.
//
// An Uninitialized session is resolved synchronously before the decision;
// no resolution failure escapes as a fault.
func Gate(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, ok := Authority(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		switch auth.State() {
		case session.StateUninitialized:
			if err := auth.Initialize(c.Request.Context()); err != nil {
				// Context cancelled mid-resolution; nothing to render.
				c.Abort()
				return
			}
		case session.StateResolving:
			c.JSON(http.StatusAccepted, gin.H{"status": "loading"})
			c.Abort()
			return
		}

		identity, authenticated := auth.CurrentIdentity()
		if !authenticated {
			target := SignInPath + "?from=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		if !auth.HasRole(roles...) {
			c.Redirect(http.StatusFound, LandingPath)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// Identity returns the admitted identity stored by the gate.
func Identity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(ContextIdentityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}
