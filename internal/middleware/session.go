package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/session"
)

// Context keys for session plumbing.
const (
	ContextSessionIDKey = "sessionID"
	ContextAuthorityKey = "sessionAuthority"
	ContextIdentityKey  = "currentIdentity"
)

// Session guarantees every request carries a valid session cookie and
// attaches the session's authority to the context. A missing or invalid
// cookie gets a fresh session ID and a re-issued cookie.
func Session(codec *session.CookieCodec, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := ""
		if raw, err := c.Cookie(codec.Name()); err == nil {
			if parsed, err := codec.Parse(raw); err == nil {
				sid = parsed
			}
		}

		if sid == "" {
			sid = codec.NewSessionID()
			if signed, err := codec.Issue(sid); err == nil {
				c.SetCookie(codec.Name(), signed, codec.MaxAge(), "/", "", codec.Secure(), true)
			}
		}

		c.Set(ContextSessionIDKey, sid)
		c.Set(ContextAuthorityKey, sessions.Authority(sid))
		c.Next()
	}
}

// SessionID returns the session ID stored in the Gin context.
func SessionID(c *gin.Context) string {
	if v, exists := c.Get(ContextSessionIDKey); exists {
		if sid, ok := v.(string); ok {
			return sid
		}
	}
	return ""
}

// Authority returns the session authority stored in the Gin context.
func Authority(c *gin.Context) (*session.Authority, bool) {
	v, exists := c.Get(ContextAuthorityKey)
	if !exists {
		return nil, false
	}
	auth, ok := v.(*session.Authority)
	return auth, ok
}
