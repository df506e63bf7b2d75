package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/config"
)

// CookieCodec signs and validates the gateway session cookie. The cookie
// carries only the session ID; the upstream credential never leaves the
// server side.
type CookieCodec struct {
	name   string
	secret []byte
	secure bool
	ttl    time.Duration
}

type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// NewCookieCodec builds a codec from the session configuration.
func NewCookieCodec(cfg config.SessionConfig) *CookieCodec {
	return &CookieCodec{
		name:   cfg.CookieName,
		secret: []byte(cfg.CookieSecret),
		secure: cfg.CookieSecure,
		ttl:    cfg.TTL,
	}
}

// Name returns the cookie name.
func (c *CookieCodec) Name() string {
	return c.name
}

// Secure reports whether the cookie requires HTTPS.
func (c *CookieCodec) Secure() bool {
	return c.secure
}

// MaxAge returns the cookie lifetime in seconds.
func (c *CookieCodec) MaxAge() int {
	return int(c.ttl / time.Second)
}

// NewSessionID creates a fresh opaque session identifier.
func (c *CookieCodec) NewSessionID() string {
	return uuid.NewString()
}

// Issue signs a cookie value binding the session ID.
func (c *CookieCodec) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		SessionID: sessionID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Parse validates a cookie value and extracts the session ID.
func (c *CookieCodec) Parse(raw string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session cookie: %w", err)
	}
	if !token.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("invalid session cookie")
	}
	return claims.SessionID, nil
}
