package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/middleware"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/session"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

func authorityFromContext(c *gin.Context) *session.Authority {
	auth, ok := middleware.Authority(c)
	if !ok {
		return nil
	}
	return auth
}

func identityFromContext(c *gin.Context) (models.Identity, bool) {
	return middleware.Identity(c)
}

// tokenFromContext returns the session's upstream bearer token. Empty when
// the session is not authenticated.
func tokenFromContext(c *gin.Context) string {
	auth := authorityFromContext(c)
	if auth == nil {
		return ""
	}
	token, ok := auth.Token()
	if !ok {
		return ""
	}
	return token
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return id, nil
}

func queryInt64(c *gin.Context, name string) int64 {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func queryInt(c *gin.Context, name string) int {
	return int(queryInt64(c, name))
}
