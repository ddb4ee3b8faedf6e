package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sisemasexp/portal/internal/config"
)

const metricsRealm = `Basic realm="metrics"`

// metricsAuthMiddleware guards /metrics with Basic Auth when cfg.AuthEnabled.
func metricsAuthMiddleware(cfg config.MetricsConfig) gin.HandlerFunc {
	if !cfg.AuthEnabled {
		return func(c *gin.Context) { c.Next() }
	}
	wantUser := []byte(cfg.Username)
	wantPass := []byte(cfg.Password)

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		// Compare both fields even when the first fails.
		userOK := subtle.ConstantTimeCompare([]byte(user), wantUser) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), wantPass) == 1
		if !ok || !userOK || !passOK {
			c.Header("WWW-Authenticate", metricsRealm)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
