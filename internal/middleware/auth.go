package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskbot/internal/constants"
	apierrors "github.com/yukikurage/taskbot/internal/errors"
)

// RequireAuth checks if the bridge is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		bridgeID := session.Get(constants.ContextKeyBridgeID)

		if bridgeID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyBridgeID, bridgeID)
		c.Next()
	}
}

// GetBridgeID retrieves the authenticated bridge identity from context
func GetBridgeID(c *gin.Context) (string, bool) {
	bridgeID, exists := c.Get(constants.ContextKeyBridgeID)
	if !exists {
		return "", false
	}
	id, ok := bridgeID.(string)
	return id, ok && id != ""
}
