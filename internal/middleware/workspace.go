package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskbot/internal/constants"
	apierrors "github.com/yukikurage/taskbot/internal/errors"
	"github.com/yukikurage/taskbot/internal/services"
)

// RequireWorkspace resolves the attached workspace named in the URL and
// stores its manager in the context.
func RequireWorkspace(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("workspace_id")
		if workspaceID == "" {
			apierrors.BadRequest(c, "Invalid workspace ID")
			c.Abort()
			return
		}

		manager, err := registry.Get(workspaceID)
		if err != nil {
			apierrors.NotFound(c, "Workspace is not attached")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyManager, manager)
		c.Next()
	}
}

// GetManager retrieves the workspace's task manager from context
func GetManager(c *gin.Context) (*services.TaskManager, bool) {
	value, exists := c.Get(constants.ContextKeyManager)
	if !exists {
		return nil, false
	}
	manager, ok := value.(*services.TaskManager)
	return manager, ok
}
