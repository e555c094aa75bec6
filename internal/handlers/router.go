package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskbot/internal/middleware"
	"github.com/yukikurage/taskbot/internal/services"
)

// RegisterRoutes mounts the bridge API on r. Session middleware must already
// be installed.
func RegisterRoutes(r *gin.Engine, authHandler *AuthHandler, workspaceHandler *WorkspaceHandler, registry *services.Registry) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task bot gateway is running",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
		}

		workspaces := api.Group("/workspaces/:workspace_id")
		workspaces.Use(middleware.RequireAuth())
		{
			workspaces.POST("/attach", workspaceHandler.Attach)
			workspaces.DELETE("", workspaceHandler.Detach)

			attached := workspaces.Group("")
			attached.Use(middleware.RequireWorkspace(registry))
			{
				attached.POST("/commands", workspaceHandler.Command)
				attached.POST("/interactions", workspaceHandler.Interaction)
				attached.GET("/events", workspaceHandler.Events)
				attached.GET("/tasks", workspaceHandler.ListTasks)
			}
		}
	}
}
