package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskbot/internal/dto"
	apierrors "github.com/yukikurage/taskbot/internal/errors"
	"github.com/yukikurage/taskbot/internal/middleware"
	"github.com/yukikurage/taskbot/internal/models"
	"github.com/yukikurage/taskbot/internal/repository"
	"github.com/yukikurage/taskbot/internal/services"
	"github.com/yukikurage/taskbot/internal/surface"
	"github.com/yukikurage/taskbot/internal/utils"
)

// WorkspaceHandler exposes the per-workspace task tracker to the bridge.
type WorkspaceHandler struct {
	registry *services.Registry
	outbox   *surface.Outbox
	tasks    repository.TaskRepository
}

func NewWorkspaceHandler(registry *services.Registry, outbox *surface.Outbox, tasks repository.TaskRepository) *WorkspaceHandler {
	return &WorkspaceHandler{
		registry: registry,
		outbox:   outbox,
		tasks:    tasks,
	}
}

// Attach loads a workspace and starts its reminders.
func (h *WorkspaceHandler) Attach(c *gin.Context) {
	var req dto.AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	manager, err := h.registry.Attach(c.Request.Context(), c.Param("workspace_id"), req.NotificationChannelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WorkspaceDTO{
		ID:                    manager.WorkspaceID(),
		NotificationChannelID: manager.ChannelID(),
		TaskCount:             len(manager.Tasks()),
	})
}

// Detach stops the workspace's reminders and forgets it.
func (h *WorkspaceHandler) Detach(c *gin.Context) {
	if err := h.registry.Detach(c.Param("workspace_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Command runs one chat command.
func (h *WorkspaceHandler) Command(c *gin.Context) {
	var req dto.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.registry.Execute(c.Request.Context(), c.Param("workspace_id"), req.ToCommand()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// Interaction delivers one control callback to its pending step.
func (h *WorkspaceHandler) Interaction(c *gin.Context) {
	var req dto.InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Action.Valid() {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	manager, ok := middleware.GetManager(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	if err := manager.Handle(c.Request.Context(), req.ToInteraction()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// Events drains the surface operations queued for the workspace.
func (h *WorkspaceHandler) Events(c *gin.Context) {
	c.JSON(http.StatusOK, dto.EventsResponse{
		Events: h.outbox.Drain(c.Param("workspace_id")),
	})
}

// ListTasks returns the stored tasks of the workspace, optionally filtered by
// done=true|false.
func (h *WorkspaceHandler) ListTasks(c *gin.Context) {
	filter := repository.TaskFilter{
		WorkspaceID: c.Param("workspace_id"),
		Pagination:  utils.GetPaginationParams(c),
	}
	if raw := c.Query("done"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid done filter")
			return
		}
		filter.Done = &done
	}

	tasks, total, err := h.tasks.List(filter)
	if err != nil {
		log.Printf("Failed to list tasks of %s: %v", filter.WorkspaceID, err)
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:  filter.Pagination.Page,
			Limit: filter.Pagination.Limit,
			Total: total,
		},
	})
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrTitleRequired),
		errors.Is(err, models.ErrInvalidRate),
		errors.Is(err, models.ErrUnknownUnit),
		errors.Is(err, services.ErrUnknownCommand),
		errors.Is(err, services.ErrMissingArgument),
		errors.Is(err, services.ErrUnexpectedAction),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrWorkspaceNotAttached),
		errors.Is(err, services.ErrUnknownInteraction):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNoBoardLinked):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrBoardSync):
		apierrors.BadGateway(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured),
		errors.Is(err, services.ErrBoardNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		log.Printf("Request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
