package repository

import (
	"github.com/yukikurage/taskbot/internal/models"
	"github.com/yukikurage/taskbot/internal/utils"
)

// TaskRepository defines the interface for task data access.
// A workspace's tasks are always written as a whole collection.
type TaskRepository interface {
	// Load returns the workspace's tasks in collection order with
	// assignees and notifications attached
	Load(workspaceID string) ([]*models.Task, error)

	// Save replaces the workspace's stored collection with tasks
	Save(workspaceID string, tasks []*models.Task) error

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	WorkspaceID string
	Done        *bool
	Pagination  utils.PaginationParams
}

// WorkspaceRepository defines the interface for workspace records
type WorkspaceRepository interface {
	// Find returns the record or gorm.ErrRecordNotFound
	Find(id string) (*models.Workspace, error)

	// Save inserts or fully overwrites the record
	Save(workspace *models.Workspace) error

	// List returns every known workspace
	List() ([]models.Workspace, error)
}
