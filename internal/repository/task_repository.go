package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/taskbot/internal/database"
	"github.com/yukikurage/taskbot/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrSaveTasks is returned when the collection rewrite transaction fails.
	// Nothing of the failed write is committed.
	ErrSaveTasks = errors.New("task repository: save tasks failed")
	// ErrLoadTasks is returned when reading a workspace collection fails.
	ErrLoadTasks = errors.New("task repository: load tasks failed")
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

func orderedAssignees(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormTaskRepository) Load(workspaceID string) ([]*models.Task, error) {
	var rows []models.Task
	err := r.db.
		Preload("Assignees", orderedAssignees).
		Preload("Notification").
		Where("workspace_id = ?", workspaceID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadTasks, err)
	}

	tasks := make([]*models.Task, len(rows))
	for i := range rows {
		tasks[i] = &rows[i]
	}
	return tasks, nil
}

// Save deletes the stored collection and inserts tasks in order, all in one
// transaction. Positions are rewritten from slice order.
func (r *GormTaskRepository) Save(workspaceID string, tasks []*models.Task) error {
	rows := make([]models.Task, len(tasks))
	for i, t := range tasks {
		row := t.Clone()
		row.WorkspaceID = workspaceID
		row.Position = i
		for j := range row.Assignees {
			row.Assignees[j].TaskID = row.ID
			row.Assignees[j].Position = j
		}
		if row.Notification != nil {
			row.Notification.TaskID = row.ID
		}
		rows[i] = *row
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Task{}).Where("workspace_id = ?", workspaceID).Pluck("id", &ids).Error; err != nil {
			return err
		}

		if len(ids) > 0 {
			if err := tx.Where("task_id IN ?", ids).Delete(&models.Assignee{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", ids).Delete(&models.Notification{}).Error; err != nil {
				return err
			}
			if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveTasks, err)
	}
	return nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{}).Where("workspace_id = ?", filter.WorkspaceID)
	if filter.Done != nil {
		query = query.Where("done = ?", *filter.Done)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	listQuery := query.Order("position ASC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}
	if err := listQuery.
		Preload("Assignees", orderedAssignees).
		Preload("Notification").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}
