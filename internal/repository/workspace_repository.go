package repository

import (
	"github.com/yukikurage/taskbot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

func (r *GormWorkspaceRepository) Find(id string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.Where("id = ?", id).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *GormWorkspaceRepository) Save(ws *models.Workspace) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"board_id", "notification_channel_id", "updated_at"}),
		}).
		Create(ws).Error
}

func (r *GormWorkspaceRepository) List() ([]models.Workspace, error) {
	var workspaces []models.Workspace
	if err := r.db.Order("id ASC").Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return workspaces, nil
}
