package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/yukikurage/taskbot/internal/client"
	"github.com/yukikurage/taskbot/internal/models"
	"github.com/yukikurage/taskbot/internal/render"
	"github.com/yukikurage/taskbot/internal/repository"
	"github.com/yukikurage/taskbot/internal/scheduler"
	"github.com/yukikurage/taskbot/internal/surface"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotAttached = errors.New("workspace is not attached")
	ErrBoardNotConfigured   = errors.New("external board credentials are not configured")
)

// SurfaceProvider hands out the chat surface of a workspace.
type SurfaceProvider interface {
	For(workspaceID string) surface.Surface
}

// RegistryConfig holds the collaborators shared by every workspace.
type RegistryConfig struct {
	Tasks      repository.TaskRepository
	Workspaces repository.WorkspaceRepository
	Surfaces   SurfaceProvider
	Scheduler  *scheduler.Scheduler
	// Boards builds board clients; nil disables board linking.
	Boards client.BoardFactory
	// AI is optional; nil makes generate_tasks fail with ErrAIServiceNotConfigured.
	AI         TaskGenerator
	MaxOptions int
	Renderer   render.Renderer
	Now        func() time.Time
	NewID      func() string
}

// Registry maps workspace IDs to their attached TaskManager.
type Registry struct {
	deps       managerDeps
	workspaces repository.WorkspaceRepository
	surfaces   SurfaceProvider
	boards     client.BoardFactory

	mu       sync.RWMutex
	managers map[string]*TaskManager
}

func NewRegistry(cfg RegistryConfig) *Registry {
	deps := managerDeps{
		repo:       cfg.Tasks,
		scheduler:  cfg.Scheduler,
		ai:         cfg.AI,
		renderer:   cfg.Renderer,
		maxOptions: cfg.MaxOptions,
		now:        cfg.Now,
		newID:      cfg.NewID,
	}
	deps.defaults()

	return &Registry{
		deps:       deps,
		workspaces: cfg.Workspaces,
		surfaces:   cfg.Surfaces,
		boards:     cfg.Boards,
		managers:   make(map[string]*TaskManager),
	}
}

// Scheduler returns the scheduler shared by all workspaces.
func (r *Registry) Scheduler() *scheduler.Scheduler {
	return r.deps.scheduler
}

// Attach loads a workspace and starts its reminders. Attaching an attached
// workspace returns the existing manager, moved to channelID when it differs.
func (r *Registry) Attach(ctx context.Context, workspaceID, channelID string) (*TaskManager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[workspaceID]; ok {
		if channelID != "" && channelID != m.ChannelID() {
			record, err := r.findRecord(m)
			if err != nil {
				return nil, err
			}
			record.NotificationChannelID = channelID
			if err := r.workspaces.Save(record); err != nil {
				return nil, fmt.Errorf("failed to save workspace: %w", err)
			}
			m.setChannel(channelID)
		}
		return m, nil
	}

	// A failed read starts the workspace without prior state but leaves the
	// stored record alone.
	persist := true
	record, err := r.workspaces.Find(workspaceID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to load workspace %s, starting without prior state: %v", workspaceID, err)
			persist = false
		}
		record = &models.Workspace{ID: workspaceID}
	}
	if channelID != "" {
		record.NotificationChannelID = channelID
	}
	if persist {
		if err := r.workspaces.Save(record); err != nil {
			return nil, fmt.Errorf("failed to save workspace: %w", err)
		}
	}

	tasks, err := r.deps.repo.Load(workspaceID)
	if err != nil {
		return nil, err
	}

	var board client.BoardClient
	if id := record.BoardIDValue(); id != "" && r.boards != nil {
		board = r.boards(id)
	}

	m := newTaskManager(r.deps, workspaceID, record.NotificationChannelID, r.surfaces.For(workspaceID), tasks, board)
	m.StartNotifications()
	r.managers[workspaceID] = m

	log.Printf("Attached workspace %s with %d task(s)", workspaceID, len(tasks))
	return m, nil
}

// AttachAll attaches every stored workspace on its stored channel.
func (r *Registry) AttachAll(ctx context.Context) error {
	records, err := r.workspaces.List()
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}
	for _, ws := range records {
		if _, err := r.Attach(ctx, ws.ID, ws.NotificationChannelID); err != nil {
			return fmt.Errorf("failed to attach workspace %s: %w", ws.ID, err)
		}
	}
	return nil
}

// Detach cancels the workspace's reminders, drops its pending workflows and
// forgets it.
func (r *Registry) Detach(workspaceID string) error {
	r.mu.Lock()
	m, ok := r.managers[workspaceID]
	delete(r.managers, workspaceID)
	r.mu.Unlock()

	if !ok {
		return ErrWorkspaceNotAttached
	}
	m.close()
	if f, ok := r.surfaces.(interface{ Forget(string) }); ok {
		f.Forget(workspaceID)
	}
	log.Printf("Detached workspace %s", workspaceID)
	return nil
}

func (r *Registry) DetachAll() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.managers))
	for id := range r.managers {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		_ = r.Detach(id)
	}
}

func (r *Registry) Get(workspaceID string) (*TaskManager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.managers[workspaceID]
	if !ok {
		return nil, ErrWorkspaceNotAttached
	}
	return m, nil
}

// Execute dispatches a command to the workspace's manager.
func (r *Registry) Execute(ctx context.Context, workspaceID string, cmd Command) error {
	m, err := r.Get(workspaceID)
	if err != nil {
		return err
	}
	if cmd.name() == CmdAssignTrello {
		return r.assignBoard(ctx, m, cmd)
	}
	return m.Execute(ctx, cmd)
}

// Handle routes an interaction to the workspace's manager.
func (r *Registry) Handle(ctx context.Context, workspaceID string, in surface.Interaction) error {
	m, err := r.Get(workspaceID)
	if err != nil {
		return err
	}
	return m.Handle(ctx, in)
}

// assignBoard links the workspace to a board, or unlinks it with "none".
func (r *Registry) assignBoard(ctx context.Context, m *TaskManager, cmd Command) error {
	boardID, err := cmd.arg(0)
	if err != nil {
		return err
	}
	if strings.EqualFold(boardID, "none") {
		boardID = ""
	}
	if boardID != "" && r.boards == nil {
		return ErrBoardNotConfigured
	}

	record, err := r.findRecord(m)
	if err != nil {
		return err
	}
	record.BoardID = nil
	var board client.BoardClient
	if boardID != "" {
		record.BoardID = &boardID
		board = r.boards(boardID)
	}
	if err := r.workspaces.Save(record); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	m.SetBoard(board)

	msg := "Unlinked the board."
	if boardID != "" {
		msg = "Linked board " + boardID + "."
	}
	return m.post(ctx, cmd.ChannelID, msg)
}

// findRecord reads the stored record of an attached workspace. Only a missing
// record falls back to one built from the manager.
func (r *Registry) findRecord(m *TaskManager) (*models.Workspace, error) {
	record, err := r.workspaces.Find(m.WorkspaceID())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Workspace{ID: m.WorkspaceID(), NotificationChannelID: m.ChannelID()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}
	return record, nil
}
