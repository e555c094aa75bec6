package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yukikurage/taskbot/internal/client"
	"github.com/yukikurage/taskbot/internal/constants"
	"github.com/yukikurage/taskbot/internal/models"
	"github.com/yukikurage/taskbot/internal/render"
	"github.com/yukikurage/taskbot/internal/repository"
	"github.com/yukikurage/taskbot/internal/scheduler"
	"github.com/yukikurage/taskbot/internal/surface"
)

var (
	ErrUnknownInteraction     = errors.New("no pending step for this message")
	ErrUnexpectedAction       = errors.New("action not expected at this step")
	ErrNoBoardLinked          = errors.New("no external board linked to this workspace")
	ErrBoardSync              = errors.New("external board request failed")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// step is one pending stage of a workflow, waiting on the surface message it
// is registered under.
type step func(ctx context.Context, in surface.Interaction) error

type pendingStep struct {
	channelID string
	run       step
}

// managerDeps are the collaborators shared by every TaskManager of a registry.
type managerDeps struct {
	repo       repository.TaskRepository
	scheduler  *scheduler.Scheduler
	ai         TaskGenerator
	renderer   render.Renderer
	maxOptions int
	now        func() time.Time
	newID      func() string
}

func (d *managerDeps) defaults() {
	if d.renderer.ColumnWidth == 0 {
		d.renderer = render.Default()
	}
	if d.maxOptions < 1 || d.maxOptions > constants.MaxSelectOptions {
		d.maxOptions = constants.MaxSelectOptions
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	if d.scheduler == nil {
		d.scheduler = scheduler.New()
	}
}

// TaskManager owns one workspace's task collection and drives every
// interactive workflow on it. Commands and interactions are serialized by mu;
// every mutation is persisted before it becomes visible.
type TaskManager struct {
	managerDeps

	workspaceID string
	surface     surface.Surface

	chMu      sync.RWMutex
	channelID string

	mu      sync.Mutex
	tasks   []*models.Task
	pending map[string]pendingStep
	board   client.BoardClient
}

func newTaskManager(deps managerDeps, workspaceID, channelID string, surf surface.Surface, tasks []*models.Task, board client.BoardClient) *TaskManager {
	deps.defaults()
	return &TaskManager{
		managerDeps: deps,
		workspaceID: workspaceID,
		channelID:   channelID,
		surface:     surf,
		tasks:       tasks,
		pending:     make(map[string]pendingStep),
		board:       board,
	}
}

func (m *TaskManager) WorkspaceID() string { return m.workspaceID }

// ChannelID is where reminders are delivered.
func (m *TaskManager) ChannelID() string {
	m.chMu.RLock()
	defer m.chMu.RUnlock()
	return m.channelID
}

func (m *TaskManager) setChannel(channelID string) {
	m.chMu.Lock()
	m.channelID = channelID
	m.chMu.Unlock()
}

// Tasks returns a deep copy of the current collection.
func (m *TaskManager) Tasks() []*models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTasks(m.tasks)
}

// Pending reports how many surface messages still wait for an answer.
func (m *TaskManager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *TaskManager) SetBoard(board client.BoardClient) {
	m.mu.Lock()
	m.board = board
	m.mu.Unlock()
}

func (m *TaskManager) boardClient() client.BoardClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board
}

// Handle routes an interaction to the step waiting on its message. A cancel
// action at any step removes the prompt and ends the workflow untouched.
func (m *TaskManager) Handle(ctx context.Context, in surface.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[in.MessageID]
	if !ok {
		return ErrUnknownInteraction
	}
	if in.Action == surface.ActionCancel {
		return m.advance(ctx, p.channelID, in.MessageID)
	}
	return p.run(ctx, in)
}

// Lookup implements scheduler.Target.
func (m *TaskManager) Lookup(taskID string) (models.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := indexOf(m.tasks, taskID); i >= 0 {
		return *m.tasks[i].Clone(), true
	}
	return models.Task{}, false
}

// Deliver implements scheduler.Target.
func (m *TaskManager) Deliver(ctx context.Context, task models.Task) error {
	return m.surface.Post(ctx, m.ChannelID(), render.Reminder(&task))
}

// StartNotifications starts a reminder loop for every task that carries a
// notification. Used once when the workspace is attached.
func (m *TaskManager) StartNotifications() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.Notification != nil {
			m.scheduler.Start(t.ID, t.Notification.Interval(), m)
		}
	}
}

// close cancels every reminder loop and forgets pending workflows.
func (m *TaskManager) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		m.scheduler.Cancel(t.ID)
	}
	m.pending = make(map[string]pendingStep)
}

// prompt sends p and registers next as the step waiting on it.
func (m *TaskManager) prompt(ctx context.Context, channelID string, p surface.Prompt, next step) error {
	messageID, err := m.surface.Send(ctx, channelID, p)
	if err != nil {
		return fmt.Errorf("failed to send prompt: %w", err)
	}
	m.pending[messageID] = pendingStep{channelID: channelID, run: next}
	return nil
}

// advance removes a finished step and its prompt.
func (m *TaskManager) advance(ctx context.Context, channelID, messageID string) error {
	delete(m.pending, messageID)
	if err := m.surface.Delete(ctx, channelID, messageID); err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	return nil
}

func (m *TaskManager) post(ctx context.Context, channelID, content string) error {
	if channelID == "" {
		channelID = m.ChannelID()
	}
	return m.surface.Post(ctx, channelID, content)
}

// commit applies mutate to a copy of the collection, persists the result and
// only then swaps it in. On error nothing changes.
func (m *TaskManager) commit(mutate func(tasks []*models.Task) ([]*models.Task, error)) error {
	next, err := mutate(cloneTasks(m.tasks))
	if err != nil {
		return err
	}
	if err := m.repo.Save(m.workspaceID, next); err != nil {
		return fmt.Errorf("failed to persist tasks: %w", err)
	}
	m.tasks = next
	return nil
}

// updateEach runs fn on every task named in ids and persists once.
// An empty selection is a no-op.
func (m *TaskManager) updateEach(ids []string, fn func(t *models.Task) error) error {
	if len(ids) == 0 {
		return nil
	}
	return m.commit(func(tasks []*models.Task) ([]*models.Task, error) {
		for _, id := range ids {
			if i := indexOf(tasks, id); i >= 0 {
				if err := fn(tasks[i]); err != nil {
					return nil, err
				}
			}
		}
		return tasks, nil
	})
}

// resolve keeps the selected values that still name a task, in order and
// without duplicates.
func (m *TaskManager) resolve(values []string) []string {
	seen := make(map[string]bool, len(values))
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] || indexOf(m.tasks, v) < 0 {
			continue
		}
		seen[v] = true
		ids = append(ids, v)
	}
	return ids
}

func (m *TaskManager) find(id string) *models.Task {
	if i := indexOf(m.tasks, id); i >= 0 {
		return m.tasks[i]
	}
	return nil
}

func expect(in surface.Interaction, actions ...surface.Action) error {
	for _, a := range actions {
		if in.Action == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnexpectedAction, in.Action)
}

func indexOf(tasks []*models.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func truncateLabel(s string) string {
	if utf8.RuneCountInString(s) <= constants.MaxOptionLabelSize {
		return s
	}
	return string([]rune(s)[:constants.MaxOptionLabelSize])
}

func titles(tasks []*models.Task) string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = "- " + t.Title
	}
	return strings.Join(names, "\n")
}
