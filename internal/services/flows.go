package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/taskbot/internal/models"
	"github.com/yukikurage/taskbot/internal/render"
	"github.com/yukikurage/taskbot/internal/surface"
)

const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldStartDate   = "start_date"
	fieldEndDate     = "end_date"
)

const noTasksNotice = "There are no matching tasks."

var cancelButton = surface.Button{Action: surface.ActionCancel, Label: "Cancel"}

type createContext struct {
	assignees []models.Assignee
}

type formContext struct {
	assignees []models.Assignee
	// taskID is empty when the form creates a new task.
	taskID string
}

type deleteContext struct {
	ids []string
}

type statusContext struct {
	done bool
}

type membershipContext struct {
	assignees []models.Assignee
	remove    bool
}

type notifyContext struct {
	rate int
	unit models.TimeUnit
}

type dateContext struct {
	update models.TaskUpdate
}

type pageContext struct {
	paginator *render.Paginator
}

// OpenTaskMenu starts the create / edit / delete workflow.
func (m *TaskManager) OpenTaskMenu(ctx context.Context, channelID string, assignees []models.Assignee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := createContext{assignees: assignees}
	return m.prompt(ctx, channelID, surface.Prompt{
		Kind:  surface.KindMenu,
		Title: "What do you want to do?",
		Buttons: []surface.Button{
			{Action: surface.ActionCreate, Label: "Create"},
			{Action: surface.ActionEdit, Label: "Edit"},
			{Action: surface.ActionDelete, Label: "Delete"},
			cancelButton,
		},
	}, c.menuStep(m))
}

func (c createContext) menuStep(m *TaskManager) step {
	return func(ctx context.Context, in surface.Interaction) error {
		if err := expect(in, surface.ActionCreate, surface.ActionEdit, surface.ActionDelete); err != nil {
			return err
		}
		channelID := m.pending[in.MessageID].channelID
		if err := m.advance(ctx, channelID, in.MessageID); err != nil {
			return err
		}

		switch in.Action {
		case surface.ActionCreate:
			return m.openForm(ctx, channelID, formContext{assignees: c.assignees}, nil)
		case surface.ActionEdit:
			return m.openSelector(ctx, channelID, "Select the task to edit", m.tasks, false,
				func(ctx context.Context, ids []string) error {
					if len(ids) == 0 {
						return nil
					}
					return m.openForm(ctx, channelID, formContext{taskID: ids[0]}, m.find(ids[0]))
				})
		default:
			return m.openSelector(ctx, channelID, "Select the tasks to delete", m.tasks, true,
				func(ctx context.Context, ids []string) error {
					return m.confirmDelete(ctx, channelID, ids)
				})
		}
	}
}

func (m *TaskManager) openForm(ctx context.Context, channelID string, c formContext, existing *models.Task) error {
	title := "New task"
	fields := []surface.FormField{
		{ID: fieldTitle, Label: "Title", Required: true},
		{ID: fieldDescription, Label: "Description", Paragraph: true},
		{ID: fieldStartDate, Label: "Start date", Placeholder: "dd/mm/yyyy"},
		{ID: fieldEndDate, Label: "End date", Placeholder: "dd/mm/yyyy"},
	}
	if existing != nil {
		title = "Edit task"
		fields[0].Default = existing.Title
		fields[1].Default = existing.Description
		fields[2].Default = models.FormatDate(&existing.StartDate)
		fields[3].Default = models.FormatDate(existing.EndDate)
	}

	return m.prompt(ctx, channelID, surface.Prompt{
		Kind:    surface.KindForm,
		Title:   title,
		Fields:  fields,
		Buttons: []surface.Button{{Action: surface.ActionSubmit, Label: "Submit"}, cancelButton},
	}, c.submitStep(m))
}

// submitStep validates before anything is persisted, so a rejected form stays
// pending and can be submitted again.
func (c formContext) submitStep(m *TaskManager) step {
	return func(ctx context.Context, in surface.Interaction) error {
		if err := expect(in, surface.ActionSubmit); err != nil {
			return err
		}
		updates := []models.TaskUpdate{
			models.SetTitle(in.Fields[fieldTitle]),
			models.SetDescription(in.Fields[fieldDescription]),
			models.SetStartDate(in.Fields[fieldStartDate]),
			models.SetEndDate(in.Fields[fieldEndDate]),
		}
		now := m.now()

		err := m.commit(func(tasks []*models.Task) ([]*models.Task, error) {
			if c.taskID == "" {
				t := models.NewTask(m.newID(), m.workspaceID, now)
				if err := t.Apply(now, updates...); err != nil {
					return nil, err
				}
				t.AddAssignees(c.assignees...)
				return append(tasks, t), nil
			}
			i := indexOf(tasks, c.taskID)
			if i < 0 {
				return tasks, nil
			}
			if err := tasks[i].Apply(now, updates...); err != nil {
				return nil, err
			}
			return tasks, nil
		})
		if err != nil {
			return err
		}
		return m.advance(ctx, m.pending[in.MessageID].channelID, in.MessageID)
	}
}

func (m *TaskManager) confirmDelete(ctx context.Context, channelID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	selected := make([]*models.Task, 0, len(ids))
	for _, id := range ids {
		selected = append(selected, m.find(id))
	}

	p := surface.Prompt{
		Kind:    surface.KindConfirm,
		Title:   "DELETE TASK?",
		Content: selected[0].Title,
		Buttons: []surface.Button{{Action: surface.ActionConfirm, Label: "Delete"}, cancelButton},
	}
	if len(selected) > 1 {
		p.Title = "DELETE TASKS?"
		p.Content = titles(selected)
	}
	c := deleteContext{ids: ids}
	return m.prompt(ctx, channelID, p, c.confirmStep(m))
}

func (c deleteContext) confirmStep(m *TaskManager) step {
	return func(ctx context.Context, in surface.Interaction) error {
		if err := expect(in, surface.ActionConfirm); err != nil {
			return err
		}
		drop := make(map[string]bool, len(c.ids))
		for _, id := range c.ids {
			drop[id] = true
		}
		err := m.commit(func(tasks []*models.Task) ([]*models.Task, error) {
			kept := tasks[:0]
			for _, t := range tasks {
				if !drop[t.ID] {
					kept = append(kept, t)
				}
			}
			return kept, nil
		})
		if err != nil {
			return err
		}
		for _, id := range c.ids {
			m.scheduler.Cancel(id)
		}
		return m.advance(ctx, m.pending[in.MessageID].channelID, in.MessageID)
	}
}

// openSelector offers candidates as options valued by task ID. With no
// candidates a notice is posted and no step is registered.
func (m *TaskManager) openSelector(ctx context.Context, channelID, title string, candidates []*models.Task, multi bool, onSelect func(ctx context.Context, ids []string) error) error {
	if len(candidates) == 0 {
		return m.post(ctx, channelID, noTasksNotice)
	}
	if len(candidates) > m.maxOptions {
		candidates = candidates[:m.maxOptions]
	}

	options := make([]surface.Option, len(candidates))
	for i, t := range candidates {
		options[i] = surface.Option{Label: truncateLabel(t.Title), Value: t.ID}
	}
	maxValues := 1
	if multi {
		maxValues = len(options)
	}

	return m.prompt(ctx, channelID, surface.Prompt{
		Kind:      surface.KindSelect,
		Title:     title,
		Options:   options,
		MaxValues: maxValues,
		Buttons:   []surface.Button{cancelButton},
	}, func(ctx context.Context, in surface.Interaction) error {
		if err := expect(in, surface.ActionSelect); err != nil {
			return err
		}
		if err := m.advance(ctx, channelID, in.MessageID); err != nil {
			return err
		}
		ids := m.resolve(in.Values)
		if !multi && len(ids) > 1 {
			ids = ids[:1]
		}
		return onSelect(ctx, ids)
	})
}

// OpenStatusSelector offers the tasks whose done flag differs from done.
func (m *TaskManager) OpenStatusSelector(ctx context.Context, channelID string, done bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := statusContext{done: done}
	var candidates []*models.Task
	for _, t := range m.tasks {
		if t.Done != done {
			candidates = append(candidates, t)
		}
	}
	title := "Select the tasks to mark as not done"
	if done {
		title = "Select the tasks to mark as done"
	}
	return m.openSelector(ctx, channelID, title, candidates, true, c.apply(m))
}

func (c statusContext) apply(m *TaskManager) func(context.Context, []string) error {
	return func(_ context.Context, ids []string) error {
		now := m.now()
		return m.updateEach(ids, func(t *models.Task) error {
			return t.Apply(now, models.SetDone(c.done))
		})
	}
}

// OpenMembershipSelector adds or removes assignees on the selected tasks.
func (m *TaskManager) OpenMembershipSelector(ctx context.Context, channelID string, assignees []models.Assignee, remove bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := membershipContext{assignees: assignees, remove: remove}
	title := "Select the tasks to assign"
	if remove {
		title = "Select the tasks to unassign"
	}
	return m.openSelector(ctx, channelID, title, m.tasks, true, c.apply(m))
}

func (c membershipContext) apply(m *TaskManager) func(context.Context, []string) error {
	return func(_ context.Context, ids []string) error {
		return m.updateEach(ids, func(t *models.Task) error {
			if c.remove {
				t.RemoveAssignees(c.assignees...)
			} else {
				t.AddAssignees(c.assignees...)
			}
			return nil
		})
	}
}

// OpenNotifySelector attaches a recurring reminder of rate × unit to the
// selected tasks, replacing any reminder they already had.
func (m *TaskManager) OpenNotifySelector(ctx context.Context, channelID string, rate int, unit models.TimeUnit) error {
	if _, err := models.NewNotification("", rate, unit); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := notifyContext{rate: rate, unit: unit}
	title := fmt.Sprintf("Select the tasks to remind every %d %s", rate, strings.ToLower(string(unit)))
	return m.openSelector(ctx, channelID, title, m.tasks, true, c.apply(m))
}

func (c notifyContext) apply(m *TaskManager) func(context.Context, []string) error {
	return func(_ context.Context, ids []string) error {
		now := m.now()
		err := m.updateEach(ids, func(t *models.Task) error {
			n, err := models.NewNotification(t.ID, c.rate, c.unit)
			if err != nil {
				return err
			}
			n.CreatedAt = now
			t.Notification = n
			return nil
		})
		if err != nil {
			return err
		}
		for _, id := range ids {
			if t := m.find(id); t != nil && t.Notification != nil {
				m.scheduler.Start(id, t.Notification.Interval(), m)
			}
		}
		return nil
	}
}

// OpenUnnotifySelector offers the tasks that currently carry a reminder.
func (m *TaskManager) OpenUnnotifySelector(ctx context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var candidates []*models.Task
	for _, t := range m.tasks {
		if t.Notification != nil {
			candidates = append(candidates, t)
		}
	}
	return m.openSelector(ctx, channelID, "Select the tasks to stop reminding", candidates, true,
		func(_ context.Context, ids []string) error {
			err := m.updateEach(ids, func(t *models.Task) error {
				t.Notification = nil
				return nil
			})
			if err != nil {
				return err
			}
			for _, id := range ids {
				m.scheduler.Cancel(id)
			}
			return nil
		})
}

// OpenDateSelector sets the start or end date of the selected tasks. The raw
// date is checked before anything is sent; "none" clears an end date.
func (m *TaskManager) OpenDateSelector(ctx context.Context, channelID string, start bool, raw string) error {
	var c dateContext
	title := "Select the tasks to set the end date " + raw
	switch {
	case start:
		c.update = models.SetStartDate(raw)
		title = "Select the tasks to set the start date " + raw
	case strings.EqualFold(strings.TrimSpace(raw), "none"):
		c.update = models.SetEndDate("")
		title = "Select the tasks to clear the end date"
	default:
		c.update = models.SetEndDate(raw)
	}

	probe := models.Task{}
	if err := probe.Apply(m.now(), c.update); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openSelector(ctx, channelID, title, m.tasks, true, c.apply(m))
}

func (c dateContext) apply(m *TaskManager) func(context.Context, []string) error {
	return func(_ context.Context, ids []string) error {
		now := m.now()
		return m.updateEach(ids, func(t *models.Task) error {
			return t.Apply(now, c.update)
		})
	}
}

// ListTasks renders the collection and shows its first page.
func (m *TaskManager) ListTasks(ctx context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := &pageContext{paginator: render.NewPaginator(m.renderer.Pages(m.tasks))}
	return m.sendPage(ctx, channelID, c)
}

func (m *TaskManager) sendPage(ctx context.Context, channelID string, c *pageContext) error {
	p := c.paginator
	return m.prompt(ctx, channelID, surface.Prompt{
		Kind:    surface.KindPage,
		Title:   fmt.Sprintf("Page %d/%d", p.Index()+1, p.Len()),
		Content: p.Current(),
		Buttons: []surface.Button{
			{Action: surface.ActionPrevious, Label: "<", Disabled: !p.HasPrevious()},
			{Action: surface.ActionNext, Label: ">", Disabled: !p.HasNext()},
		},
	}, c.navigateStep(m))
}

func (c *pageContext) navigateStep(m *TaskManager) step {
	return func(ctx context.Context, in surface.Interaction) error {
		if err := expect(in, surface.ActionPrevious, surface.ActionNext); err != nil {
			return err
		}
		var moved bool
		if in.Action == surface.ActionPrevious {
			moved = c.paginator.Previous()
		} else {
			moved = c.paginator.Next()
		}
		if !moved {
			return nil
		}
		channelID := m.pending[in.MessageID].channelID
		if err := m.advance(ctx, channelID, in.MessageID); err != nil {
			return err
		}
		return m.sendPage(ctx, channelID, c)
	}
}
