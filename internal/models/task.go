package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidDate   = errors.New("invalid date")
)

// DateLayout is the user-facing date format (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// dateInputLayout also accepts single-digit days and months.
const dateInputLayout = "2/1/2006"

// DateError reports a date string that is not in dd/mm/yyyy form.
// It satisfies errors.Is(err, ErrInvalidDate).
type DateError struct {
	Field string
	Value string
}

func (e *DateError) Error() string {
	return "invalid " + e.Field + " " + `"` + e.Value + `"` + ": expected dd/mm/yyyy"
}

func (e *DateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// Task is a tracked unit of work owned by exactly one workspace.
// Position is the ordinal inside the workspace collection and is only
// meaningful for persisted ordering; ID is the durable identity.
type Task struct {
	ID          string     `gorm:"type:varchar(36);primarykey" json:"id"`
	WorkspaceID string     `gorm:"type:varchar(64);not null;index" json:"workspace_id"`
	Position    int        `gorm:"not null" json:"position"`
	ExternalID  *string    `gorm:"type:varchar(64);index" json:"external_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Done        bool       `gorm:"not null" json:"done"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Assignees    []Assignee    `gorm:"foreignKey:TaskID" json:"assignees"`
	Notification *Notification `gorm:"foreignKey:TaskID" json:"notification,omitempty"`
}

// NewTask returns a task with the defaults a fresh task carries:
// not done, starting today, no end date.
func NewTask(id, workspaceID string, now time.Time) *Task {
	return &Task{
		ID:          id,
		WorkspaceID: workspaceID,
		StartDate:   Day(now),
	}
}

// TaskUpdate is a single field assignment understood by Task.Apply.
// The set of implementations is closed: SetTitle, SetDescription, SetDone,
// SetStartDate, SetEndDate and SetExternalID.
type TaskUpdate interface {
	apply(t *Task, now time.Time) error
}

type SetTitle string

func (u SetTitle) apply(t *Task, _ time.Time) error {
	title := strings.TrimSpace(string(u))
	if title == "" {
		return ErrTitleRequired
	}
	t.Title = title
	return nil
}

type SetDescription string

func (u SetDescription) apply(t *Task, _ time.Time) error {
	t.Description = strings.TrimSpace(string(u))
	return nil
}

type SetDone bool

func (u SetDone) apply(t *Task, _ time.Time) error {
	t.Done = bool(u)
	return nil
}

// SetStartDate holds a raw dd/mm/yyyy string. Empty means today.
type SetStartDate string

func (u SetStartDate) apply(t *Task, now time.Time) error {
	raw := strings.TrimSpace(string(u))
	if raw == "" {
		t.StartDate = Day(now)
		return nil
	}
	d, err := parseDate("start date", raw)
	if err != nil {
		return err
	}
	t.StartDate = d
	return nil
}

// SetEndDate holds a raw dd/mm/yyyy string. Empty clears the end date.
type SetEndDate string

func (u SetEndDate) apply(t *Task, _ time.Time) error {
	raw := strings.TrimSpace(string(u))
	if raw == "" {
		t.EndDate = nil
		return nil
	}
	d, err := parseDate("end date", raw)
	if err != nil {
		return err
	}
	t.EndDate = &d
	return nil
}

// SetExternalID links the task to an external board card.
type SetExternalID string

func (u SetExternalID) apply(t *Task, _ time.Time) error {
	id := string(u)
	if id == "" {
		t.ExternalID = nil
		return nil
	}
	t.ExternalID = &id
	return nil
}

// Apply runs all updates in order. Either every update succeeds or the task
// is left unchanged and the first error is returned.
func (t *Task) Apply(now time.Time, updates ...TaskUpdate) error {
	next := *t
	for _, u := range updates {
		if err := u.apply(&next, now); err != nil {
			return err
		}
	}
	*t = next
	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.ExternalID != nil {
		id := *t.ExternalID
		c.ExternalID = &id
	}
	if t.EndDate != nil {
		d := *t.EndDate
		c.EndDate = &d
	}
	if t.Assignees != nil {
		c.Assignees = make([]Assignee, len(t.Assignees))
		copy(c.Assignees, t.Assignees)
	}
	if t.Notification != nil {
		n := *t.Notification
		c.Notification = &n
	}
	return &c
}

// ExternalIDValue returns the external identifier or "" when unlinked.
func (t *Task) ExternalIDValue() string {
	if t.ExternalID == nil {
		return ""
	}
	return *t.ExternalID
}

// HasAssignee reports whether the reference is already on the task.
func (t *Task) HasAssignee(a Assignee) bool {
	for _, existing := range t.Assignees {
		if existing.Same(a) {
			return true
		}
	}
	return false
}

// AddAssignees appends the references not yet present, keeping order.
func (t *Task) AddAssignees(assignees ...Assignee) {
	for _, a := range assignees {
		if t.HasAssignee(a) {
			continue
		}
		t.Assignees = append(t.Assignees, Assignee{TaskID: t.ID, Kind: a.Kind, Ref: a.Ref})
	}
}

// RemoveAssignees drops the given references. Absent ones are ignored.
func (t *Task) RemoveAssignees(assignees ...Assignee) {
	kept := t.Assignees[:0]
	for _, existing := range t.Assignees {
		drop := false
		for _, a := range assignees {
			if existing.Same(a) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, existing)
		}
	}
	t.Assignees = kept
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a dd/mm/yyyy string.
func ParseDate(raw string) (time.Time, error) {
	return parseDate("date", strings.TrimSpace(raw))
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(dateInputLayout, raw)
	if err != nil {
		return time.Time{}, &DateError{Field: field, Value: raw}
	}
	return d, nil
}

// FormatDate renders a date as dd/mm/yyyy, or "" for nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}
