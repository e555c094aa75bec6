package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yukikurage/taskbot/internal/models"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
)

const (
	CmdTask          = "task"
	CmdListTasks     = "list_tasks"
	CmdSetDone       = "set_done"
	CmdSetUndone     = "set_undone"
	CmdNotifyEvery   = "notify_every"
	CmdUnnotify      = "unnotify"
	CmdAssign        = "assign"
	CmdUnassign      = "unassign"
	CmdSetStart      = "set_start"
	CmdSetEnd        = "set_end"
	CmdAssignTrello  = "assign_trello"
	CmdSyncLocal     = "sync_local"
	CmdSyncTrello    = "sync_trello"
	CmdGenerateTasks = "generate_tasks"
)

// Command is one chat command as received from the platform.
type Command struct {
	Name      string
	Args      []string
	ChannelID string
	UserID    string
	Mentions  []models.Assignee
}

func (c Command) name() string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Name), "/"))
}

func (c Command) arg(i int) (string, error) {
	if i >= len(c.Args) || strings.TrimSpace(c.Args[i]) == "" {
		return "", fmt.Errorf("%w: %s needs %d argument(s)", ErrMissingArgument, c.name(), i+1)
	}
	return strings.TrimSpace(c.Args[i]), nil
}

// assignees defaults to the caller when nobody is mentioned.
func (c Command) assignees() []models.Assignee {
	var out []models.Assignee
	for _, a := range c.Mentions {
		if a.Valid() {
			out = append(out, models.Assignee{Kind: a.Kind, Ref: a.Ref})
		}
	}
	if len(out) == 0 && c.UserID != "" {
		out = append(out, models.UserRef(c.UserID))
	}
	return out
}

// Execute runs a workspace-local command. Board binding lives in the
// Registry because it also rewrites the workspace record.
func (m *TaskManager) Execute(ctx context.Context, cmd Command) error {
	switch cmd.name() {
	case CmdTask:
		return m.OpenTaskMenu(ctx, cmd.ChannelID, cmd.assignees())
	case CmdListTasks:
		return m.ListTasks(ctx, cmd.ChannelID)
	case CmdSetDone:
		return m.OpenStatusSelector(ctx, cmd.ChannelID, true)
	case CmdSetUndone:
		return m.OpenStatusSelector(ctx, cmd.ChannelID, false)
	case CmdNotifyEvery:
		rate, unit, err := parseRate(cmd)
		if err != nil {
			return err
		}
		return m.OpenNotifySelector(ctx, cmd.ChannelID, rate, unit)
	case CmdUnnotify:
		return m.OpenUnnotifySelector(ctx, cmd.ChannelID)
	case CmdAssign:
		return m.OpenMembershipSelector(ctx, cmd.ChannelID, cmd.assignees(), false)
	case CmdUnassign:
		return m.OpenMembershipSelector(ctx, cmd.ChannelID, cmd.assignees(), true)
	case CmdSetStart, CmdSetEnd:
		raw, err := cmd.arg(0)
		if err != nil {
			return err
		}
		return m.OpenDateSelector(ctx, cmd.ChannelID, cmd.name() == CmdSetStart, raw)
	case CmdSyncLocal:
		_, err := m.SyncLocal(ctx, cmd.ChannelID)
		return err
	case CmdSyncTrello:
		_, err := m.SyncTrello(ctx, cmd.ChannelID)
		return err
	case CmdGenerateTasks:
		if _, err := cmd.arg(0); err != nil {
			return err
		}
		_, err := m.GenerateTasks(ctx, cmd.ChannelID, strings.Join(cmd.Args, " "), cmd.assignees())
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
}

func parseRate(cmd Command) (int, models.TimeUnit, error) {
	rawRate, err := cmd.arg(0)
	if err != nil {
		return 0, "", err
	}
	rawUnit, err := cmd.arg(1)
	if err != nil {
		return 0, "", err
	}
	rate, err := strconv.Atoi(rawRate)
	if err != nil || rate <= 0 {
		return 0, "", fmt.Errorf("%w: %q", models.ErrInvalidRate, rawRate)
	}
	unit, err := models.ParseTimeUnit(rawUnit)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", err, rawUnit)
	}
	return rate, unit, nil
}
