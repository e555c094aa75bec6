package dto

import (
	"github.com/yukikurage/taskbot/internal/models"
	"github.com/yukikurage/taskbot/internal/services"
	"github.com/yukikurage/taskbot/internal/surface"
)

// LoginRequest carries the bridge credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AttachRequest names the channel reminders are delivered to
type AttachRequest struct {
	NotificationChannelID string `json:"notification_channel_id" binding:"required"`
}

// WorkspaceDTO represents an attached workspace
type WorkspaceDTO struct {
	ID                    string `json:"id"`
	NotificationChannelID string `json:"notification_channel_id"`
	TaskCount             int    `json:"task_count"`
}

// CommandRequest is one chat command forwarded by the bridge
type CommandRequest struct {
	Name      string        `json:"name" binding:"required"`
	Args      []string      `json:"args"`
	ChannelID string        `json:"channel_id" binding:"required"`
	UserID    string        `json:"user_id" binding:"required"`
	Mentions  []AssigneeDTO `json:"mentions"`
}

// ToCommand converts the request into a service command
func (r CommandRequest) ToCommand() services.Command {
	mentions := make([]models.Assignee, 0, len(r.Mentions))
	for _, m := range r.Mentions {
		mentions = append(mentions, models.Assignee{Kind: m.Kind, Ref: m.Ref})
	}
	return services.Command{
		Name:      r.Name,
		Args:      r.Args,
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		Mentions:  mentions,
	}
}

// InteractionRequest is one control callback forwarded by the bridge
type InteractionRequest struct {
	MessageID string            `json:"message_id" binding:"required"`
	ChannelID string            `json:"channel_id" binding:"required"`
	UserID    string            `json:"user_id"`
	Action    surface.Action    `json:"action" binding:"required"`
	Values    []string          `json:"values"`
	Fields    map[string]string `json:"fields"`
}

// ToInteraction converts the request into a surface interaction
func (r InteractionRequest) ToInteraction() surface.Interaction {
	return surface.Interaction{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		Action:    r.Action,
		Values:    r.Values,
		Fields:    r.Fields,
	}
}

// EventsResponse is the drained outbox of a workspace
type EventsResponse struct {
	Events []surface.Event `json:"events"`
}
