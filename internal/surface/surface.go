// Package surface describes the host-rendered controls a workflow talks to
// and the callbacks it receives from them.
package surface

import "context"

type Kind string

const (
	KindMenu    Kind = "menu"
	KindSelect  Kind = "select"
	KindConfirm Kind = "confirm"
	KindForm    Kind = "form"
	KindPage    Kind = "page"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionCancel   Action = "cancel"
	ActionSelect   Action = "select"
	ActionConfirm  Action = "confirm"
	ActionSubmit   Action = "submit"
	ActionPrevious Action = "previous"
	ActionNext     Action = "next"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionEdit, ActionDelete, ActionCancel, ActionSelect,
		ActionConfirm, ActionSubmit, ActionPrevious, ActionNext:
		return true
	}
	return false
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Button struct {
	Action   Action `json:"action"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
}

type FormField struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Default     string `json:"default,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Paragraph   bool   `json:"paragraph,omitempty"`
}

// Prompt is one interactive message. Which fields matter depends on Kind:
// selectors use Options and MaxValues, forms use Fields, every kind may
// carry Buttons.
type Prompt struct {
	Kind      Kind        `json:"kind"`
	Title     string      `json:"title,omitempty"`
	Content   string      `json:"content,omitempty"`
	Options   []Option    `json:"options,omitempty"`
	MaxValues int         `json:"max_values,omitempty"`
	Buttons   []Button    `json:"buttons,omitempty"`
	Fields    []FormField `json:"fields,omitempty"`
}

// Interaction is a user's answer to a prompt identified by MessageID.
type Interaction struct {
	MessageID string            `json:"message_id"`
	ChannelID string            `json:"channel_id"`
	UserID    string            `json:"user_id"`
	Action    Action            `json:"action"`
	Values    []string          `json:"values,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Surface is the chat side as seen by a workflow.
type Surface interface {
	// Send shows a prompt and returns the ID interactions will refer to.
	Send(ctx context.Context, channelID string, prompt Prompt) (string, error)
	Delete(ctx context.Context, channelID, messageID string) error
	// Post sends plain, non-interactive content.
	Post(ctx context.Context, channelID, content string) error
}
