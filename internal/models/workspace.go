package models

import "time"

// Workspace is the durable per-community record: which external board it is
// linked to (nil when unlinked) and where reminders are delivered.
type Workspace struct {
	ID                    string    `gorm:"type:varchar(64);primarykey" json:"id"`
	BoardID               *string   `gorm:"type:varchar(64)" json:"board_id"`
	NotificationChannelID string    `gorm:"type:varchar(64)" json:"notification_channel_id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (w *Workspace) BoardIDValue() string {
	if w == nil || w.BoardID == nil {
		return ""
	}
	return *w.BoardID
}
