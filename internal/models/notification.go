package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidRate = errors.New("rate must be a positive integer")
	ErrUnknownUnit = errors.New("unknown time unit")
)

type TimeUnit string

const (
	UnitSecond TimeUnit = "SECOND"
	UnitMinute TimeUnit = "MINUTE"
	UnitHour   TimeUnit = "HOUR"
	UnitDay    TimeUnit = "DAY"
)

var unitSeconds = map[TimeUnit]int64{
	UnitSecond: 1,
	UnitMinute: 60,
	UnitHour:   60 * 60,
	UnitDay:    60 * 60 * 24,
}

// ParseTimeUnit maps user input such as "minutes" or "Hour" to a TimeUnit.
// Matching is case-insensitive and a single trailing "s" is ignored.
func ParseTimeUnit(s string) (TimeUnit, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	u = strings.TrimSuffix(u, "S")
	unit := TimeUnit(u)
	if _, ok := unitSeconds[unit]; !ok {
		return "", ErrUnknownUnit
	}
	return unit, nil
}

// Seconds is the unit's multiplier to seconds, 0 for unknown units.
func (u TimeUnit) Seconds() int64 {
	return unitSeconds[u]
}

// Notification is a recurring reminder attached to one task.
// AnchorStart is reserved and currently unused by the scheduler.
type Notification struct {
	TaskID      string     `gorm:"type:varchar(36);primarykey" json:"task_id"`
	Rate        int        `gorm:"not null" json:"rate"`
	Unit        TimeUnit   `gorm:"type:varchar(10);not null" json:"unit"`
	AnchorStart *time.Time `json:"anchor_start,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewNotification(taskID string, rate int, unit TimeUnit) (*Notification, error) {
	if rate <= 0 {
		return nil, ErrInvalidRate
	}
	if unit.Seconds() == 0 {
		return nil, ErrUnknownUnit
	}
	return &Notification{TaskID: taskID, Rate: rate, Unit: unit}, nil
}

// Interval is rate × unit.
func (n Notification) Interval() time.Duration {
	return time.Duration(int64(n.Rate)*n.Unit.Seconds()) * time.Second
}
