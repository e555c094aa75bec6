package models

type AssigneeKind string

const (
	AssigneeUser AssigneeKind = "user"
	AssigneeRole AssigneeKind = "role"
)

// Assignee is a tagged reference to whoever a task is assigned to.
// Ref holds the user ID for users and the role name for roles.
type Assignee struct {
	TaskID   string       `gorm:"type:varchar(36);primarykey" json:"-"`
	Kind     AssigneeKind `gorm:"type:varchar(10);primarykey" json:"kind"`
	Ref      string       `gorm:"type:varchar(100);primarykey" json:"ref"`
	Position int          `gorm:"not null" json:"-"`
}

func (Assignee) TableName() string {
	return "task_assignees"
}

func UserRef(id string) Assignee {
	return Assignee{Kind: AssigneeUser, Ref: id}
}

func RoleRef(name string) Assignee {
	return Assignee{Kind: AssigneeRole, Ref: name}
}

// Same compares the tag and the raw identifier only.
func (a Assignee) Same(other Assignee) bool {
	return a.Kind == other.Kind && a.Ref == other.Ref
}

// Mention renders the reference the way the chat surface displays it.
func (a Assignee) Mention() string {
	if a.Kind == AssigneeRole {
		return a.Ref
	}
	return "<@" + a.Ref + ">"
}

// Valid reports whether the tag is known and the identifier non-empty.
func (a Assignee) Valid() bool {
	return (a.Kind == AssigneeUser || a.Kind == AssigneeRole) && a.Ref != ""
}
