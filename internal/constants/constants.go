package constants

// Session
const (
	SessionCookieName  = "taskbot_session"
	ContextKeyBridgeID = "bridge_id"
	ContextKeyManager  = "task_manager"
)

// Rendering limits imposed by the chat surface
const (
	MaxPageChars       = 2000
	ColumnWidth        = 40
	MaxSelectOptions   = 25
	MaxOptionLabelSize = 100
)

// Pagination for the JSON task listing
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	MinPasswordLength   = 8
	MaxAIGeneratedTasks = 20
)
