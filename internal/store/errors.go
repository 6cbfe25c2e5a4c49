package store

import "github.com/nhle/todolist/internal/persist"

// User-facing messages published to the error channel.
const (
	MsgEmptyTodoText   = "Todo text cannot be empty"
	MsgEmptyTagName    = "Tag name cannot be empty"
	MsgInvalidPriority = "Invalid todo priority"
	MsgInvalidColor    = "Tag color must be a hex color"

	MsgLoadTodos          = "Failed to load todos from storage"
	MsgLoadTags           = "Failed to load tags from storage"
	MsgSaveTodos          = "Failed to save todos to storage"
	MsgSaveTags           = "Failed to save tags to storage"
	MsgStorageUnavailable = "Storage unavailable; changes will not be saved"
)

// ValidationError is returned when an operation rejects its input. The
// collections are left unchanged and the message is also shown to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func saveMessage(kind persist.Kind) string {
	if kind == persist.KindTags {
		return MsgSaveTags
	}
	return MsgSaveTodos
}
