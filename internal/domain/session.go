package domain

import "time"

// Turn roles. The provider protocol distinguishes the user, the model, and
// tool results fed back to the model.
const (
	RoleUser  = "user"
	RoleModel = "model"
	RoleTool  = "tool"
)

// SessionKey uniquely identifies a conversation session for one front end.
type SessionKey struct {
	Surface  string `json:"surface"` // "cli", "gateway", "mcp"
	ClientID string `json:"clientId,omitempty"`
	ChatID   string `json:"chatId"`
}

// String returns a canonical string form of the session key.
func (k SessionKey) String() string {
	s := k.Surface + ":" + k.ChatID
	if k.ClientID != "" {
		s += ":" + k.ClientID
	}
	return s
}

// Session tracks one conversation between a user and the assistant.
// Turns are append-only; a turn is never mutated once recorded.
type Session struct {
	ID        string    `json:"id"`
	Key       SessionKey `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Turns     []Turn    `json:"turns,omitempty"`
}

// Turn is a single entry in a session's conversation sequence.
type Turn struct {
	Role      string       `json:"role"` // RoleUser, RoleModel, RoleTool
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	ToolName  string       `json:"toolName,omitempty"` // set on RoleTool turns
	ToolArgs  string       `json:"toolArgs,omitempty"` // JSON, as delivered to the handler
	IsError   bool         `json:"isError,omitempty"`  // RoleTool turn carries a captured failure
	Files     []Attachment `json:"files,omitempty"`
}
