package domain

import "time"

// Role values for Message.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation status values.
const (
	ConversationActive   = "active"
	ConversationInactive = "inactive"
)

// ToolInvocation status values.
const (
	InvocationPending    = "pending"
	InvocationInProgress = "in_progress"
	InvocationCompleted  = "completed"
	InvocationFailed     = "failed"
)

// Conversation binds a local chat session to a remote thread and an assistant.
// ThreadRef stays empty until the first message forces thread creation.
type Conversation struct {
	ID             string
	ThreadRef      string
	AssistantRef   string
	ParticipantRef string
	Status         string
	CreatedAt      time.Time
}

// Message is a single turn in a conversation. ExternalRef is empty for rows
// not yet confirmed by the remote service; once attached it is never changed.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	ExternalRef    string
	Seq            int
	CreatedAt      time.Time
}

// ToolInvocation records one tool call executed during a run round. MessageID
// points at the synthetic system message announcing the call. CallRef is the
// run's tool-call identifier and is unique across invocations.
type ToolInvocation struct {
	ID        string
	MessageID string
	ToolName  string
	Input     string
	Output    string
	Status    string
	Error     string
	CallRef   string
	CreatedAt time.Time
}

// Context carries the ambient conversation identity handed to tool handlers.
type Context struct {
	ConversationID string
	ParticipantRef string
}
