package models

// ChatRole identifies who wrote a chat message
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the assistant transcript.
// Complete is false while an assistant reply is still streaming.
type ChatMessage struct {
	Role     ChatRole `json:"role"`
	Content  string   `json:"content"`
	Complete bool     `json:"complete"`
}
