package services

import (
	"slices"
	"strings"
	"sync"

	"github.com/kendall-kelly/luxetrack-api/models"
)

// ChatGreeting opens every transcript
const ChatGreeting = "Hello! I am your LuxeTrack AI assistant. How can I help you manage your luxury business today?"

// Transcript is the running chat conversation. Safe for concurrent use.
type Transcript struct {
	mu       sync.Mutex
	messages []models.ChatMessage
}

// NewTranscript starts a transcript with the assistant greeting
func NewTranscript() *Transcript {
	return &Transcript{
		messages: []models.ChatMessage{
			{Role: models.RoleAssistant, Content: ChatGreeting, Complete: true},
		},
	}
}

// Messages returns a copy of the conversation
func (t *Transcript) Messages() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.messages)
}

// AddUser records a user message
func (t *Transcript) AddUser(content string) models.ChatMessage {
	msg := models.ChatMessage{Role: models.RoleUser, Content: content, Complete: true}
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
	return msg
}

// BeginReply opens an empty, in-progress assistant entry
func (t *Transcript) BeginReply() *Reply {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, models.ChatMessage{Role: models.RoleAssistant})
	return &Reply{transcript: t, index: len(t.messages) - 1}
}

// Reply accumulates one streamed assistant answer into a single transcript entry
type Reply struct {
	transcript *Transcript
	index      int
	content    strings.Builder
	done       bool
}

// Append adds a chunk and returns the updated entry
func (r *Reply) Append(chunk string) models.ChatMessage {
	r.content.WriteString(chunk)
	return r.set(r.content.String(), false)
}

// Finish marks the entry complete with the accumulated text
func (r *Reply) Finish() models.ChatMessage {
	return r.set(r.content.String(), true)
}

// Fail replaces whatever arrived with content and marks the entry complete
func (r *Reply) Fail(content string) models.ChatMessage {
	return r.set(content, true)
}

// Message returns the entry as it currently stands
func (r *Reply) Message() models.ChatMessage {
	r.transcript.mu.Lock()
	defer r.transcript.mu.Unlock()
	return r.transcript.messages[r.index]
}

func (r *Reply) set(content string, complete bool) models.ChatMessage {
	r.transcript.mu.Lock()
	defer r.transcript.mu.Unlock()

	if r.done {
		return r.transcript.messages[r.index]
	}
	r.done = complete
	r.transcript.messages[r.index].Content = content
	r.transcript.messages[r.index].Complete = complete
	return r.transcript.messages[r.index]
}
