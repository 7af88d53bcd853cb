package services

import (
	"context"
	"iter"
	"sync"
)

// MockGenerativeModel is a scripted GenerativeModel for testing
type MockGenerativeModel struct {
	mu sync.Mutex

	// ChatChunks are yielded in order; ChatErr, if set, is yielded after them
	ChatChunks []string
	ChatErr    error

	// VisionText and VisionErr are returned by AnalyzeImage
	VisionText string
	VisionErr  error

	// Block, if set, is waited on before the first chunk (or until ctx ends)
	Block chan struct{}

	messages   []string
	images     [][]byte
	mimeTypes  []string
	lastPrompt string
}

// NewMockGenerativeModel creates a mock that answers chats with chunks
func NewMockGenerativeModel(chunks ...string) *MockGenerativeModel {
	return &MockGenerativeModel{ChatChunks: chunks}
}

// ChatStream yields the scripted chunks
func (m *MockGenerativeModel) ChatStream(ctx context.Context, message string) iter.Seq2[string, error] {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	chunks := append([]string(nil), m.ChatChunks...)
	chatErr := m.ChatErr
	block := m.Block
	m.mu.Unlock()

	return func(yield func(string, error) bool) {
		if block != nil {
			select {
			case <-block:
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			}
		}
		for _, chunk := range chunks {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
		if chatErr != nil {
			yield("", chatErr)
		}
	}
}

// AnalyzeImage records the call and returns the scripted answer
func (m *MockGenerativeModel) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, image)
	m.mimeTypes = append(m.mimeTypes, mimeType)
	m.lastPrompt = prompt
	return m.VisionText, m.VisionErr
}

// Messages returns every chat message received
func (m *MockGenerativeModel) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// Images returns every image received
func (m *MockGenerativeModel) Images() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.images...)
}

// MimeTypes returns the mime type of every image received
func (m *MockGenerativeModel) MimeTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.mimeTypes...)
}

// LastPrompt returns the prompt of the most recent image analysis
func (m *MockGenerativeModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}
