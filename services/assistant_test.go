package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kendall-kelly/luxetrack-api/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestAssistant(model GenerativeModel) (*Assistant, *observer.ObservedLogs, *Metrics) {
	core, logs := observer.New(zapcore.DebugLevel)
	metrics := NewMetrics()
	return NewAssistant(model, time.Second, zap.New(core), metrics), logs, metrics
}

func TestChatStreamsIntoOneEntry(t *testing.T) {
	model := NewMockGenerativeModel("Revenue ", "is up ", "12%.")
	assistant, _, metrics := newTestAssistant(model)

	var updates []string
	final := assistant.Chat(context.Background(), "How are sales?", func(msg models.ChatMessage) {
		assert.False(t, msg.Complete)
		updates = append(updates, msg.Content)
	})

	assert.Equal(t, []string{"Revenue ", "Revenue is up ", "Revenue is up 12%."}, updates)
	assert.Equal(t, models.ChatMessage{Role: models.RoleAssistant, Content: "Revenue is up 12%.", Complete: true}, final)
	assert.Equal(t, []string{"How are sales?"}, model.Messages())

	history := assistant.History()
	require.Len(t, history, 3)
	assert.Equal(t, ChatGreeting, history[0].Content)
	assert.Equal(t, models.ChatMessage{Role: models.RoleUser, Content: "How are sales?", Complete: true}, history[1])
	assert.Equal(t, final, history[2])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AIRequests.WithLabelValues("chat", "ok")))
}

func TestChatNilCallback(t *testing.T) {
	assistant, _, _ := newTestAssistant(NewMockGenerativeModel("ok"))

	final := assistant.Chat(context.Background(), "ping", nil)

	assert.Equal(t, "ok", final.Content)
}

func TestChatFallsBackOnModelError(t *testing.T) {
	model := NewMockGenerativeModel("partial ")
	model.ChatErr = errors.New("quota exceeded")
	assistant, logs, metrics := newTestAssistant(model)

	final := assistant.Chat(context.Background(), "Forecast next month", nil)

	assert.Equal(t, ChatFallback, final.Content)
	assert.True(t, final.Complete)

	entries := logs.FilterMessage("Chat error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AIRequests.WithLabelValues("chat", "fallback")))
}

func TestChatWithoutModelFallsBack(t *testing.T) {
	assistant, _, _ := newTestAssistant(nil)

	final := assistant.Chat(context.Background(), "hello", nil)
	result := assistant.AnalyzeImage(context.Background(), []byte{1}, "image/png")

	assert.Equal(t, ChatFallback, final.Content)
	assert.Equal(t, VisionResult{Analysis: VisionFallback, Fallback: true}, result)
}

func TestChatCancelledKeepsPartialReply(t *testing.T) {
	model := NewMockGenerativeModel("Dior", " and", " Chanel")
	assistant, logs, metrics := newTestAssistant(model)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	final := assistant.Chat(ctx, "Top brands?", func(models.ChatMessage) {
		cancel()
	})

	assert.Equal(t, "Dior", final.Content)
	assert.True(t, final.Complete)
	assert.Empty(t, logs.FilterMessage("Chat error").All())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AIRequests.WithLabelValues("chat", "cancelled")))
}

func TestChatTimeoutFallsBack(t *testing.T) {
	model := NewMockGenerativeModel("never")
	model.Block = make(chan struct{})
	core, _ := observer.New(zapcore.InfoLevel)
	assistant := NewAssistant(model, 20*time.Millisecond, zap.New(core), nil)

	final := assistant.Chat(context.Background(), "slow question", nil)

	assert.Equal(t, ChatFallback, final.Content)
}

func TestCircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	model := NewMockGenerativeModel()
	model.ChatErr = errors.New("model unavailable")
	assistant, logs, _ := newTestAssistant(model)

	for i := 0; i < 5; i++ {
		assistant.Chat(context.Background(), "retry", nil)
	}
	require.Len(t, model.Messages(), 5)

	final := assistant.Chat(context.Background(), "one more", nil)

	assert.Equal(t, ChatFallback, final.Content)
	assert.Len(t, model.Messages(), 5, "Open breaker should not reach the model")
	assert.Len(t, logs.FilterMessage("Circuit breaker state changed").All(), 1)
}

func TestAnalyzeImage(t *testing.T) {
	tests := []struct {
		name       string
		visionText string
		visionErr  error
		expected   VisionResult
		outcome    string
	}{
		{
			name:       "analysis returned",
			visionText: "Brand: Hermès. Product: Birkin 30. Condition: excellent.",
			expected:   VisionResult{Analysis: "Brand: Hermès. Product: Birkin 30. Condition: excellent."},
			outcome:    "ok",
		},
		{
			name:       "empty answer",
			visionText: "  ",
			expected:   VisionResult{Analysis: VisionEmpty},
			outcome:    "ok",
		},
		{
			name:      "model error",
			visionErr: errors.New("unsupported image"),
			expected:  VisionResult{Analysis: VisionFallback, Fallback: true},
			outcome:   "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := NewMockGenerativeModel()
			model.VisionText = tt.visionText
			model.VisionErr = tt.visionErr
			assistant, _, metrics := newTestAssistant(model)

			result := assistant.AnalyzeImage(context.Background(), []byte("jpeg bytes"), "image/jpeg")

			assert.Equal(t, tt.expected, result)
			assert.Equal(t, VisionPrompt, model.LastPrompt())
			assert.Equal(t, []string{"image/jpeg"}, model.MimeTypes())
			assert.Equal(t, [][]byte{[]byte("jpeg bytes")}, model.Images())
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AIRequests.WithLabelValues("vision", tt.outcome)))
		})
	}
}

func TestAnalyzeImageLeavesTranscriptAlone(t *testing.T) {
	model := NewMockGenerativeModel()
	model.VisionText = "Tracking code: GHN123456, carrier: GHN"
	assistant, _, _ := newTestAssistant(model)

	assistant.AnalyzeImage(context.Background(), []byte("label"), "image/png")

	assert.Len(t, assistant.History(), 1)
}
