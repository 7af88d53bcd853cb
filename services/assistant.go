package services

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/kendall-kelly/luxetrack-api/models"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	// ChatFallback replaces a chat reply when the model fails
	ChatFallback = "Sorry, I encountered an error. Please try again later."

	// VisionFallback replaces an image analysis when the model fails
	VisionFallback = "Error analyzing image. Please try again."

	// VisionEmpty is shown when the model answers with no text
	VisionEmpty = "No analysis available."

	// VisionPrompt is the fixed inspection instruction sent with every image
	VisionPrompt = "Analyze this luxury product image or shipping document. Identify the brand, product type, and estimate its condition or value if possible. If it is a shipping label, extract the tracking code and carrier name."

	// ChatSystemInstruction sets the assistant persona
	ChatSystemInstruction = `You are an expert AI assistant for "LuxeTrack OMS", a luxury Order Management System.
You help users analyze sales data, provide business advice for luxury retail, and answer operational questions.
Keep your tone professional, helpful, and concise. Format your answers in markdown.`
)

var errAssistantNotConfigured = errors.New("generative model is not configured")

// GenerativeModel is the hosted AI collaborator
type GenerativeModel interface {
	// ChatStream sends one message and yields the reply as text chunks in arrival order
	ChatStream(ctx context.Context, message string) iter.Seq2[string, error]

	// AnalyzeImage sends an image with an instruction and returns the text answer
	AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// VisionResult is what the caller shows for an analyzed image
type VisionResult struct {
	Analysis string `json:"analysis"`
	Fallback bool   `json:"fallback"`
}

// Assistant runs the chat and vision features. Model errors never reach the caller;
// they are logged and replaced with the fixed fallback text.
type Assistant struct {
	model      GenerativeModel
	transcript *Transcript
	breaker    *gobreaker.CircuitBreaker
	timeout    time.Duration
	logger     *zap.Logger
	metrics    *Metrics
}

// NewAssistant creates an assistant over model. A nil model makes every call fall back.
// timeout bounds each model call; zero means no bound beyond the caller's context.
func NewAssistant(model GenerativeModel, timeout time.Duration, logger *zap.Logger, metrics *Metrics) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:        "GenerativeModel",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Assistant{
		model:      model,
		transcript: NewTranscript(),
		breaker:    gobreaker.NewCircuitBreaker(settings),
		timeout:    timeout,
		logger:     logger,
		metrics:    metrics,
	}
}

// History returns the chat transcript
func (a *Assistant) History() []models.ChatMessage {
	return a.transcript.Messages()
}

// Chat records message, streams the reply into one transcript entry and returns the final entry.
// onUpdate, when set, sees the entry after every chunk. If ctx is cancelled the entry is
// finalized with whatever arrived.
func (a *Assistant) Chat(ctx context.Context, message string, onUpdate func(models.ChatMessage)) models.ChatMessage {
	a.transcript.AddUser(message)
	reply := a.transcript.BeginReply()

	callCtx, cancel := a.callContext(ctx)
	defer cancel()

	_, err := a.breaker.Execute(func() (interface{}, error) {
		if a.model == nil {
			return nil, errAssistantNotConfigured
		}
		for chunk, err := range a.model.ChatStream(callCtx, message) {
			if err != nil {
				return nil, err
			}
			msg := reply.Append(chunk)
			if onUpdate != nil {
				onUpdate(msg)
			}
		}
		return nil, nil
	})

	switch {
	case err == nil:
		a.metrics.aiRequest("chat", "ok")
		return reply.Finish()
	case ctx.Err() != nil:
		a.logger.Info("chat abandoned by caller", zap.Error(ctx.Err()))
		a.metrics.aiRequest("chat", "cancelled")
		return reply.Finish()
	default:
		a.logger.Error("Chat error", zap.Error(err))
		a.metrics.aiRequest("chat", "fallback")
		return reply.Fail(ChatFallback)
	}
}

// AnalyzeImage asks the model to inspect a product photo or shipping label
func (a *Assistant) AnalyzeImage(ctx context.Context, image []byte, mimeType string) VisionResult {
	callCtx, cancel := a.callContext(ctx)
	defer cancel()

	result, err := a.breaker.Execute(func() (interface{}, error) {
		if a.model == nil {
			return nil, errAssistantNotConfigured
		}
		return a.model.AnalyzeImage(callCtx, image, mimeType, VisionPrompt)
	})
	if err != nil {
		a.logger.Error("Vision analysis error", zap.Error(err), zap.String("mime_type", mimeType))
		a.metrics.aiRequest("vision", "fallback")
		return VisionResult{Analysis: VisionFallback, Fallback: true}
	}

	a.metrics.aiRequest("vision", "ok")
	text, _ := result.(string)
	if strings.TrimSpace(text) == "" {
		return VisionResult{Analysis: VisionEmpty}
	}
	return VisionResult{Analysis: text}
}

func (a *Assistant) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}
