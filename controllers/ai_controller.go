package controllers

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/luxetrack-api/models"
	"github.com/kendall-kelly/luxetrack-api/services"
	"github.com/kendall-kelly/luxetrack-api/utils"
	"go.uber.org/zap"
)

// ChatRequest represents the request body for a chat message
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// VisionRequest is the JSON form of an image analysis request
type VisionRequest struct {
	Image    string `json:"image" binding:"required"`
	MimeType string `json:"mimeType"`
}

// AIController serves the chat assistant and the image analyzer
type AIController struct {
	assistant *services.Assistant
	images    services.ImageService
	logger    *zap.Logger
	chatBusy  atomic.Bool
}

// NewAIController creates an AI controller. images may be nil when archiving is disabled.
func NewAIController(assistant *services.Assistant, images services.ImageService, logger *zap.Logger) *AIController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIController{
		assistant: assistant,
		images:    images,
		logger:    logger,
	}
}

// Chat handles POST /api/v1/ai/chat - streams the assistant reply as server-sent events.
// Each "message" event carries the reply so far; a final "done" event carries the finished entry.
// With ?stream=false the finished entry is returned as plain JSON.
func (ac *AIController) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		details := "message must not be empty"
		if err != nil {
			details = err.Error()
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": details,
			},
		})
		return
	}

	// One exchange at a time; the transcript would interleave otherwise
	if !ac.chatBusy.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHAT_IN_PROGRESS",
				"message": "Another chat request is still being answered",
			},
		})
		return
	}
	defer ac.chatBusy.Store(false)

	message := strings.TrimSpace(req.Message)

	if c.Query("stream") == "false" {
		reply := ac.assistant.Chat(c.Request.Context(), message, nil)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    reply,
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	reply := ac.assistant.Chat(c.Request.Context(), message, func(msg models.ChatMessage) {
		c.SSEvent("message", msg)
		c.Writer.Flush()
	})

	if c.Request.Context().Err() != nil {
		return
	}
	c.SSEvent("done", reply)
	c.Writer.Flush()
}

// ChatHistory handles GET /api/v1/ai/chat/history
func (ac *AIController) ChatHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ac.assistant.History(),
	})
}

// AnalyzeImage handles POST /api/v1/ai/vision - accepts a multipart "image" file or a
// JSON body with a base64 image (a data URL is fine). Model failures still answer 200
// with the fallback text.
func (ac *AIController) AnalyzeImage(c *gin.Context) {
	image, ok := ac.readImage(c)
	if !ok {
		return
	}

	result := ac.assistant.AnalyzeImage(c.Request.Context(), image.Data, image.MimeType)

	data := gin.H{
		"analysis": result.Analysis,
		"fallback": result.Fallback,
		"mimeType": image.MimeType,
	}

	if ac.images != nil {
		archived, err := ac.images.ArchiveImage(c.Request.Context(), image)
		if err != nil {
			// Archiving is best effort; the analysis is what the caller asked for
			ac.logger.Warn("failed to archive inspection image", zap.Error(err))
		} else {
			data["image"] = archived
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// DeleteImage handles DELETE /api/v1/ai/vision/images/*key - removes an archived inspection image
func (ac *AIController) DeleteImage(c *gin.Context) {
	if ac.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ARCHIVE_DISABLED",
				"message": "Image archiving is not configured",
			},
		})
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if !services.IsInspectionKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid image key",
				"details": "key must name an archived inspection image",
			},
		})
		return
	}

	if err := ac.images.DeleteImage(c.Request.Context(), key); err != nil {
		ac.logger.Error("failed to delete inspection image", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ARCHIVE_ERROR",
				"message": "Failed to delete image",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
		},
	})
}

func (ac *AIController) readImage(c *gin.Context) (*utils.Image, bool) {
	var (
		image *utils.Image
		err   error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, formErr := c.FormFile("image")
		if formErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "An image file is required in the \"image\" field",
					"details": formErr.Error(),
				},
			})
			return nil, false
		}
		image, err = utils.ReadImageFile(fileHeader)
	} else {
		var req VisionRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid request data",
					"details": bindErr.Error(),
				},
			})
			return nil, false
		}
		image, err = utils.DecodeBase64Image(req.Image)
		if err == nil && req.MimeType != "" && !strings.EqualFold(req.MimeType, image.MimeType) {
			ac.logger.Debug("declared mime type differs from content",
				zap.String("declared", req.MimeType),
				zap.String("detected", image.MimeType),
			)
		}
	}

	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return nil, false
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_IMAGE",
				"message": "Failed to read image",
				"details": err.Error(),
			},
		})
		return nil, false
	}

	return image, true
}
