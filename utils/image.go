package utils

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

// AllowedImageTypes are the image formats the vision model accepts
var AllowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/heic", "image/heif"}

// Image is an uploaded image ready to send for analysis
type Image struct {
	Name     string
	Data     []byte
	MimeType string
}

// FileUploadError represents an image validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ReadImageFile reads and validates a multipart image upload
func ReadImageFile(fileHeader *multipart.FileHeader) (*Image, error) {
	if fileHeader.Size > MaxFileSize {
		return nil, tooLarge()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Read one byte past the limit so a lying Size header is still caught
	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return newImage(filepath.Base(fileHeader.Filename), data)
}

// DecodeBase64Image validates a base64 payload. A data URL prefix such as
// "data:image/jpeg;base64," is stripped first.
func DecodeBase64Image(payload string) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if _, rest, ok := strings.Cut(payload, ","); ok {
			payload = rest
		}
	}

	if payload == "" {
		return nil, &FileUploadError{Code: "INVALID_IMAGE", Message: "Image data is required"}
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxFileSize+2 {
		return nil, tooLarge()
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &FileUploadError{Code: "INVALID_IMAGE", Message: "Image data is not valid base64"}
	}

	return newImage("upload", data)
}

// DetectImageType returns the mime type of data if it is an allowed image format
func DetectImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &FileUploadError{Code: "INVALID_IMAGE", Message: "Image is empty"}
	}

	detected := mimetype.Detect(data)
	for _, allowed := range AllowedImageTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}

	return "", &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: fmt.Sprintf("Only %s images are allowed", strings.Join(AllowedImageTypes, ", ")),
	}
}

func newImage(name string, data []byte) (*Image, error) {
	if len(data) > MaxFileSize {
		return nil, tooLarge()
	}

	mimeType, err := DetectImageType(data)
	if err != nil {
		return nil, err
	}

	return &Image{Name: name, Data: data, MimeType: mimeType}, nil
}

func tooLarge() *FileUploadError {
	return &FileUploadError{
		Code:    "FILE_TOO_LARGE",
		Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
	}
}
