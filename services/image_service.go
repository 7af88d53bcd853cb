package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/kendall-kelly/luxetrack-api/utils"
)

// ArchivedImage points at a stored inspection image
type ArchivedImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ImageService archives images sent for inspection
type ImageService interface {
	// ArchiveImage stores the image and returns its key and a temporary URL
	ArchiveImage(ctx context.Context, image *utils.Image) (*ArchivedImage, error)

	// DeleteImage removes an archived image
	DeleteImage(ctx context.Context, imageKey string) error
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
	now       func() time.Time
}

// NewImageService creates an image service on an S3 backend
func NewImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{
		s3Service: s3Service,
		now:       time.Now,
	}
}

// InspectionPrefix is the key prefix of every archived inspection image
const InspectionPrefix = "inspections/"

// IsInspectionKey reports whether key names an object under InspectionPrefix
func IsInspectionKey(key string) bool {
	name, ok := strings.CutPrefix(key, InspectionPrefix)
	return ok && name != "" && !strings.Contains(name, "/")
}

// ArchiveImage uploads under inspections/{unix}_{name}
func (s *S3ImageService) ArchiveImage(ctx context.Context, image *utils.Image) (*ArchivedImage, error) {
	key := fmt.Sprintf("%s%d_%s", InspectionPrefix, s.now().Unix(), sanitizeImageName(image.Name))

	if err := s.s3Service.UploadFile(ctx, key, image.Data, image.MimeType); err != nil {
		return nil, fmt.Errorf("failed to archive image: %w", err)
	}

	url, err := s.s3Service.GetPresignedURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image URL: %w", err)
	}

	return &ArchivedImage{Key: key, URL: url}, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func sanitizeImageName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	return name
}
