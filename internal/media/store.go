package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"mykitchen/internal/apperr"
	"mykitchen/internal/config"
	applog "mykitchen/internal/log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Asset is a hosted image.
type Asset struct {
	URL      string
	PublicID string
}

// Store hosts images with a third-party media service.
type Store interface {
	Upload(ctx context.Context, data []byte) (Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// NewStore returns a Cloudinary backed store, or a DisabledStore when no
// Cloudinary URL is configured.
func NewStore(cfg config.MediaConfig) (Store, error) {
	if strings.TrimSpace(cfg.CloudinaryURL) == "" {
		return DisabledStore{}, nil
	}
	return NewCloudinaryStore(cfg.CloudinaryURL, cfg.Folder)
}

// DisabledStore rejects uploads.
type DisabledStore struct{}

func (DisabledStore) Upload(context.Context, []byte) (Asset, error) {
	return Asset{}, apperr.Validationf("image uploads are not configured")
}

func (DisabledStore) Delete(context.Context, string) error {
	return nil
}

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type CloudinaryStore struct {
	api    uploadAPI
	folder string
}

func NewCloudinaryStore(url, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	return &CloudinaryStore{api: &cld.Upload, folder: folder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, data []byte) (Asset, error) {
	publicID := uuid.NewString()
	result, err := s.api.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID: publicID,
		Folder:   s.folder,
	})
	if err != nil {
		return Asset{}, fmt.Errorf("upload image: %w", err)
	}
	if result == nil {
		return Asset{}, errors.New("upload image: empty response")
	}
	if result.Error.Message != "" {
		return Asset{}, fmt.Errorf("upload image: %s", result.Error.Message)
	}

	applog.Debug(ctx, "image uploaded", "public_id", result.PublicID)
	return Asset{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	result, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if result != nil && result.Error.Message != "" {
		return fmt.Errorf("delete image: %s", result.Error.Message)
	}
	return nil
}
