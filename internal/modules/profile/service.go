// README: Profile service: driver/rider lookup, driver info edits and picture upload.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"kargo/internal/types"
)

var ErrNotFound = errors.New("profile not found")

// BlobStore persists uploaded objects and returns their download URL.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
}

var pictureExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Service struct {
	store Store
	blobs BlobStore
}

func NewService(store Store, blobs BlobStore) *Service {
	return &Service{store: store, blobs: blobs}
}

func (s *Service) Driver(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.Driver(ctx, id)
}

func (s *Service) Rider(ctx context.Context, id types.ID) (*Rider, error) {
	return s.store.Rider(ctx, id)
}

func (s *Service) UpdateDriverInfo(ctx context.Context, id types.ID, info DriverInfo) (*Driver, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateDriver(ctx, id, info); err != nil {
		return nil, err
	}
	return s.store.Driver(ctx, id)
}

// UploadPicture stores the image under a per-driver object name and records its URL on
// the driver profile.
func (s *Service) UploadPicture(ctx context.Context, id types.ID, contentType string, r io.Reader) (string, error) {
	ext, ok := pictureExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported picture type %q", types.ErrInvalidInput, contentType)
	}
	if s.blobs == nil {
		return "", errors.New("profile: no object storage configured")
	}
	path := fmt.Sprintf("drivers/%s/profile-%s%s", id, uuid.NewString(), ext)
	url, err := s.blobs.Upload(ctx, path, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.store.SetProfilePicture(ctx, id, url); err != nil {
		return "", err
	}
	return url, nil
}
