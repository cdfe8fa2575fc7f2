package repository

import (
	"context"
	"fmt"
	"strings"

	"lumina-face-analysis/internal/storage"
	"lumina-face-analysis/pkg/validation"
)

// SourceImageRepository implements ImageRepository over an HTTP fetcher and an
// optional blob store
type SourceImageRepository struct {
	fetcher   storage.ImageFetcher
	blobs     storage.BlobStorage
	validator *validation.URLValidator
}

// NewSourceImageRepository creates a repository. blobs may be nil when blob
// storage is not configured.
func NewSourceImageRepository(fetcher storage.ImageFetcher, blobs storage.BlobStorage, validator *validation.URLValidator) *SourceImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &SourceImageRepository{
		fetcher:   fetcher,
		blobs:     blobs,
		validator: validator,
	}
}

// FetchImage validates the URL then downloads it
func (r *SourceImageRepository) FetchImage(ctx context.Context, imageURL string) (storage.File, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}
	f, err := r.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageNotFound, err)
	}
	return f, nil
}

// ValidateImageURL validates if the provided URL is acceptable. The error is a
// validation AppError.
func (r *SourceImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(strings.TrimSpace(imageURL))
}

// GetBlobImage resolves a blob, failing with ErrSourceUnavailable when no
// blob store is configured
func (r *SourceImageRepository) GetBlobImage(ctx context.Context, container, name string) (storage.File, error) {
	if r.blobs == nil {
		return nil, ErrSourceUnavailable
	}
	if container == "" || name == "" {
		return nil, fmt.Errorf("%w: container and name are required", ErrImageNotFound)
	}
	f, err := r.blobs.GetImage(ctx, container, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageNotFound, err)
	}
	return f, nil
}
