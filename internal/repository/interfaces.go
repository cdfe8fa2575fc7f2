package repository

import (
	"context"

	"lumina-face-analysis/internal/storage"
	"lumina-face-analysis/internal/workflow"
)

// SessionRepository stores one workflow controller per session
type SessionRepository interface {
	// Save stores a new controller under its ID
	Save(ctx context.Context, c *workflow.Controller) error

	// Get returns the controller for id or ErrSessionNotFound
	Get(ctx context.Context, id string) (*workflow.Controller, error)

	// Delete removes the controller for id or returns ErrSessionNotFound
	Delete(ctx context.Context, id string) error

	// Count returns the number of live sessions
	Count(ctx context.Context) int
}

// ImageRepository resolves photos that are not uploaded directly
type ImageRepository interface {
	// FetchImage downloads a photo from a URL
	FetchImage(ctx context.Context, imageURL string) (storage.File, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error

	// GetBlobImage resolves a photo kept in blob storage
	GetBlobImage(ctx context.Context, container, name string) (storage.File, error)
}
