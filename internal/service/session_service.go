package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "lumina-face-analysis/internal/errors"
	"lumina-face-analysis/internal/observer"
	"lumina-face-analysis/internal/repository"
	"lumina-face-analysis/internal/storage"
	"lumina-face-analysis/internal/workflow"
)

// SessionService exposes the workflow intents by session ID. Intent methods
// return the session snapshot even when they fail, unless the session does not
// exist.
type SessionService interface {
	CreateSession(ctx context.Context) (workflow.Snapshot, error)
	GetSession(ctx context.Context, id string) (workflow.Snapshot, error)
	// AwaitSession long-polls while the session is analysing, at most wait
	AwaitSession(ctx context.Context, id string, wait time.Duration) (workflow.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error

	Authenticate(ctx context.Context, id, accessCode string) (workflow.Snapshot, error)
	SelectUpload(ctx context.Context, id string, file storage.File) (workflow.Snapshot, error)
	SelectURL(ctx context.Context, id, imageURL string) (workflow.Snapshot, error)
	SelectBlob(ctx context.Context, id, container, name string) (workflow.Snapshot, error)
	Reset(ctx context.Context, id string) (workflow.Snapshot, error)
}

// Options configure the session service
type Options struct {
	// AccessCode, when set, must be presented to pass authentication
	AccessCode string
	// MaxWait caps AwaitSession
	MaxWait time.Duration
}

type sessionService struct {
	sessions  repository.SessionRepository
	images    repository.ImageRepository
	deps      workflow.Dependencies
	publisher workflow.Publisher
	opts      Options
	newID     func() string
}

// NewSessionService creates a session service. deps are shared by all
// controllers it creates.
func NewSessionService(
	sessions repository.SessionRepository,
	images repository.ImageRepository,
	deps workflow.Dependencies,
	opts Options,
) SessionService {
	if opts.MaxWait <= 0 {
		opts.MaxWait = 30 * time.Second
	}
	return &sessionService{
		sessions:  sessions,
		images:    images,
		deps:      deps,
		publisher: deps.Publisher,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

func (s *sessionService) CreateSession(ctx context.Context) (workflow.Snapshot, error) {
	c := workflow.NewController(s.newID(), s.deps)
	if err := s.sessions.Save(ctx, c); err != nil {
		return workflow.Snapshot{}, apperrors.NewInternalError("failed to create session", err)
	}
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, observer.TransitionEvent{
			SessionID: c.ID(),
			EventType: observer.SessionCreated,
			To:        string(workflow.Authenticating),
			Timestamp: time.Now(),
		})
	}
	return c.Snapshot(), nil
}

func (s *sessionService) GetSession(ctx context.Context, id string) (workflow.Snapshot, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

func (s *sessionService) AwaitSession(ctx context.Context, id string, wait time.Duration) (workflow.Snapshot, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	if wait <= 0 {
		return c.Snapshot(), nil
	}
	if wait > s.opts.MaxWait {
		wait = s.opts.MaxWait
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	snap, _ := c.Await(waitCtx)
	return snap, nil
}

func (s *sessionService) DeleteSession(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

func (s *sessionService) Authenticate(ctx context.Context, id, accessCode string) (workflow.Snapshot, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	if s.opts.AccessCode != "" &&
		subtle.ConstantTimeCompare([]byte(accessCode), []byte(s.opts.AccessCode)) != 1 {
		return c.Snapshot(), apperrors.NewUnauthorizedError("invalid access code", nil)
	}
	err = c.Authenticate()
	return c.Snapshot(), err
}

func (s *sessionService) SelectUpload(ctx context.Context, id string, file storage.File) (workflow.Snapshot, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	err = c.SelectFile(ctx, file)
	return c.Snapshot(), err
}

func (s *sessionService) SelectURL(ctx context.Context, id, imageURL string) (workflow.Snapshot, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	if err := c.CanSelect(); err != nil {
		return c.Snapshot(), err
	}
	if err := s.images.ValidateImageURL(imageURL); err != nil {
		return c.Snapshot(), err
	}
	file, err := s.images.FetchImage(ctx, imageURL)
	if err != nil {
		return c.Snapshot(), s.mapRepoError(err)
	}
	err = c.SelectFile(ctx, file)
	return c.Snapshot(), err
}

func (s *sessionService) SelectBlob(ctx context.Context, id, container, name string) (workflow.Snapshot, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	if err := c.CanSelect(); err != nil {
		return c.Snapshot(), err
	}
	file, err := s.images.GetBlobImage(ctx, container, name)
	if err != nil {
		return c.Snapshot(), s.mapRepoError(err)
	}
	err = c.SelectFile(ctx, file)
	return c.Snapshot(), err
}

func (s *sessionService) Reset(ctx context.Context, id string) (workflow.Snapshot, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	err = c.Reset()
	return c.Snapshot(), err
}

func (s *sessionService) controller(ctx context.Context, id string) (*workflow.Controller, error) {
	c, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return c, nil
}

func (s *sessionService) mapRepoError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrSessionNotFound):
		return apperrors.NewNotFoundError("session not found", err)
	case errors.Is(err, repository.ErrSourceUnavailable):
		return apperrors.NewValidationError("image source is not configured", err)
	case errors.Is(err, repository.ErrImageNotFound):
		return apperrors.NewNetworkError("failed to fetch image", err)
	default:
		return apperrors.NewInternalError("repository error", err)
	}
}
