package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"lumina-face-analysis/internal/analysis"
	apperrors "lumina-face-analysis/internal/errors"
	"lumina-face-analysis/internal/logger"
	"lumina-face-analysis/internal/observer"
	"lumina-face-analysis/internal/storage"
	"lumina-face-analysis/pkg/models"
	"lumina-face-analysis/pkg/validation"
)

// Executor runs a job in the background. Submit returns false if the job was
// not accepted.
type Executor interface {
	Submit(job func()) bool
}

// ImageEncoder turns a selected file into an image ready for analysis
type ImageEncoder interface {
	Encode(ctx context.Context, file storage.File) (models.SelectedImage, error)
}

// Publisher receives transition events
type Publisher interface {
	NotifyObservers(ctx context.Context, event observer.TransitionEvent)
}

// Dependencies are the collaborators shared by all controllers
type Dependencies struct {
	Policy        *validation.UploadPolicy
	Encoder       ImageEncoder
	Client        analysis.Client
	Executor      Executor
	Publisher     Publisher
	FailurePolicy FailurePolicy
}

// Controller owns the workflow state of one session. All methods are safe for
// concurrent use; at most one remote call is in flight at a time.
type Controller struct {
	id   string
	deps Dependencies

	mu             sync.Mutex
	state          State
	attempting     bool
	updatedAt      time.Time
	analyzingSince time.Time
	changed        chan struct{}
}

// NewController creates a controller in AUTHENTICATING
func NewController(id string, deps Dependencies) *Controller {
	if deps.Policy == nil {
		deps.Policy = validation.NewUploadPolicy()
	}
	return &Controller{
		id:        id,
		deps:      deps,
		state:     Initial(),
		updatedAt: time.Now(),
		changed:   make(chan struct{}),
	}
}

// ID returns the session ID
func (c *Controller) ID() string { return c.id }

// Authenticate moves the session to the upload screen
func (c *Controller) Authenticate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(AuthSucceeded{})
}

// SelectFile validates, encodes and submits file for analysis. A rejected or
// unreadable file leaves the session on the upload screen and the returned
// error describes why. On success the session is ANALYZING when SelectFile
// returns and the remote call proceeds in the background.
func (c *Controller) SelectFile(ctx context.Context, file storage.File) error {
	c.mu.Lock()
	if err := c.canSelectLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	if rejection := c.deps.Policy.Validate(file); rejection != nil {
		defer c.mu.Unlock()
		if err := c.apply(UploadRejected{Message: rejection.Message}); err != nil {
			return err
		}
		return rejection.AppError()
	}

	if err := c.apply(AttemptStarted{}); err != nil {
		c.mu.Unlock()
		return err
	}
	c.attempting = true
	c.mu.Unlock()

	img, encErr := c.deps.Encoder.Encode(ctx, file)

	c.mu.Lock()
	c.attempting = false
	if encErr != nil {
		c.applyWithError(EncodingFailed{Err: encErr}, encErr)
		c.mu.Unlock()
		return encErr
	}
	if err := c.apply(ImageEncoded{Image: img}); err != nil {
		c.mu.Unlock()
		return err
	}
	c.analyzingSince = time.Now()
	payload := img.Payload
	c.mu.Unlock()

	if !c.deps.Executor.Submit(func() { c.analyze(payload) }) {
		err := apperrors.NewInternalError("analysis executor is closed", nil)
		c.finish(nil, err)
	}
	return nil
}

// CanSelect reports whether a file would currently be accepted for selection.
// Callers use it to skip fetching a remote file that would be refused anyway.
func (c *Controller) CanSelect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSelectLocked()
}

func (c *Controller) canSelectLocked() error {
	if c.state.Phase != AwaitingUpload {
		return c.conflict("file selection")
	}
	if c.attempting {
		return apperrors.NewConflictError("an image is already being prepared", nil)
	}
	return nil
}

// analyze runs the remote call. It is never cancelled and has no deadline of
// its own; the client's transport timeouts apply.
func (c *Controller) analyze(payload string) {
	result, err := c.deps.Client.Analyze(context.Background(), payload)
	c.finish(result, err)
}

func (c *Controller) finish(result *models.AnalysisResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.analyzingSince)
	entry := logger.WithField("session_id", c.id).WithField("duration_ms", elapsed.Milliseconds())
	if c.deps.Client != nil {
		entry = entry.WithField("provider", c.deps.Client.Name())
	}

	if err == nil && result == nil {
		err = errors.New("analysis returned no result")
	}
	if err != nil {
		entry.WithError(err).Error("Remote analysis failed")
		c.applyWithError(AnalysisFailed{Err: err}, err)
		return
	}
	entry.Info("Remote analysis succeeded")
	if applyErr := c.apply(AnalysisSucceeded{Result: result}); applyErr != nil {
		entry.WithError(applyErr).Warn("Dropping analysis result")
	}
}

// Reset returns from the result screen to an empty upload screen
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ResetRequested{})
}

// Snapshot returns the current observable state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Await blocks while the session is ANALYZING or preparing an image, and
// returns the snapshot once it settles or ctx is done. The bool reports
// whether the session settled.
func (c *Controller) Await(ctx context.Context) (Snapshot, bool) {
	for {
		c.mu.Lock()
		if c.state.Phase != Analyzing && !c.attempting {
			s := c.snapshotLocked()
			c.mu.Unlock()
			return s, true
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return c.Snapshot(), false
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID:      c.id,
		State:          c.state.Phase,
		AnalysisResult: c.state.AnalysisResult,
		ErrorMessage:   c.state.ErrorMessage,
		UpdatedAt:      c.updatedAt,
	}
	if c.state.SelectedImage != nil {
		img := *c.state.SelectedImage
		s.SelectedImage = &img
	}
	return s
}

func (c *Controller) apply(e Event) error {
	return c.applyWithError(e, nil)
}

// applyWithError must be called with mu held
func (c *Controller) applyWithError(e Event, cause error) error {
	next, err := Reduce(c.state, e, c.deps.FailurePolicy)
	if err != nil {
		return c.conflict(string(e.Type()))
	}
	if err := next.Check(); err != nil {
		logger.WithField("session_id", c.id).WithError(err).Error("Workflow invariant violated")
		return apperrors.NewInternalError("workflow invariant violated", err)
	}

	prev := c.state
	c.state = next
	c.updatedAt = time.Now()
	close(c.changed)
	c.changed = make(chan struct{})

	if c.deps.Publisher != nil {
		ev := observer.TransitionEvent{
			SessionID:    c.id,
			EventType:    e.Type(),
			From:         string(prev.Phase),
			To:           string(next.Phase),
			Timestamp:    c.updatedAt,
			ErrorMessage: next.ErrorMessage,
		}
		if prev.Phase == Analyzing {
			ev.Duration = c.updatedAt.Sub(c.analyzingSince)
		}
		if cause != nil {
			ev.ErrorMessage = cause.Error()
		}
		if prev.Phase == Analyzing && c.deps.Client != nil {
			ev.Metadata = map[string]interface{}{"provider": c.deps.Client.Name()}
		}
		c.deps.Publisher.NotifyObservers(context.Background(), ev)
	}
	return nil
}

func (c *Controller) conflict(action string) error {
	return apperrors.NewConflictError(
		action+" is not allowed in "+string(c.state.Phase),
		ErrInvalidTransition,
	)
}
