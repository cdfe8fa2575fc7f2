package workflow

import (
	"errors"
	"fmt"

	"lumina-face-analysis/internal/observer"
	"lumina-face-analysis/pkg/models"
)

// ErrInvalidTransition is returned for an event the current phase does not accept
var ErrInvalidTransition = errors.New("invalid transition")

// Event is something that happened to a session
type Event interface {
	Type() observer.EventType
}

type (
	// AuthSucceeded is raised once the user passed the auth screen
	AuthSucceeded struct{}
	// UploadRejected carries the validation message for a refused file
	UploadRejected struct{ Message string }
	// AttemptStarted marks an accepted file whose encoding is in progress
	AttemptStarted struct{}
	// ImageEncoded carries the encoded image; the remote call follows
	ImageEncoded struct{ Image models.SelectedImage }
	// EncodingFailed is raised when the accepted file could not be read
	EncodingFailed struct{ Err error }
	// AnalysisSucceeded carries the remote report
	AnalysisSucceeded struct{ Result *models.AnalysisResult }
	// AnalysisFailed is raised when the remote call failed
	AnalysisFailed struct{ Err error }
	// ResetRequested is raised from the result screen
	ResetRequested struct{}
)

func (AuthSucceeded) Type() observer.EventType     { return observer.AuthSucceeded }
func (UploadRejected) Type() observer.EventType    { return observer.UploadRejected }
func (AttemptStarted) Type() observer.EventType    { return observer.UploadAccepted }
func (ImageEncoded) Type() observer.EventType      { return observer.AnalysisStarted }
func (EncodingFailed) Type() observer.EventType    { return observer.EncodingFailed }
func (AnalysisSucceeded) Type() observer.EventType { return observer.AnalysisCompleted }
func (AnalysisFailed) Type() observer.EventType    { return observer.AnalysisFailed }
func (ResetRequested) Type() observer.EventType    { return observer.ResetRequested }

// Reduce applies e to s. It is the only place the state table lives.
func Reduce(s State, e Event, policy FailurePolicy) (State, error) {
	switch ev := e.(type) {
	case AuthSucceeded:
		if s.Phase != Authenticating {
			break
		}
		return State{Phase: AwaitingUpload}, nil

	case UploadRejected:
		if s.Phase != AwaitingUpload {
			break
		}
		s.ErrorMessage = ev.Message
		return s, nil

	case AttemptStarted:
		if s.Phase != AwaitingUpload {
			break
		}
		s.ErrorMessage = ""
		return s, nil

	case ImageEncoded:
		if s.Phase != AwaitingUpload {
			break
		}
		img := ev.Image
		return State{Phase: Analyzing, SelectedImage: &img}, nil

	case EncodingFailed:
		if s.Phase != AwaitingUpload {
			break
		}
		s.ErrorMessage = MessageAnalysisFailed
		return s, nil

	case AnalysisSucceeded:
		if s.Phase != Analyzing {
			break
		}
		if ev.Result == nil {
			return s, fmt.Errorf("%w: empty result", ErrInvalidTransition)
		}
		s.Phase = ShowingResult
		s.AnalysisResult = ev.Result
		return s, nil

	case AnalysisFailed:
		if s.Phase != Analyzing {
			break
		}
		next := State{Phase: AwaitingUpload, ErrorMessage: MessageAnalysisFailed}
		if policy == RetainImage {
			next.SelectedImage = s.SelectedImage
		}
		return next, nil

	case ResetRequested:
		if s.Phase != ShowingResult {
			break
		}
		return State{Phase: AwaitingUpload}, nil

	default:
		return s, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, e)
	}
	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, e.Type(), s.Phase)
}
