// Package workflow drives one analysis session from authentication to the
// result screen.
package workflow

import (
	"fmt"
	"time"

	"lumina-face-analysis/pkg/models"
)

// Phase is the screen the session is on
type Phase string

const (
	Authenticating Phase = "AUTHENTICATING"
	AwaitingUpload Phase = "AWAITING_UPLOAD"
	Analyzing      Phase = "ANALYZING"
	ShowingResult  Phase = "SHOWING_RESULT"
)

// MessageAnalysisFailed is shown when encoding or the remote call fails
const MessageAnalysisFailed = "AI 分析失败，请稍后重试或更换图片"

// State is the full observable state of one session
type State struct {
	Phase          Phase
	SelectedImage  *models.SelectedImage
	AnalysisResult *models.AnalysisResult
	ErrorMessage   string
}

// Initial returns the state of a new session
func Initial() State {
	return State{Phase: Authenticating}
}

// Check reports a violated invariant, nil if the state is consistent
func (s State) Check() error {
	switch s.Phase {
	case Authenticating:
		if s.SelectedImage != nil || s.AnalysisResult != nil {
			return fmt.Errorf("%s must not hold an image or result", s.Phase)
		}
	case AwaitingUpload:
		if s.AnalysisResult != nil {
			return fmt.Errorf("%s must not hold a result", s.Phase)
		}
	case Analyzing:
		if s.SelectedImage == nil || s.AnalysisResult != nil {
			return fmt.Errorf("%s needs an image and no result", s.Phase)
		}
	case ShowingResult:
		if s.SelectedImage == nil || s.AnalysisResult == nil {
			return fmt.Errorf("%s needs an image and a result", s.Phase)
		}
	default:
		return fmt.Errorf("unknown phase %q", s.Phase)
	}
	return nil
}

// Snapshot is the JSON view of a session
type Snapshot struct {
	SessionID      string                 `json:"sessionId"`
	State          Phase                  `json:"state"`
	SelectedImage  *models.SelectedImage  `json:"selectedImage,omitempty"`
	AnalysisResult *models.AnalysisResult `json:"analysisResult,omitempty"`
	ErrorMessage   string                 `json:"errorMessage,omitempty"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// FailurePolicy decides what happens to the selected image when analysis fails
type FailurePolicy int

const (
	// DiscardImage drops the image so the upload screen starts empty
	DiscardImage FailurePolicy = iota
	// RetainImage keeps the image as a preview on the upload screen
	RetainImage
)

func (p FailurePolicy) String() string {
	if p == RetainImage {
		return "retain"
	}
	return "discard"
}
