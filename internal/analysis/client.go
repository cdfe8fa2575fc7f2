// Package analysis defines the remote vision client used by the workflow and
// the pieces shared by its providers.
package analysis

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	apperrors "lumina-face-analysis/internal/errors"
	"lumina-face-analysis/pkg/models"
)

// Client submits a base64 image payload for cosmetic analysis. Implementations
// either return a complete, validated result or an error; never both.
type Client interface {
	Analyze(ctx context.Context, payload string) (*models.AnalysisResult, error)
	Name() string
}

// ClientFunc adapts a function to Client
type ClientFunc func(ctx context.Context, payload string) (*models.AnalysisResult, error)

func (f ClientFunc) Analyze(ctx context.Context, payload string) (*models.AnalysisResult, error) {
	return f(ctx, payload)
}

func (f ClientFunc) Name() string { return "func" }

// DecodePayload decodes a base64 payload and detects its MIME type from the
// bytes. Standard encoding is tried before URL-safe encoding.
func DecodePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		var err2 error
		if data, err2 = base64.URLEncoding.DecodeString(payload); err2 != nil {
			return nil, "", apperrors.NewRemoteAnalysisError("payload is not base64", err)
		}
	}
	if len(data) == 0 {
		return nil, "", apperrors.NewRemoteAnalysisError("payload is empty", nil)
	}
	return data, SniffMIME(data), nil
}

// SniffMIME returns the detected image type, falling back to image/jpeg for
// anything that does not look like an image.
func SniffMIME(data []byte) string {
	mt := http.DetectContentType(data)
	if strings.HasPrefix(mt, "image/") {
		return mt
	}
	return "image/jpeg"
}

// Failed wraps any provider failure as a remote analysis error
func Failed(provider string, err error) error {
	if apperrors.IsType(err, apperrors.ErrorTypeRemoteAnalysis) {
		return err
	}
	return apperrors.NewRemoteAnalysisError(provider+" analysis failed", err)
}
