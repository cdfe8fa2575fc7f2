package encoder

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	apperrors "lumina-face-analysis/internal/errors"
	"lumina-face-analysis/internal/storage"
	"lumina-face-analysis/pkg/models"
	"lumina-face-analysis/pkg/validation"
)

const dataURLSeparator = ","

// Encoder turns a selected file into a data URL and its base64 payload
type Encoder struct {
	maxBytes int64
}

// New creates an encoder for files of at most maxBytes
func New(maxBytes int64) *Encoder {
	return &Encoder{maxBytes: maxBytes}
}

// Encode reads the whole file and builds data:<media-type>;base64,<payload>.
// The media type is the declared one. A read failure, an empty file, fewer
// bytes than declared or more than maxBytes are encoding errors.
func (e *Encoder) Encode(ctx context.Context, file storage.File) (models.SelectedImage, error) {
	if file == nil {
		return models.SelectedImage{}, apperrors.NewEncodingError("no file selected", nil)
	}

	rc, err := file.Open(ctx)
	if err != nil {
		return models.SelectedImage{}, apperrors.NewEncodingError("failed to open file", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(&ctxReader{ctx: ctx, r: rc}, e.maxBytes+1))
	if err != nil {
		return models.SelectedImage{}, apperrors.NewEncodingError("failed to read file", err)
	}
	if int64(len(data)) > e.maxBytes {
		return models.SelectedImage{}, apperrors.NewEncodingError(
			"file exceeds read limit",
			fmt.Errorf("more than %d bytes", e.maxBytes),
		)
	}
	if len(data) == 0 {
		return models.SelectedImage{}, apperrors.NewEncodingError("file is empty", nil)
	}
	if declared := file.Size(); declared > 0 && int64(len(data)) < declared {
		return models.SelectedImage{}, apperrors.NewEncodingError(
			"short read",
			fmt.Errorf("read %d of %d bytes", len(data), declared),
		)
	}

	payload := base64.StdEncoding.EncodeToString(data)
	header := Header(file.ContentType())
	return models.SelectedImage{
		DataURL: JoinDataURL(header, payload),
		Payload: payload,
	}, nil
}

// Header returns the data URL header for a declared content type
func Header(contentType string) string {
	return "data:" + validation.MediaType(contentType) + ";base64"
}

// SplitDataURL separates a data URL at its first comma
func SplitDataURL(dataURL string) (header, payload string, err error) {
	idx := strings.Index(dataURL, dataURLSeparator)
	if idx < 0 || !strings.HasPrefix(dataURL, "data:") {
		return "", "", fmt.Errorf("not a data URL")
	}
	return dataURL[:idx], dataURL[idx+1:], nil
}

// JoinDataURL is the inverse of SplitDataURL
func JoinDataURL(header, payload string) string {
	return header + dataURLSeparator + payload
}

// ctxReader stops reading once the context is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
