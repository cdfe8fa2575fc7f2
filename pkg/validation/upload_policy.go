package validation

import (
	"fmt"
	"mime"
	"strings"

	apperrors "lumina-face-analysis/internal/errors"
)

// MaxUploadBytes is the largest accepted photo (5 MiB)
const MaxUploadBytes int64 = 5 * 1024 * 1024

// Rejection reasons
const (
	ReasonUnsupportedType = "unsupported file type"
	ReasonTooLarge        = "file too large"
)

// User facing messages shown on the upload screen
const (
	MessageUnsupportedType = "请上传图片文件 (JPG, PNG)"
	MessageTooLarge        = "图片大小不能超过 5MB"
)

// FileMeta is the metadata the policy looks at. The file content is never read.
type FileMeta interface {
	ContentType() string
	Size() int64
}

// UploadRules defines the limits applied to a selected file
type UploadRules struct {
	// MediaTypePrefix the declared content type must start with
	MediaTypePrefix string
	MaxBytes        int64
}

// DefaultUploadRules returns the rules used by the upload screen
func DefaultUploadRules() UploadRules {
	return UploadRules{
		MediaTypePrefix: "image/",
		MaxBytes:        MaxUploadBytes,
	}
}

// Rejection explains why a file was refused
type Rejection struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Actual  string `json:"actual,omitempty"`
}

func (r *Rejection) Error() string {
	if r.Actual != "" {
		return fmt.Sprintf("%s (%s)", r.Reason, r.Actual)
	}
	return r.Reason
}

// AppError converts the rejection into a validation error for the transport layer
func (r *Rejection) AppError() *apperrors.AppError {
	return apperrors.NewValidationError(r.Message, r).WithDetails(r.Reason)
}

// UploadPolicy decides whether a selected file may be analysed
type UploadPolicy struct {
	rules UploadRules
}

// NewUploadPolicy creates a policy with default rules
func NewUploadPolicy() *UploadPolicy {
	return &UploadPolicy{rules: DefaultUploadRules()}
}

// NewUploadPolicyWithRules creates a policy with custom rules
func NewUploadPolicyWithRules(rules UploadRules) *UploadPolicy {
	return &UploadPolicy{rules: rules}
}

// Rules returns the rules in effect
func (p *UploadPolicy) Rules() UploadRules {
	return p.rules
}

// Validate checks the declared type first, then the size. The first failing
// rule is returned; nil means the file is accepted.
func (p *UploadPolicy) Validate(file FileMeta) *Rejection {
	if file == nil {
		return &Rejection{Reason: ReasonUnsupportedType, Message: MessageUnsupportedType}
	}

	declared := file.ContentType()
	if !p.isImageType(declared) {
		return &Rejection{
			Reason:  ReasonUnsupportedType,
			Message: MessageUnsupportedType,
			Actual:  declared,
		}
	}

	if size := file.Size(); size > p.rules.MaxBytes {
		return &Rejection{
			Reason:  ReasonTooLarge,
			Message: MessageTooLarge,
			Actual:  fmt.Sprintf("%d bytes", size),
		}
	}
	return nil
}

// MediaType returns the declared media type without parameters, lower cased.
// An unparsable value yields "".
func MediaType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

func (p *UploadPolicy) isImageType(declared string) bool {
	mt := MediaType(declared)
	return mt != "" && strings.HasPrefix(mt, p.rules.MediaTypePrefix) && len(mt) > len(p.rules.MediaTypePrefix)
}
