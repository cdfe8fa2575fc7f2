package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", NewValidationError("bad file", nil), ErrorTypeValidation, http.StatusUnprocessableEntity},
		{"encoding", NewEncodingError("unreadable", nil), ErrorTypeEncoding, http.StatusUnprocessableEntity},
		{"remote", NewRemoteAnalysisError("analysis failed", nil), ErrorTypeRemoteAnalysis, http.StatusBadGateway},
		{"network", NewNetworkError("fetch failed", nil), ErrorTypeNetwork, http.StatusBadGateway},
		{"timeout", NewTimeoutError("too slow", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"unauthorized", NewUnauthorizedError("no", nil), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{"not found", NewNotFoundError("missing", nil), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("busy", nil), ErrorTypeConflict, http.StatusConflict},
		{"internal", NewInternalError("boom", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, tt.err.Type)
			}
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, tt.err.StatusCode)
			}
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewRemoteAnalysisError("analysis failed", cause)

	want := "remote_analysis: analysis failed (caused by: connection reset)"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}

	plain := NewValidationError("file too large", nil)
	if plain.Error() != "validation: file too large" {
		t.Errorf("Unexpected message: %q", plain.Error())
	}
}

func TestIsType_WrappedChain(t *testing.T) {
	err := fmt.Errorf("select file: %w", NewEncodingError("read failed", nil))

	if !IsType(err, ErrorTypeEncoding) {
		t.Error("Expected wrapped encoding error to be detected")
	}
	if IsType(err, ErrorTypeValidation) {
		t.Error("Did not expect validation type")
	}
	if IsType(errors.New("plain"), ErrorTypeInternal) {
		t.Error("Plain errors have no type")
	}
}

func TestGetStatusCode(t *testing.T) {
	if code := GetStatusCode(NewNotFoundError("session", nil)); code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", code)
	}
	if code := GetStatusCode(errors.New("unknown")); code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for plain errors, got %d", code)
	}
}

func TestWithDetails_DoesNotMutateOriginal(t *testing.T) {
	base := NewValidationError("unsupported file type", nil)
	detailed := base.WithDetails("text/plain")

	if base.Details != "" {
		t.Error("Expected original to stay without details")
	}
	if detailed.Details != "text/plain" || detailed.Type != ErrorTypeValidation {
		t.Errorf("Unexpected detailed error: %+v", detailed)
	}
}
