package validation

import (
	"testing"

	apperrors "lumina-face-analysis/internal/errors"
)

func TestNewURLValidator_Defaults(t *testing.T) {
	rules := NewURLValidator().Rules()
	if len(rules.Schemes) != 2 || rules.Schemes[0] != "http" || rules.Schemes[1] != "https" {
		t.Errorf("Unexpected default schemes: %v", rules.Schemes)
	}
	if len(rules.Hosts) != 0 || rules.AllowPrivateHosts {
		t.Errorf("Unexpected default host rules: %+v", rules)
	}
}

func TestNewURLValidatorWithRules_Normalises(t *testing.T) {
	rules := NewURLValidatorWithRules(URLRules{
		Schemes: []string{" HTTPS "},
		Hosts:   []string{"Photos.Example.com", "  ", ".CDN.example.com"},
	}).Rules()
	if len(rules.Schemes) != 1 || rules.Schemes[0] != "https" {
		t.Errorf("Unexpected schemes %v", rules.Schemes)
	}
	if len(rules.Hosts) != 2 || rules.Hosts[0] != "photos.example.com" || rules.Hosts[1] != ".cdn.example.com" {
		t.Errorf("Unexpected hosts %v", rules.Hosts)
	}
}

func TestValidateImageURL(t *testing.T) {
	open := NewURLValidator()
	lan := NewURLValidatorWithRules(URLRules{Schemes: []string{"http"}, AllowPrivateHosts: true})
	restricted := NewURLValidatorWithRules(URLRules{
		Schemes: []string{"https"},
		Hosts:   []string{"photos.example.com", ".cdn.example.com"},
	})

	tests := []struct {
		name      string
		validator *URLValidator
		url       string
		wantMsg   string // empty means valid
	}{
		{"plain https", open, "https://example.com/face.jpg", ""},
		{"public ip", open, "http://93.184.216.34/face.png", ""},
		{"upper case scheme", open, "HTTPS://example.com/face.png", ""},
		{"empty", open, "   ", "URL cannot be empty"},
		{"ftp", open, "ftp://example.com/face.jpg", "URL scheme not allowed"},
		{"data url", open, "data:image/png;base64,iVBORw0KGgo=", "URL scheme not allowed"},
		{"credentials", open, "https://user:pw@example.com/face.jpg", "URL must not contain credentials"},
		{"no host", open, "http:///path", "URL must have a valid host"},
		{"port only", open, "http://:8080/face.jpg", "URL must have a valid host"},
		{"loopback", open, "http://127.0.0.1:8080/face.jpg", "URL host is not public"},
		{"private range", open, "http://192.168.1.1/face.png", "URL host is not public"},
		{"link local", open, "http://169.254.169.254/latest", "URL host is not public"},
		{"ipv6 loopback", open, "http://[::1]/face.png", "URL host is not public"},
		{"localhost", open, "http://LocalHost/face.png", "URL host is not public"},
		{"private allowed", lan, "http://192.168.1.1/face.png", ""},
		{"allowed host", restricted, "https://photos.example.com/a.jpg", ""},
		{"allowed host with port", restricted, "https://photos.example.com:8443/a.jpg", ""},
		{"allowed subdomain", restricted, "https://eu.cdn.example.com/a.jpg", ""},
		{"http on https only", restricted, "http://photos.example.com/a.jpg", "URL scheme not allowed"},
		{"foreign host", restricted, "https://untrusted.com/a.jpg", "URL host not allowed"},
		{"suffix trick", restricted, "https://evilphotos.example.com/a.jpg", "URL host not allowed"},
		{"unrelated suffix", restricted, "https://cdn.example.com.evil.io/a.jpg", "URL host not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.ValidateImageURL(tt.url)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Expected %q to pass, got: %v", tt.url, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected %q to fail validation", tt.url)
			}
			appErr, ok := err.(*apperrors.AppError)
			if !ok {
				t.Fatalf("Expected AppError, got: %T", err)
			}
			if appErr.Message != tt.wantMsg {
				t.Errorf("Expected %q, got %q", tt.wantMsg, appErr.Message)
			}
			if appErr.Type != apperrors.ErrorTypeValidation {
				t.Errorf("Expected validation error, got %s", appErr.Type)
			}
		})
	}
}
