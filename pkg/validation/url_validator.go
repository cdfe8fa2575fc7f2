package validation

import (
	"net"
	"net/url"
	"slices"
	"strings"

	apperrors "lumina-face-analysis/internal/errors"
)

// URLRules decide which photo URLs the server is willing to download
type URLRules struct {
	Schemes []string
	// Hosts restricts downloads to these hosts when non-empty. An entry
	// starting with "." matches any subdomain of it.
	Hosts []string
	// AllowPrivateHosts permits localhost and loopback, private or link-local
	// IP literals
	AllowPrivateHosts bool
}

// DefaultURLRules accept public http and https hosts
func DefaultURLRules() URLRules {
	return URLRules{Schemes: []string{"http", "https"}}
}

// URLValidator checks photo URLs submitted instead of a file upload
type URLValidator struct {
	rules URLRules
}

// NewURLValidator creates a URL validator with DefaultURLRules
func NewURLValidator() *URLValidator {
	return NewURLValidatorWithRules(DefaultURLRules())
}

// NewURLValidatorWithRules normalises rules to lower case
func NewURLValidatorWithRules(rules URLRules) *URLValidator {
	norm := URLRules{AllowPrivateHosts: rules.AllowPrivateHosts}
	for _, s := range rules.Schemes {
		norm.Schemes = append(norm.Schemes, strings.ToLower(strings.TrimSpace(s)))
	}
	for _, h := range rules.Hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			norm.Hosts = append(norm.Hosts, h)
		}
	}
	return &URLValidator{rules: norm}
}

// Rules returns the normalised rules
func (v *URLValidator) Rules() URLRules { return v.rules }

// ValidateImageURL returns a validation AppError naming the first rule imageURL breaks
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	u, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	switch host := strings.ToLower(u.Hostname()); {
	case !slices.Contains(v.rules.Schemes, strings.ToLower(u.Scheme)):
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	case u.User != nil:
		return apperrors.NewValidationError("URL must not contain credentials", nil)
	case host == "":
		return apperrors.NewValidationError("URL must have a valid host", nil)
	case !v.rules.AllowPrivateHosts && isPrivateHost(host):
		return apperrors.NewValidationError("URL host is not public", nil).WithDetails(host)
	case !v.isHostAllowed(host):
		return apperrors.NewValidationError("URL host not allowed", nil).WithDetails(host)
	}
	return nil
}

func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.rules.Hosts) == 0 {
		return true
	}
	return slices.ContainsFunc(v.rules.Hosts, func(allowed string) bool {
		if strings.HasPrefix(allowed, ".") {
			return strings.HasSuffix(host, allowed)
		}
		return host == allowed
	})
}

// isPrivateHost only looks at the literal host; names are not resolved
func isPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
