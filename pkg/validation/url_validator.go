package validation

import (
	"net/url"
	"strconv"
	"strings"

	apperrors "go-motion-inspector/internal/errors"
)

// URLValidator checks camera snapshot URLs
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator creates a new URL validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// ValidateCameraURL validates the snapshot URL of a camera
func (v *URLValidator) ValidateCameraURL(cameraURL string) error {
	_, err := v.ParseCameraURL(cameraURL)
	return err
}

// ParseCameraURL validates the snapshot URL of a camera and returns it parsed.
// Credentials in the user info are accepted; use RedactURL before logging.
func (v *URLValidator) ParseCameraURL(cameraURL string) (*url.URL, error) {
	if strings.TrimSpace(cameraURL) == "" {
		return nil, apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(cameraURL)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return nil, apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Hostname() == "" {
		return nil, apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if !isPortValid(parsedURL.Port()) {
		return nil, apperrors.NewValidationError("URL port out of range", nil).
			WithDetails("port=%s", parsedURL.Port())
	}

	// The fragment never reaches the camera, it is almost always a typo
	if parsedURL.Fragment != "" {
		return nil, apperrors.NewValidationError("URL must not contain a fragment", nil)
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return nil, apperrors.NewValidationError("URL host not allowed", nil)
	}

	return parsedURL, nil
}

// RedactURL replaces the password of a URL with "xxxxx".
// Unparseable input is returned without its user info part.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if at := strings.LastIndex(rawURL, "@"); at >= 0 {
			if scheme := strings.Index(rawURL, "://"); scheme >= 0 && scheme < at {
				return rawURL[:scheme+3] + rawURL[at+1:]
			}
		}
		return rawURL
	}
	return u.Redacted()
}

// isPortValid accepts an empty port or a number in 1..65535
func isPortValid(port string) bool {
	if port == "" {
		return true
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed checks the host name, port excluded, against the allowed list.
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}
