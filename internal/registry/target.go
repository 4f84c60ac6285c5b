package registry

import (
	"net/url"
	"strings"
)

// ValidateTarget checks that the target is an absolute http(s) URL with a
// dotted hostname. Returns the trimmed target or ErrInvalidTarget.
func ValidateTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidTarget
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidTarget
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrInvalidTarget
	}

	host := u.Hostname()
	if host == "" || !strings.Contains(host, ".") {
		return "", ErrInvalidTarget
	}

	return raw, nil
}
