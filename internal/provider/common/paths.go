package common

import (
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidPagePath = fmt.Errorf("%w: invalid page path", ErrProtocol)

// ParsePagePath splits "collective/file.md" into its collective and file parts.
func ParsePagePath(path string) (collective, file string, err error) {
	collective, file, ok := strings.Cut(path, "/")
	if !ok || collective == "" || file == "" {
		return "", "", fmt.Errorf("%w: expected 'collective/file.md', got '%s'", ErrInvalidPagePath, path)
	}
	return collective, file, nil
}

// CollectiveOf returns the leading segment of a page path.
func CollectiveOf(path string) string {
	collective, _, _ := strings.Cut(path, "/")
	return collective
}

// EscapePath escapes each segment of a slash-separated relative path.
func EscapePath(rel string) string {
	segments := strings.Split(rel, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// NormalizeServer trims the trailing slash and defaults to https.
func NormalizeServer(server string) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", fmt.Errorf("server URL is required")
	}
	if !strings.Contains(server, "://") {
		server = "https://" + server
	}

	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL '%s': %w", server, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported server scheme '%s'", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL '%s': missing host", server)
	}

	return strings.TrimRight(server, "/"), nil
}
