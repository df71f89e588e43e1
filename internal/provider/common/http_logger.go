package common

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/johanforsgren/mantella/internal/logger"
)

const (
	HeaderRequestID  = "X-Request-ID"
	HeaderAPIRequest = "OCS-APIRequest"
	UserAgent        = "mantella/1.0"
)

// LoggingTransport wraps an http.RoundTripper to tag and log every request.
type LoggingTransport struct {
	Transport http.RoundTripper
}

// NewLoggingTransport creates a new logging transport wrapper
func NewLoggingTransport(transport http.RoundTripper) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &LoggingTransport{
		Transport: transport,
	}
}

// RoundTrip marks the request as an API call, assigns it a request id the
// server echoes into its own log, and records the outcome.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	req = req.Clone(req.Context())
	req.Header.Set(HeaderAPIRequest, "true")
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	requestID := req.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set(HeaderRequestID, requestID)
	}

	target := RedactURL(req.URL.String())
	logger.LogDebug("request %s headers: %v", requestID, RedactHeaders(req.Header))
	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		logger.LogError("HTTP_REQUEST", req.Method+" "+target, err)
		logger.LogHTTP(req.Method, target, 0, duration, requestID)
		return nil, err
	}

	logger.LogHTTP(req.Method, target, resp.StatusCode, duration, requestID)
	return resp, nil
}

// RedactURL strips userinfo from a URL before it is written to the log.
func RedactURL(raw string) string {
	schemeEnd := strings.Index(raw, "://")
	if schemeEnd < 0 {
		return raw
	}
	rest := raw[schemeEnd+3:]
	hostEnd := strings.IndexAny(rest, "/?#")
	if hostEnd < 0 {
		hostEnd = len(rest)
	}
	if at := strings.LastIndex(rest[:hostEnd], "@"); at >= 0 {
		return raw[:schemeEnd+3] + rest[at+1:]
	}
	return raw
}

func isSensitiveHeader(name string) bool {
	lowerName := strings.ToLower(name)
	sensitiveHeaders := []string{
		"authorization",
		"x-api-key",
		"api-key",
		"x-auth-token",
		"cookie",
		"set-cookie",
	}

	for _, sensitive := range sensitiveHeaders {
		if lowerName == sensitive {
			return true
		}
	}

	return false
}

// RedactHeaders returns a copy of h that is safe to log.
func RedactHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		if isSensitiveHeader(name) {
			out[name] = []string{"[REDACTED]"}
			continue
		}
		out[name] = append([]string(nil), values...)
	}
	return out
}
