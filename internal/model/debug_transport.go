package model

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"
)

const redacted = "[REDACTED]"

var sensitiveHeaders = []string{
	"Authorization",
	"X-Api-Key",
	"X-Goog-Api-Key",
	"X-Auth-Token",
	"Cookie",
}

// DebugTransport logs outbound provider requests with credentials redacted.
type DebugTransport struct {
	base     http.RoundTripper
	provider string
	enabled  bool
}

func NewDebugTransport(base http.RoundTripper, provider string, enabled bool) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DebugTransport{base: base, provider: provider, enabled: enabled}
}

func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.enabled && req.Method == http.MethodPost {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil && t.enabled {
		logger.WithFields(logger.Fields{"provider": t.provider}).Errorf("provider request failed: %v", err)
	} else if t.enabled {
		logger.WithFields(logger.Fields{
			"provider": t.provider,
			"status":   resp.StatusCode,
		}).Debug("provider response")
	}
	return resp, err
}

func (t *DebugTransport) logRequest(req *http.Request) {
	headers := make(map[string]string, len(req.Header))
	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			headers[name] = redacted
			continue
		}
		headers[name] = strings.Join(values, ", ")
	}

	fields := logger.Fields{
		"provider": t.provider,
		"method":   req.Method,
		"url":      redactURL(req.URL),
		"headers":  headers,
	}

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			logger.WithFields(fields).Errorf("failed to read request body: %v", err)
			return
		}
		// restore the body for the real round trip
		req.Body = io.NopCloser(bytes.NewReader(body))
		fields["body_size"] = len(body)
		fields["body"] = string(body)
	}

	logger.WithFields(fields).Info("provider request")
}

func isSensitiveHeader(name string) bool {
	for _, h := range sensitiveHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}

func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", redacted)
		clone := *u
		clone.RawQuery = q.Encode()
		return clone.String()
	}
	return u.String()
}
