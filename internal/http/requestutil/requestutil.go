// Package requestutil holds small helpers for reading request metadata.
package requestutil

import (
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

const (
	HeaderRequestID     = "X-Request-ID"
	headerForwardedFor  = "X-Forwarded-For"
	headerRealIP        = "X-Real-IP"
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

var (
	requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	// forced by tests to exercise the clock-derived ids
	skipRandom atomic.Bool
)

// SanitizeRequestID keeps a caller-supplied id when it is short and URL safe, otherwise mints one.
func SanitizeRequestID(incoming string) string {
	incoming = strings.TrimSpace(incoming)
	if requestIDPattern.MatchString(incoming) {
		return incoming
	}
	return NewRequestID()
}

// NewRequestID returns 16 hex chars of randomness, or a clock-derived id if the RNG fails.
func NewRequestID() string {
	var b [8]byte
	if !skipRandom.Load() {
		if _, err := rand.Read(b[:]); err == nil {
			return hex.EncodeToString(b[:])
		}
	}
	return hex.EncodeToString([]byte(time.Now().UTC().Format("150405.000000000")))
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the remote host without port.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get(headerForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get(headerRealIP)); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	token, ok := strings.CutPrefix(r.Header.Get(headerAuthorization), bearerPrefix)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
