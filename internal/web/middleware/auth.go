package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
)

const (
	// AccessKeyHeader carries the key for API clients.
	AccessKeyHeader = "X-Access-Key"

	// AccessCookie carries the key for browsers after unlocking.
	AccessCookie = "formatter_access"
)

// CredentialChecker decides whether an access key is valid.
type CredentialChecker interface {
	Check(ctx context.Context, key string) bool
}

// CredentialFunc adapts a function to CredentialChecker.
type CredentialFunc func(ctx context.Context, key string) bool

// Check calls f.
func (f CredentialFunc) Check(ctx context.Context, key string) bool {
	return f(ctx, key)
}

// StaticCredentials accepts any of a fixed list of keys.
type StaticCredentials []string

// Check compares key against every configured key in constant time.
func (c StaticCredentials) Check(_ context.Context, key string) bool {
	return ValidAccessKey(key, c)
}

// AccessKey returns middleware that requires a key accepted by checker in the
// X-Access-Key header or the access cookie. A nil checker lets every request
// through.
//
// Rejected API requests (paths under /api/) get a JSON 401. Browser requests
// are redirected to /unlock.
func AccessKey(checker CredentialChecker, exempt ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if checker == nil || isExempt(r.URL.Path, exempt) {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(AccessKeyHeader)
			if key == "" {
				if c, err := r.Cookie(AccessCookie); err == nil {
					key = c.Value
				}
			}

			if key != "" && checker.Check(r.Context(), key) {
				next.ServeHTTP(w, r)
				return
			}

			slog.Warn("auth: invalid access key",
				"path", r.URL.Path,
				"method", r.Method,
				"remote_addr", r.RemoteAddr,
				"key_present", key != "",
			)

			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid access key","message":"Incorrect access key","code":"AUTH001"}`))
				return
			}
			http.Redirect(w, r, "/unlock", http.StatusSeeOther)
		})
	}
}

// ValidAccessKey checks key against every configured key in constant time.
// An empty key never matches.
func ValidAccessKey(key string, validKeys []string) bool {
	if key == "" {
		return false
	}
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}

func isExempt(path string, exempt []string) bool {
	for _, p := range exempt {
		if path == p {
			return true
		}
	}
	return false
}
