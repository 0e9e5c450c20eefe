package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func echoRemoteAddr() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.RemoteAddr))
	})
}

func TestTrustedRealIP(t *testing.T) {
	handler := TrustedRealIP([]string{"10.0.0.0/8", "192.168.1.5", "not-an-ip"})(echoRemoteAddr())

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted keeps own address", "203.0.113.9:5000", map[string]string{"X-Real-IP": "1.2.3.4"}, "203.0.113.9:5000"},
		{"trusted uses X-Real-IP", "10.1.2.3:5000", map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"bare trusted address", "192.168.1.5:80", map[string]string{"X-Real-IP": "1.2.3.4"}, "1.2.3.4"},
		{"invalid X-Real-IP falls back to XFF", "10.1.2.3:5000", map[string]string{"X-Real-IP": "nope", "X-Forwarded-For": "5.6.7.8"}, "5.6.7.8"},
		{"XFF skips trusted hops from the right", "10.1.2.3:5000", map[string]string{"X-Forwarded-For": "9.9.9.9, 5.6.7.8, 10.0.0.7"}, "5.6.7.8"},
		{"garbage XFF is ignored", "10.1.2.3:5000", map[string]string{"X-Forwarded-For": "junk"}, "10.1.2.3:5000"},
		{"no headers", "10.1.2.3:5000", nil, "10.1.2.3:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestAccessKey(t *testing.T) {
	handler := AccessKey(StaticCredentials{"alpha", "beta"}, "/api/health", "/unlock")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		path     string
		header   string
		cookie   string
		wantCode int
	}{
		{"header key", "/api/jobs", "beta", "", http.StatusNoContent},
		{"cookie key", "/", "", "alpha", http.StatusNoContent},
		{"wrong key on api", "/api/jobs", "gamma", "", http.StatusUnauthorized},
		{"missing key on page redirects", "/", "", "", http.StatusSeeOther},
		{"exempt health", "/api/health", "", "", http.StatusNoContent},
		{"exempt unlock", "/unlock", "", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(AccessKeyHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestAccessKey_Disabled(t *testing.T) {
	handler := AccessKey(nil)(echoRemoteAddr())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessKey_CustomChecker(t *testing.T) {
	var seen []string
	checker := CredentialFunc(func(_ context.Context, key string) bool {
		seen = append(seen, key)
		return strings.HasPrefix(key, "team-")
	})
	handler := AccessKey(checker)(echoRemoteAddr())

	for key, want := range map[string]int{"team-a": http.StatusOK, "guest": http.StatusUnauthorized} {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.Header.Set(AccessKeyHeader, key)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, key)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.ElementsMatch(t, []string{"team-a", "guest"}, seen, "empty key never reaches the checker")
}

func TestValidAccessKey(t *testing.T) {
	assert.True(t, ValidAccessKey("k", []string{"x", "k"}))
	assert.False(t, ValidAccessKey("", []string{""}))
	assert.False(t, ValidAccessKey("k", nil))
}

func TestLogger_CapturesStatus(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tea", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short", rec.Body.String())
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, "ERROR", levelFor(502).String())
	assert.Equal(t, "WARN", levelFor(404).String())
	assert.Equal(t, "INFO", levelFor(200).String())
}
