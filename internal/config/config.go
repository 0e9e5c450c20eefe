// Package config provides centralized configuration management for the formatter.
// Settings come from environment variables with sensible defaults and are
// validated on startup so a misconfigured server never begins accepting files.
package config

import "time"

// Processing modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Upload     UploadConfig
	Processing ProcessingConfig
	Remote     RemoteConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds the acceptance check and concurrency limits for uploads.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// AllowedExtensions are the extensions accepted at the upload surface.
	// An empty list accepts every extension and leaves dispatch to the parser.
	AllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS" default:".xlsx,.xls,.csv"`

	// MaxConcurrent is the maximum number of files processed in parallel (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for a processing slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single job (default: 2m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// ProcessingConfig selects the processing path and controls job retention.
type ProcessingConfig struct {
	// Mode is the authoritative processing path: local or remote (default: local)
	Mode string `env:"PROCESSING_MODE" default:"local"`

	// DateLayout is the Go time layout used when rendering dates (default: 1/2/2006)
	DateLayout string `env:"PROCESSING_DATE_LAYOUT" default:"1/2/2006"`

	// JobRetention is how long completed jobs stay downloadable (default: 1h)
	JobRetention time.Duration `env:"PROCESSING_JOB_RETENTION" default:"1h"`

	// SweepInterval is how often expired jobs are removed (default: 5m)
	SweepInterval time.Duration `env:"PROCESSING_SWEEP_INTERVAL" default:"5m"`
}

// RemoteConfig holds settings for the remote processing service.
type RemoteConfig struct {
	// URL is the remote endpoint receiving multipart uploads
	URL string `env:"REMOTE_PROCESSOR_URL" envAlt:"API_URL"`

	// Timeout bounds a single remote call (default: 60s)
	Timeout time.Duration `env:"REMOTE_TIMEOUT" default:"60s"`

	// Attempts is the number of tries for transient failures (default: 3)
	Attempts int `env:"REMOTE_ATTEMPTS" default:"3"`

	// RetryDelay is the initial backoff between attempts (default: 500ms)
	RetryDelay time.Duration `env:"REMOTE_RETRY_DELAY" default:"500ms"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for upload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAccessKey gates every page and API route behind a key (default: false)
	RequireAccessKey bool `env:"REQUIRE_ACCESS_KEY" default:"false"`

	// AccessKeys is a comma-separated list of accepted keys
	AccessKeys []string `env:"ACCESS_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text, json or pretty (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// IsRemote reports whether the remote processing service is authoritative.
func (c *ProcessingConfig) IsRemote() bool {
	return c.Mode == ModeRemote
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
