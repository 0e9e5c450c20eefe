// Package remote sends uploads to an external formatting service.
//
// The service accepts a multipart POST with the file in the "file" field and
// answers with the processed file as the response body. The response content
// type decides the download name: CSV responses become
// "processed_<stem>.csv", spreadsheet responses "<stem>_formatted.xlsx",
// anything else "processed_<name>". A Content-Disposition filename from the
// service wins over all of these.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = 500 * time.Millisecond

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 64 << 20

	csvContentType = "text/csv"
)

// ErrUnavailable is returned when the service could not be reached or kept
// failing after every retry.
var ErrUnavailable = errors.New("remote processor unavailable")

// ErrResponseTooLarge is returned when a response body exceeds
// maxResponseSize. It is not retried.
var ErrResponseTooLarge = errors.New("remote processor response too large")

// StatusError is a non-retryable rejection from the service (4xx).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote processor rejected file: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote processor rejected file: status %d: %s", e.StatusCode, e.Body)
}

// Options tunes a Client. Zero values use defaults.
type Options struct {
	Timeout    time.Duration // per attempt, default 60s
	Attempts   int           // default 3
	RetryDelay time.Duration // first backoff, default 500ms
	HTTPClient *http.Client
}

// Result is a processed file returned by the service.
type Result struct {
	Name        string
	Data        []byte
	ContentType string
}

// Client talks to one formatting service endpoint.
type Client struct {
	url        string
	http       *http.Client
	timeout    time.Duration
	attempts   int
	retryDelay time.Duration
}

// New creates a client posting to url.
func New(url string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Client{
		url:        url,
		http:       opts.HTTPClient,
		timeout:    opts.Timeout,
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
	}
}

// Upload sends one file and returns the processed result.
func (c *Client) Upload(ctx context.Context, name string, data []byte) (*Result, error) {
	body, contentType, err := encodeFile(name, data)
	if err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}

	var res *Result
	attempt := 0
	err = Retry(ctx, c.attempts, c.retryDelay, func() error {
		attempt++
		r, err := c.post(ctx, name, body, contentType)
		if err != nil {
			slog.Debug("remote attempt failed", "file", name, "attempt", attempt, "error", err)
			return err
		}
		res = r
		return nil
	})
	if err == nil {
		return res, nil
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) || errors.Is(err, ErrResponseTooLarge) || ctx.Err() != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrUnavailable, attempt, err)
}

// Process uploads src so the client can serve as a core.Processor. The
// service applies its own formatting rules, so opts are not sent.
func (c *Client) Process(ctx context.Context, src core.Source, _ core.FormattingOptions) (*core.Artifact, error) {
	res, err := c.Upload(ctx, src.Name, src.Data)
	if err != nil {
		return nil, err
	}
	return &core.Artifact{
		Name:        res.Name,
		Data:        res.Data,
		ContentType: res.ContentType,
	}, nil
}

func (c *Client) post(ctx context.Context, name string, body []byte, contentType string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, Retryable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, Retryable(fmt.Errorf("read response: %w", err))
	}
	if len(data) > maxResponseSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, maxResponseSize)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, Retryable(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(data)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	respType := resp.Header.Get("Content-Type")
	return &Result{
		Name:        resultName(name, respType, resp.Header.Get("Content-Disposition")),
		Data:        data,
		ContentType: respType,
	}, nil
}

func encodeFile(name string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", path.Base(name))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// resultName picks the download name for a response.
func resultName(uploaded, contentType, disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if fn := path.Base(params["filename"]); fn != "" && fn != "." && fn != "/" {
				return fn
			}
		}
	}

	base := path.Base(strings.ReplaceAll(uploaded, `\`, "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case csvContentType:
		return "processed_" + stem + ".csv"
	case core.XLSXContentType:
		return core.FormattedName(uploaded)
	default:
		return "processed_" + base
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
