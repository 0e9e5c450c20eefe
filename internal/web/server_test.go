package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/fileformatter/internal/application"
	"github.com/JonMunkholm/fileformatter/internal/config"
	"github.com/JonMunkholm/fileformatter/internal/core"
	_ "github.com/JonMunkholm/fileformatter/internal/core/formats"
	"github.com/JonMunkholm/fileformatter/internal/web/middleware"
)

func testConfig(t *testing.T, vars map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func newTestServer(t *testing.T, vars map[string]string) (*Server, *core.Service) {
	t.Helper()
	cfg := testConfig(t, vars)
	svc := core.NewService(core.Pipeline{}.Processor(), core.ServiceConfig{
		MaxFileSize:       cfg.Upload.MaxFileSize,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		MaxConcurrent:     cfg.Upload.MaxConcurrent,
		MaxWait:           cfg.Upload.MaxWaitTime,
		JobTimeout:        cfg.Upload.Timeout,
	})
	srv := NewServer(svc, cfg)
	t.Cleanup(func() { _ = srv.Shutdown(t.Context()) })
	return srv, svc
}

// uploadRequest builds a multipart request with one file and extra fields.
func uploadRequest(t *testing.T, target, name string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

const sampleCSV = " Customer-ID# ,signup_date\n7,2024-01-15\n,\n8,44197\n"

func TestFormat_ReturnsWorkbook(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/api/format", "customers.csv", []byte(sampleCSV), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, core.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "customers_formatted.xlsx")
	assert.NotEmpty(t, rec.Header().Get("X-Job-ID"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(core.SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Customer Id", "Signup Date"},
		{"7", "1/15/2024"},
		{"8", "1/1/2021"},
	}, rows)
}

func TestFormat_ExplicitOptions(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	// the marker field turns absent checkboxes off
	req := uploadRequest(t, "/api/format", "customers.csv", []byte(sampleCSV), map[string]string{
		"options":            "1",
		"standardizeHeaders": "true",
	})
	rec := serve(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(core.SheetName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer Id", "Signup Date"}, rows[0])
	assert.Len(t, rows, 4, "blank row kept")
	assert.Equal(t, "2024-01-15", rows[1][1], "dates untouched")
}

func TestFormat_Errors(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"UPLOAD_MAX_FILE_SIZE": "64"})

	tests := []struct {
		name       string
		file       string
		data       []byte
		wantStatus int
		wantCode   string
	}{
		{"no file", "", nil, http.StatusBadRequest, "FILE004"},
		{"type not allowed", "notes.txt", []byte("hi"), http.StatusUnsupportedMediaType, "FILE007"},
		{"too large", "big.csv", bytes.Repeat([]byte("a"), 65), http.StatusRequestEntityTooLarge, "FILE001"},
		{"header only", "empty.csv", []byte("a,b\n"), http.StatusUnprocessableEntity, "FILE005"},
		{"corrupt workbook", "bad.xlsx", []byte("nope"), http.StatusUnprocessableEntity, "FILE002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(srv, uploadRequest(t, "/api/format", tt.file, tt.data, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestJobsLifecycle(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/api/jobs", "customers.csv", []byte(sampleCSV), nil))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var submitted core.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.ID)
	assert.Equal(t, "/api/jobs/"+submitted.ID, rec.Header().Get("Location"))

	_, err := svc.Wait(t.Context(), submitted.ID)
	require.NoError(t, err)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/jobs/"+submitted.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var job core.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, application.StateComplete, job.State)
	assert.Equal(t, "customers_formatted.xlsx", job.ResultName)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), submitted.ID)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/jobs/"+submitted.ID+"/download", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.XLSXContentType, rec.Header().Get("Content-Type"))

	rec = serve(srv, httptest.NewRequest(http.MethodDelete, "/api/jobs/"+submitted.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/jobs/"+submitted.ID+"/download", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UPL003", decodeError(t, rec).Code)
}

func TestPreview(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/api/preview?rows=1", "scores.csv", []byte("name,score\nal,10\nbo,20\n"), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview struct {
		Headers   []string             `json:"headers"`
		TotalRows int                  `json:"total_rows"`
		Columns   []core.ColumnSummary `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, []string{"name", "score"}, preview.Headers)
	assert.Equal(t, 2, preview.TotalRows)
	require.Len(t, preview.Columns, 2)
	require.NotNil(t, preview.Columns[1].Stats)
	assert.Equal(t, 15.0, preview.Columns[1].Stats.Mean)
	assert.Contains(t, rec.Body.String(), `"rows":[["al",10]]`)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, config.ModeLocal, health.Mode)
	assert.Equal(t, 5, health.Limiter.MaxConcurrent)
	assert.Contains(t, health.Extensions, ".csv")
}

func TestPages(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/jobs"`)
	assert.Contains(t, rec.Body.String(), `accept=".xlsx,.xls,.csv"`)
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	rec = serve(srv, uploadRequest(t, "/jobs", "a.csv", []byte("h\nv\n"), map[string]string{"options": "1"}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/jobs/"))

	id := strings.TrimPrefix(loc, "/jobs/")
	_, err := svc.Wait(t.Context(), id)
	require.NoError(t, err)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, loc, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a_formatted.xlsx")
	assert.NotContains(t, rec.Body.String(), `http-equiv="refresh"`)

	rec = serve(srv, httptest.NewRequest(http.MethodPost, loc+"/delete", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, svc.Jobs())
}

func TestPages_RejectedUploadShowsError(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/jobs", "notes.pdf", []byte("%PDF"), nil))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "FILE007")
}

func TestPages_EscapeFileNames(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	_, _, err := svc.Format(t.Context(), core.Source{Name: "<script>x</script>.csv", Data: []byte("h\nv\n")}, core.DefaultOptions())
	require.NoError(t, err)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestAccessKeyGate(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"REQUIRE_ACCESS_KEY": "true",
		"ACCESS_KEYS":        "s3cret",
	})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/unlock", rec.Header().Get("Location"))

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	form := url.Values{"key": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/unlock", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = serve(srv, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH001")

	form = url.Values{"key": {"s3cret"}}
	req = httptest.NewRequest(http.MethodPost, "/unlock", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = serve(srv, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, http.StatusOK, serve(srv, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("X-Access-Key", "s3cret")
	assert.Equal(t, http.StatusOK, serve(srv, req).Code)
}

func TestAccessKeyGate_InjectedChecker(t *testing.T) {
	cfg := testConfig(t, nil)
	svc := core.NewService(core.Pipeline{}.Processor(), core.ServiceConfig{})
	checker := middleware.CredentialFunc(func(_ context.Context, key string) bool { return key == "from-vault" })
	srv := NewServer(svc, cfg, WithCredentials(checker))
	t.Cleanup(func() { _ = srv.Shutdown(t.Context()) })

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set(middleware.AccessKeyHeader, "from-vault")
	assert.Equal(t, http.StatusOK, serve(srv, req).Code)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"RATE_LIMIT_REQUESTS_PER_MINUTE": "2"})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
	}
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := &rateLimiter{visitors: make(map[string]*visitor), rate: 1, window: 20 * time.Millisecond, done: make(chan struct{})}

	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("2.2.2.2"), "limits are per IP")

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.allow("1.1.1.1"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(core.ErrTooManyUploads))
	assert.Equal(t, http.StatusConflict, statusFor(core.ErrJobNotComplete))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(core.EmptySource("")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
