package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fileformatter/internal/application"
	"github.com/JonMunkholm/fileformatter/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLayout_Refresh(t *testing.T) {
	html := render(t, Layout("Report", 2, templ.Raw("<p>body</p>")))
	assert.Contains(t, html, `<meta http-equiv="refresh" content="2">`)
	assert.Contains(t, html, "<title>Report - Spreadsheet Formatter</title>")
	assert.Contains(t, html, "<main><h1><a href=\"/\">Spreadsheet Formatter</a></h1><p>body</p></main>")

	html = render(t, Layout("Report", 0, templ.NopComponent))
	assert.NotContains(t, html, "http-equiv")
}

func TestErrorAlert(t *testing.T) {
	html := render(t, ErrorAlert("<b>bad</b>", "", "FILE001"))
	assert.Contains(t, html, "&lt;b&gt;bad&lt;/b&gt;")
	assert.NotContains(t, html, "<p>")
	assert.Contains(t, html, "<small>Code: FILE001</small>")
}

func TestUploadPage(t *testing.T) {
	opts := core.DefaultOptions()
	opts.CustomPrompt = "keep </textarea>"

	html := render(t, UploadPage(UploadPageData{
		Options:   opts,
		Accept:    []string{".csv", ".xlsx"},
		MaxSizeMB: 10,
		Error:     &core.UserMessage{Message: "System is busy", Code: "UPL002"},
	}))

	assert.Contains(t, html, `accept=".csv,.xlsx"`)
	assert.Contains(t, html, "Accepted: .csv, .xlsx. Up to 10 MB.")
	assert.Contains(t, html, `name="cleanData" value="true" checked>`)
	assert.Contains(t, html, `name="addSummary" value="true">`)
	assert.Contains(t, html, "keep &lt;/textarea&gt;")
	assert.Contains(t, html, "UPL002")
	assert.Contains(t, html, "No files formatted yet.")
}

func TestUploadPage_RemoteModeHidesOptions(t *testing.T) {
	html := render(t, UploadPage(UploadPageData{RemoteMode: true}))
	assert.NotContains(t, html, "<fieldset>")
	assert.NotContains(t, html, "accept=")
}

func TestJobPage(t *testing.T) {
	finished := time.Now()
	done := core.Job{
		ID:         "abc",
		FileName:   "sales.csv",
		Size:       2048,
		Path:       "local",
		State:      application.StateComplete,
		ResultName: "sales_formatted.xlsx",
		Rows:       12,
		CreatedAt:  finished,
		FinishedAt: &finished,
	}

	html := render(t, JobPage(done))
	assert.NotContains(t, html, "http-equiv")
	assert.Contains(t, html, `href="/api/jobs/abc/download">Download sales_formatted.xlsx</a>`)
	assert.Contains(t, html, `action="/jobs/abc/delete"`)
	assert.Contains(t, html, "<tr><th>Size</th><td>2.00 KB</td></tr>")
	assert.Contains(t, html, "<tr><th>Rows</th><td>12</td></tr>")

	running := core.Job{ID: "def", FileName: "big.xlsx", State: application.StateProcessing}
	html = render(t, JobPage(running))
	assert.Contains(t, html, `<meta http-equiv="refresh" content="1">`)
	assert.Contains(t, html, "Processing your file...")
	assert.NotContains(t, html, "/download")
}

func TestCompletedFiles(t *testing.T) {
	finished := time.Now()
	html := render(t, CompletedFiles([]core.Job{
		{ID: "a", FileName: "one.csv", State: application.StateComplete, Rows: 3, CreatedAt: finished, FinishedAt: &finished},
		{ID: "b", FileName: "two.csv", State: application.StateUpload, Error: &core.UserMessage{Code: "FILE005"}, FinishedAt: &finished},
	}))

	assert.Contains(t, html, `<a href="/jobs/a">one.csv</a>`)
	assert.Contains(t, html, "<td>Complete</td><td>3</td>")
	assert.Contains(t, html, "<td>Failed</td><td></td>")
	assert.Equal(t, 1, bytes.Count([]byte(html), []byte("Download")))
}

func TestUnlockPage(t *testing.T) {
	html := render(t, UnlockPage(&core.UserMessage{Message: "Invalid access key", Code: "AUTH001"}))
	assert.Contains(t, html, `action="/unlock"`)
	assert.Contains(t, html, `type="password" name="key"`)
	assert.Contains(t, html, "AUTH001")
}
