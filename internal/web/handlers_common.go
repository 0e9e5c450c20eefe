package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

const (
	// defaultMaxUploadSize bounds request bodies when no file size limit is configured (100MB).
	defaultMaxUploadSize = 100 << 20

	// formOverhead is the room left for multipart framing and option fields.
	formOverhead = 1 << 20

	// multipartMemory is how much of a form is buffered in memory before spilling to disk.
	multipartMemory = 32 << 20
)

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// readUpload reads the "file" field of a multipart request into a Source.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.Source, error) {
	limit := int64(defaultMaxUploadSize)
	if s.cfg.Upload.MaxFileSize > 0 {
		limit = s.cfg.Upload.MaxFileSize + formOverhead
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			return core.Source{}, fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, limit)
		}
		return core.Source{}, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return core.Source{}, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return core.Source{}, fmt.Errorf("read upload: %w", err)
	}

	src := core.Source{
		Name:        header.Filename,
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}
	if ct, _, err := mime.ParseMediaType(src.ContentType); err == nil && ct == "application/octet-stream" {
		src.ContentType = ""
	}

	// browsers expose File.lastModified in milliseconds since the epoch
	if ms, err := strconv.ParseInt(r.FormValue("lastModified"), 10, 64); err == nil && ms > 0 {
		src.ModTime = time.UnixMilli(ms)
	}
	return src, nil
}

// parseOptions reads formatting options from form fields. Without the
// "options" marker field, absent flags take their defaults; with it, absent
// flags are off, matching unchecked HTML checkboxes.
func parseOptions(r *http.Request) core.FormattingOptions {
	explicit := r.FormValue("options") != ""
	defaults := core.DefaultOptions()

	flag := func(name string, def bool) bool {
		v := r.FormValue(name)
		if v == "" {
			return def && !explicit
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return v == "on"
		}
		return b
	}

	return core.FormattingOptions{
		CleanData:          flag("cleanData", defaults.CleanData),
		StandardizeHeaders: flag("standardizeHeaders", defaults.StandardizeHeaders),
		RemoveEmpty:        flag("removeEmpty", defaults.RemoveEmpty),
		FormatDates:        flag("formatDates", defaults.FormatDates),
		AddSummary:         flag("addSummary", defaults.AddSummary),
		CustomPrompt:       r.FormValue("customPrompt"),
	}
}

// writeAttachment sends an artifact as a download.
func writeAttachment(w http.ResponseWriter, art *core.Artifact) {
	contentType := art.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	_, _ = w.Write(art.Data)
}
