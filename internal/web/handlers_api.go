package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/fileformatter/internal/core"
)

// handleFormat formats an upload synchronously and returns the result as a
// download. The job ID is sent in X-Job-ID so the file can be fetched again.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	src, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	job, art, err := s.service.Format(WithRequestMetadata(r.Context(), r), src, parseOptions(r))
	if job.ID != "" {
		w.Header().Set("X-Job-ID", job.ID)
	}
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeAttachment(w, art)
}

// handleSubmit starts a background job and returns its ID.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	src, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	id, err := s.service.Submit(WithRequestMetadata(r.Context(), r), src, parseOptions(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	job, err := s.service.Job(id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.Header().Set("Location", "/api/jobs/"+id)
	writeJSON(w, http.StatusAccepted, job)
}

// handleListJobs returns every job, newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": s.service.Jobs()})
}

// handleGetJob returns one job.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.Job(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleDownload sends the formatted file of a completed job.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	art, err := s.service.Artifact(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeAttachment(w, art)
}

// handleDeleteJob forgets a job and its result.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteJob(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePreview parses an upload and returns its first rows with a column
// summary. ?rows=N sets how many rows are returned.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	src, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	preview, err := s.service.Preview(src, parseIntParam(r, "rows", core.DefaultPreviewRows))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// HealthResponse reports server status.
type HealthResponse struct {
	Status     string             `json:"status"`
	Mode       string             `json:"mode"`
	Jobs       int                `json:"jobs"`
	Limiter    core.LimiterStatus `json:"limiter"`
	Extensions []string           `json:"extensions"`
}

// handleHealth reports processing mode and capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Mode:       s.cfg.Processing.Mode,
		Jobs:       len(s.service.Jobs()),
		Limiter:    s.service.LimiterStatus(),
		Extensions: core.Extensions(),
	})
}
