package web

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/fileformatter/internal/core"
	"github.com/JonMunkholm/fileformatter/internal/logging"
	"github.com/JonMunkholm/fileformatter/internal/web/middleware"
	"github.com/JonMunkholm/fileformatter/internal/web/templates"
)

// render writes an HTML page with status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

func (s *Server) uploadPage(msg *core.UserMessage) templ.Component {
	return templates.UploadPage(templates.UploadPageData{
		Jobs:       s.service.Jobs(),
		Options:    core.DefaultOptions(),
		Accept:     s.cfg.Upload.AllowedExtensions,
		MaxSizeMB:  s.cfg.Upload.MaxFileSize >> 20,
		RemoteMode: s.cfg.Processing.IsRemote(),
		Error:      msg,
	})
}

// handleIndex renders the upload page with the files list.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, s.uploadPage(nil))
}

// handleSubmitPage accepts the upload form and redirects to the job page.
// Rejected uploads re-render the form with the error.
func (s *Server) handleSubmitPage(w http.ResponseWriter, r *http.Request) {
	src, err := s.readUpload(w, r)
	if err == nil {
		var id string
		id, err = s.service.Submit(WithRequestMetadata(r.Context(), r), src, parseOptions(r))
		if err == nil {
			http.Redirect(w, r, "/jobs/"+id, http.StatusSeeOther)
			return
		}
	}

	logging.FromContext(r.Context()).Warn("upload rejected", "error", err)
	msg := core.MapError(err)
	render(w, r, statusFor(err), s.uploadPage(&msg))
}

// handleJobPage shows the status of one job.
func (s *Server) handleJobPage(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.Job(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	render(w, r, http.StatusOK, templates.JobPage(job))
}

// handleDeleteJobPage deletes a job from the job page and returns home.
func (s *Server) handleDeleteJobPage(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteJob(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleUnlockPage asks for the access key.
func (s *Server) handleUnlockPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.UnlockPage(nil))
}

// handleUnlock checks the submitted key and stores it in a cookie.
func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	if s.credentials == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	key := r.FormValue("key")
	if key == "" || !s.credentials.Check(r.Context(), key) {
		logging.FromContext(r.Context()).Warn("unlock failed", "ip", clientIP(r))
		msg := core.MapError(errInvalidAccessKey)
		render(w, r, http.StatusUnauthorized, templates.UnlockPage(&msg))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
