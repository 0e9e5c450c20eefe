package core

// service.go tracks formatting jobs.
//
// A job is one uploaded file moving through the upload flow
// (upload -> processing -> complete). Submit records the job and returns its
// ID while processing continues in a goroutine; Format blocks until the job
// settles. Finished jobs keep their artifact in memory until DeleteJob or the
// retention sweeper removes them.
//
// Which path produces the artifact is decided once, at construction: the
// local Pipeline or a remote processor. The service never runs both for the
// same job.

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/JonMunkholm/fileformatter/internal/application"
)

const defaultJobTimeout = 2 * time.Minute

// Processor turns a source into a downloadable artifact.
type Processor interface {
	Process(ctx context.Context, src Source, opts FormattingOptions) (*Artifact, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, src Source, opts FormattingOptions) (*Artifact, error)

func (f ProcessorFunc) Process(ctx context.Context, src Source, opts FormattingOptions) (*Artifact, error) {
	return f(ctx, src, opts)
}

// Processor returns p as an in-process Processor.
func (p Pipeline) Processor() Processor {
	return ProcessorFunc(func(ctx context.Context, src Source, opts FormattingOptions) (*Artifact, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return p.Run(src, opts)
	})
}

// ServiceConfig holds the limits applied to every job.
type ServiceConfig struct {
	MaxFileSize       int64         // 0 disables the size check
	AllowedExtensions []string      // empty allows every extension
	MaxConcurrent     int           // default 5
	MaxWait           time.Duration // default 30s
	JobTimeout        time.Duration // default 2m
	Path              string        // label for logs and job records, e.g. "local"
}

// Job is a point-in-time view of a formatting job.
type Job struct {
	ID         string            `json:"id"`
	FileName   string            `json:"file_name"`
	Size       int               `json:"size"` // uploaded bytes
	Options    FormattingOptions `json:"options"`
	Path       string            `json:"path"`
	State      application.State `json:"state"`
	ResultName string            `json:"result_name,omitempty"`
	Rows       int               `json:"rows"`
	Error      *UserMessage      `json:"error,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// Done reports whether the job has settled, successfully or not.
func (j Job) Done() bool {
	return j.FinishedAt != nil
}

// Failed reports whether the job ended in an error.
func (j Job) Failed() bool {
	return j.Error != nil
}

// job is the mutable record behind a Job.
type job struct {
	id      string
	src     Source
	size    int
	opts    FormattingOptions
	created time.Time
	machine *application.Machine
	cancel  context.CancelFunc
	done    chan struct{}

	// guarded by Service.mu
	artifact *Artifact
	err      error
	userErr  *UserMessage
	finished time.Time
}

// Service runs formatting jobs and keeps their results.
type Service struct {
	processor Processor
	limiter   *JobLimiter
	cfg       ServiceConfig
	allowed   map[string]bool

	mu     sync.RWMutex
	jobs   map[string]*job
	closed bool
	wg     sync.WaitGroup

	now func() time.Time
}

// NewService creates a service that formats through p.
func NewService(p Processor, cfg ServiceConfig) *Service {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	if cfg.Path == "" {
		cfg.Path = "local"
	}

	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}

	return &Service{
		processor: p,
		limiter:   NewJobLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		cfg:       cfg,
		allowed:   allowed,
		jobs:      make(map[string]*job),
		now:       time.Now,
	}
}

// CheckUpload applies the upload acceptance rules. A file is accepted when
// either its extension or its declared content type belongs to an allowed
// extension, and it is no larger than the size ceiling.
func (s *Service) CheckUpload(name, contentType string, size int64) error {
	if s.cfg.MaxFileSize > 0 && size > s.cfg.MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, s.cfg.MaxFileSize)
	}
	if len(s.allowed) == 0 {
		return nil
	}
	if s.allowed[strings.ToLower(filepath.Ext(name))] {
		return nil
	}
	if ext := extensionForType(contentType); ext != "" && s.allowed[ext] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFileTypeNotAllowed, name)
}

func extensionForType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	if mediaType == "" {
		return ""
	}
	if m := mimetype.Lookup(mediaType); m != nil {
		return m.Extension()
	}
	return ""
}

// Submit accepts src and starts formatting it in the background.
func (s *Service) Submit(ctx context.Context, src Source, opts FormattingOptions) (string, error) {
	if err := s.CheckUpload(src.Name, src.ContentType, int64(len(src.Data))); err != nil {
		return "", err
	}

	jobCtx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	j := &job{
		id:      uuid.New().String(),
		src:     src,
		size:    len(src.Data),
		opts:    opts,
		created: s.now(),
		machine: application.NewMachine(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if err := j.machine.Start(src.Name); err != nil {
		cancel()
		return "", err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return "", fmt.Errorf("service shutting down: %w", context.Canceled)
	}
	s.jobs[j.id] = j
	s.wg.Add(1)
	s.mu.Unlock()

	slog.Info("job submitted",
		"job_id", j.id,
		"file", src.Name,
		"size", len(src.Data),
		"path", s.cfg.Path,
		"ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)

	go s.run(jobCtx, j)
	return j.id, nil
}

// Format formats src and waits for the result. The job stays listed
// afterwards, so its artifact can be downloaded again.
func (s *Service) Format(ctx context.Context, src Source, opts FormattingOptions) (Job, *Artifact, error) {
	id, err := s.Submit(ctx, src, opts)
	if err != nil {
		return Job{}, nil, err
	}

	info, err := s.Wait(ctx, id)
	if err != nil {
		return info, nil, err
	}
	art, err := s.Artifact(id)
	return info, art, err
}

// Wait blocks until job id settles and returns its final view. A failed job
// returns its processing error.
func (s *Service) Wait(ctx context.Context, id string) (Job, error) {
	s.mu.RLock()
	j, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	select {
	case <-j.done:
	case <-ctx.Done():
		return s.snapshot(j), ctx.Err()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(j), j.err
}

func (s *Service) run(ctx context.Context, j *job) {
	defer s.wg.Done()
	defer close(j.done)
	defer j.cancel()

	start := s.now()
	art, err := s.execute(ctx, j)

	s.mu.Lock()
	j.finished = s.now()
	j.src.Data = nil
	if err != nil {
		msg := MapError(err)
		j.err = err
		j.userErr = &msg
		_ = j.machine.Fail(msg.Message)
	} else {
		j.artifact = art
		_ = j.machine.Complete(art.Name)
	}
	s.mu.Unlock()

	if err != nil {
		slog.Warn("job failed",
			"job_id", j.id,
			"file", j.src.Name,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	slog.Info("job complete",
		"job_id", j.id,
		"file", j.src.Name,
		"result", art.Name,
		"rows", art.Rows,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// execute holds a limiter slot while the processor runs.
func (s *Service) execute(ctx context.Context, j *job) (art *Artifact, err error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in job", "job_id", j.id, "panic", r)
			art, err = nil, MalformedSource("", fmt.Errorf("panic: %v", r))
		}
	}()

	art, err = s.processor.Process(ctx, j.src, j.opts)
	if err == nil && art == nil {
		err = fmt.Errorf("processor returned no artifact")
	}
	return art, err
}

// Job returns the current view of job id.
func (s *Service) Job(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return s.snapshotLocked(j), nil
}

// Jobs lists every known job, newest first.
func (s *Service) Jobs() []Job {
	s.mu.RLock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, s.snapshotLocked(j))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

// Artifact returns the formatted file of a completed job.
func (s *Service) Artifact(id string) (*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if j.artifact == nil {
		if j.err != nil {
			return nil, fmt.Errorf("%w: %s failed", ErrJobNotComplete, id)
		}
		return nil, fmt.Errorf("%w: %s", ErrJobNotComplete, id)
	}
	return j.artifact, nil
}

// DeleteJob forgets job id, cancelling it if it is still running.
func (s *Service) DeleteJob(id string) error {
	s.mu.Lock()
	j, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	j.cancel()
	slog.Info("job deleted", "job_id", id)
	return nil
}

// LimiterStatus reports how many processing slots are in use.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Shutdown stops accepting jobs and waits for running ones. When ctx ends
// first, the remaining jobs are cancelled.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.RLock()
		for _, j := range s.jobs {
			j.cancel()
		}
		s.mu.RUnlock()
		return ctx.Err()
	}
}

func (s *Service) snapshot(j *job) Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(j)
}

func (s *Service) snapshotLocked(j *job) Job {
	st := j.machine.Snapshot()
	out := Job{
		ID:         j.id,
		FileName:   j.src.Name,
		Size:       j.size,
		Options:    j.opts,
		Path:       s.cfg.Path,
		State:      st.State,
		ResultName: st.ResultName,
		Error:      j.userErr,
		CreatedAt:  j.created,
	}
	if j.artifact != nil {
		out.Rows = j.artifact.Rows
	}
	if !j.finished.IsZero() {
		finished := j.finished
		out.FinishedAt = &finished
	}
	return out
}
