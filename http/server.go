package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fwojciec/serp"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before the server is forcibly stopped.
const ShutdownTimeout = 5 * time.Second

// RefreshInterval is how often a running job page reloads itself.
const RefreshInterval = 2

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"headings": func(rec *serp.PageRecord, l serp.HeadingLevel) []string { return rec.Level(l) },
	"upper":    func(l serp.HeadingLevel) string { return "H" + strconv.Itoa(int(l)) },
}).ParseFS(templateFS, "templates/*.html"))

// ArtifactStore opens previously exported files by name.
type ArtifactStore interface {
	Open(name string) (*os.File, error)
}

// Server serves the web interface: a query form, a job page that follows a
// running analysis, and downloads of exported files.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *http.ServeMux

	// Addr is the listen address. Set before calling Open.
	Addr string

	// Services used by the handlers.
	Analyzer  serp.Analyzer
	Exporter  serp.Exporter
	Artifacts ArtifactStore
	Runs      serp.RunService // optional; completed runs are saved when set

	// Defaults pre-fill the query form.
	Defaults serp.Params

	Logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]*job
	wg   sync.WaitGroup

	// jobCtx is canceled when the server shuts down.
	jobCtx    context.Context
	cancelJob context.CancelFunc
}

// NewServer returns a new Server with its routes registered.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{ReadHeaderTimeout: 10 * time.Second},
		router: http.NewServeMux(),
		jobs:   make(map[string]*job),
		Defaults: serp.Params{
			Count: 10,
			Delay: 2 * time.Second,
		},
	}
	s.jobCtx, s.cancelJob = context.WithCancel(context.Background())
	s.server.Handler = s.router

	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("POST /analyze", s.handleAnalyze)
	s.router.HandleFunc("GET /jobs/{id}", s.handleJob)
	s.router.HandleFunc("GET /download/{name}", s.handleDownload)
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Open starts listening on Addr.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	return nil
}

// Serve serves requests until ctx is canceled, then shuts down gracefully
// and cancels running jobs. Open must be called first.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("server not open")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.Close()
	})
	return g.Wait()
}

// Close stops the server, cancels running jobs and waits for them to exit.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.cancelJob()
	s.wg.Wait()
	return err
}

// Wait blocks until every started job has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type indexView struct {
	Refresh  int
	Query    string
	Count    int
	Delay    string
	MinCount int
	MaxCount int
	Error    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", s.newIndexView())
}

func (s *Server) newIndexView() indexView {
	return indexView{
		Count:    s.Defaults.Count,
		Delay:    strconv.FormatFloat(s.Defaults.Delay.Seconds(), 'f', 1, 64),
		MinCount: serp.MinCount,
		MaxCount: serp.MaxCount,
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r, s.Defaults)
	if err == nil {
		err = params.Validate()
	}
	if err != nil {
		view := s.newIndexView()
		view.Query = r.FormValue("query")
		view.Error = serp.ErrorMessage(err)
		s.render(w, ErrorStatusCode(serp.ErrorCode(err)), "index.html", view)
		return
	}

	j := &job{
		ID:        uuid.New().String(),
		Params:    params,
		StartedAt: time.Now(),
		Status:    jobRunning,
	}
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runJob(s.jobCtx, j)

	http.Redirect(w, r, "/jobs/"+j.ID, http.StatusSeeOther)
}

// parseParams reads the form. Missing count or delay fall back to defaults;
// the delay is given in seconds and may be fractional.
func parseParams(r *http.Request, defaults serp.Params) (serp.Params, error) {
	params := serp.Params{
		Query: r.FormValue("query"),
		Count: defaults.Count,
		Delay: defaults.Delay,
	}
	if v := r.FormValue("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return params, serp.Errorf(serp.EINVALID, "invalid result count %q", v)
		}
		params.Count = n
	}
	if v := r.FormValue("delay"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return params, serp.Errorf(serp.EINVALID, "invalid delay %q", v)
		}
		params.Delay = time.Duration(f * float64(time.Second))
	}
	return params, nil
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	j, ok := s.jobs[r.PathValue("id")]
	var view jobView
	if ok {
		view = j.view()
	}
	s.mu.Unlock()

	if !ok {
		Error(w, r, serp.Errorf(serp.ENOTFOUND, "job not found"))
		return
	}
	s.render(w, http.StatusOK, "job.html", view)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.PathValue("name"))
	f, err := s.Artifacts.Open(name)
	if err != nil {
		Error(w, r, err)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		Error(w, r, err)
		return
	}

	if ct := contentTypes[filepath.Ext(name)]; ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, fi.ModTime(), f)
}

var contentTypes = map[string]string{
	".json": "application/json",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// genericJobError is shown when a job fails unexpectedly.
const genericJobError = "An unexpected error occurred. Please try again."

// runJob executes the analysis for j and records every state change.
func (s *Server) runJob(ctx context.Context, j *job) {
	defer s.wg.Done()

	logger := s.logger().With("job", j.ID, "query", j.Params.Query)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", "panic", r)
			s.update(func() {
				j.Status = jobFailed
				j.Err = genericJobError
			})
		}
	}()

	found := func(urls []string) {
		s.update(func() { j.Found = append([]string(nil), urls...) })
	}
	progress := func(p serp.Progress) {
		s.update(func() { j.Progress = append(j.Progress, p) })
	}

	run, err := s.Analyzer.Analyze(ctx, j.Params, found, progress)
	if err != nil {
		logger.Warn("analysis failed", "err", err)
		s.update(func() {
			j.Status = jobFailed
			j.Err = jobErrorMessage(err)
		})
		return
	}

	artifacts, err := s.Exporter.Export(ctx, run)
	if err != nil {
		logger.Error("export failed", "err", err)
		s.update(func() {
			j.Status = jobFailed
			j.Err = jobErrorMessage(err)
		})
		return
	}

	if s.Runs != nil {
		if err := s.Runs.CreateRun(ctx, run); err != nil {
			logger.Warn("saving run to history failed", "err", err)
		}
	}

	s.update(func() {
		j.Status = jobDone
		j.Run = run
		j.Artifacts = artifacts
	})
}

func jobErrorMessage(err error) string {
	switch serp.ErrorCode(err) {
	case serp.EINTERNAL:
		return genericJobError
	}
	return serp.ErrorMessage(err)
}

func (s *Server) update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger().Error("render template", "name", name, "err", err)
	}
}
