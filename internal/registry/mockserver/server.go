// Package mockserver serves a fixture file with the registry's pagination
// contract. It backs the mock-registry binary and the end-to-end tests.
package mockserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ProjectsPath is where the project listing is mounted.
const ProjectsPath = "/api/projects"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Server is a paginated, failure-injecting stand-in for the project registry.
type Server struct {
	projects   []json.RawMessage
	pageSize   int
	failStatus int
	lastLink   bool
	logger     *slog.Logger

	mu        sync.Mutex
	failFirst int
	status    int
	requests  int
}

type Option func(*Server)

// WithPageSize sets the page size used when a request has no pagesize.
func WithPageSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithFailFirst makes the first n requests fail with 503.
func WithFailFirst(n int) Option {
	return func(s *Server) {
		s.failFirst = n
	}
}

// WithFailStatus changes the status returned by WithFailFirst failures.
func WithFailStatus(code int) Option {
	return func(s *Server) {
		s.failStatus = code
	}
}

// WithStatus makes every request fail with code, for 4xx scenarios.
func WithStatus(code int) Option {
	return func(s *Server) {
		s.status = code
	}
}

// WithLastLink controls whether responses advertise rel="last".
func WithLastLink(enabled bool) Option {
	return func(s *Server) {
		s.lastLink = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(projects []json.RawMessage, opts ...Option) *Server {
	s := &Server{
		projects:   projects,
		pageSize:   defaultPageSize,
		failStatus: http.StatusServiceUnavailable,
		lastLink:   true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadFixture reads a JSON array of project objects. Objects are kept raw so
// the server returns them exactly as written.
func LoadFixture(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var projects []json.RawMessage
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("fixture %s must be a JSON array: %w", path, err)
	}
	return projects, nil
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get(ProjectsPath, s.handleProjects)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// Requests reports how many project requests the server has received.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	if code, fail := s.nextFailure(); fail {
		s.logger.WarnContext(r.Context(), "injected failure", "status", code, "query", r.URL.RawQuery)
		http.Error(w, http.StatusText(code), code)
		return
	}

	pageNum := positiveInt(r.URL.Query().Get("page"), 1)
	size := positiveInt(r.URL.Query().Get("pagesize"), s.pageSize)
	if size > maxPageSize {
		size = maxPageSize
	}

	lastPage := (len(s.projects) + size - 1) / size
	if lastPage == 0 {
		lastPage = 1
	}
	start := (pageNum - 1) * size
	end := start + size
	items := []json.RawMessage{}
	if start < len(s.projects) {
		items = s.projects[start:min(end, len(s.projects))]
	}

	if pageNum < lastPage {
		w.Header().Add("Link", fmt.Sprintf(`<%s>; rel="next"`, pageLink(r, pageNum+1, size)))
	}
	if s.lastLink {
		w.Header().Add("Link", fmt.Sprintf(`<%s>; rel="last"`, pageLink(r, lastPage, size)))
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(items); err != nil {
		s.logger.ErrorContext(r.Context(), "encode page", "error", err)
	}
}

func (s *Server) nextFailure() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if s.status != 0 {
		return s.status, true
	}
	if s.failFirst > 0 {
		s.failFirst--
		return s.failStatus, true
	}
	return 0, false
}

func pageLink(r *http.Request, pageNum, size int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(pageNum))
	q.Set("pagesize", strconv.Itoa(size))
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
