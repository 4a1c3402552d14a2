package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/session"
)

const defaultMaxBodyBytes = 2 << 20

// Option customises the Server.
type Option func(*Server)

// WithSessions sets the document session manager.
func WithSessions(manager *session.Manager) Option {
	return func(s *Server) {
		if manager != nil {
			s.sessions = manager
		}
	}
}

// WithLogger sets the logger used for request logs.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBasePath mounts every route under base.
func WithBasePath(base string) Option {
	return func(s *Server) {
		s.basePath = base
	}
}

// WithMaxBodyBytes caps request bodies. Signature images make up most of it.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// Server exposes templates and document sessions over HTTP.
type Server struct {
	orch     *orchestrator.Orchestrator
	sessions *session.Manager
	logger   *zap.Logger
	basePath string
	maxBody  int64
	timeout  time.Duration
}

// New builds a Server over orch. Without WithSessions a manager with no
// persistence is used.
func New(orch *orchestrator.Orchestrator, opts ...Option) *Server {
	s := &Server{
		orch:    orch,
		logger:  zap.NewNop(),
		maxBody: defaultMaxBodyBytes,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(orch, session.WithManagerLogger(s.logger))
	}
	return s
}

// Handler returns the router with middleware applied.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(RequestLogger(s.logger))
	router.Use(chimw.Recoverer)
	if s.timeout > 0 {
		router.Use(chimw.Timeout(s.timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	base := normalizeBasePath(s.basePath)
	if base == "/" {
		s.Routes(router)
	} else {
		router.Route(base, s.Routes)
	}
	return router
}

// Routes registers the API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.listTemplates)
		r.Route("/{templateID}", func(r chi.Router) {
			r.Get("/", s.getTemplate)
			r.Post("/render", s.renderTemplate)
			r.Post("/validate", s.validateTemplate)
		})
	})
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.listDocuments)
		r.Post("/", s.createDocument)
		r.Route("/{documentID}", func(r chi.Router) {
			r.Get("/", s.getDocument)
			r.Patch("/", s.patchDocument)
			r.Delete("/", s.deleteDocument)
			r.Put("/fields/{field}", s.putField)
			r.Get("/validate", s.validateDocument)
			r.Post("/send", s.sendDocument)
			r.Post("/complete", s.completeDocument)
		})
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, target any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(target); err != nil {
		if err == io.EOF {
			return nil
		}
		return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}
