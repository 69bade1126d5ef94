// Package server exposes the form registry and the GitHub dispatch proxy over
// HTTP, plus server-rendered pages for filling and dispatching stored forms.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.jetify.com/typeid/v2"

	"github.com/goliatone/go-formdispatch/internal/githubdispatch"
	"github.com/goliatone/go-formdispatch/internal/logger"
	"github.com/goliatone/go-formdispatch/internal/store"
	"github.com/goliatone/go-formdispatch/pkg/orchestrator"
	"github.com/goliatone/go-formdispatch/pkg/payload"
	"github.com/goliatone/go-formdispatch/pkg/render"
	rendertemplate "github.com/goliatone/go-formdispatch/pkg/render/template"
	"github.com/goliatone/go-formdispatch/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formdispatch/pkg/renderers/vanilla"
)

const (
	defaultAddr            = ":5000"
	defaultShutdownTimeout = 10 * time.Second
	healthTimeout          = 3 * time.Second
	maxBodyBytes           = 1 << 20
)

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithStoreName labels the store in health responses.
func WithStoreName(name string) Option {
	return func(s *Server) {
		s.storeName = name
	}
}

// WithDispatcher sets the GitHub dispatch service.
func WithDispatcher(service *githubdispatch.Service) Option {
	return func(s *Server) {
		if service != nil {
			s.dispatcher = service
		}
	}
}

// WithTranslator localizes page strings. languages lists the locales offered
// to Accept-Language negotiation; the first is the default.
func WithTranslator(translator render.Translator, languages ...string) Option {
	return func(s *Server) {
		s.translator = translator
		if len(languages) > 0 {
			s.languages = languages
		}
	}
}

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTransformers applies preset transformers to every rendered page form.
func WithTransformers(transformers ...orchestrator.Transformer) Option {
	return func(s *Server) {
		s.transformers = append(s.transformers, transformers...)
	}
}

// Server is the HTTP front of the registry.
type Server struct {
	store           store.Store
	storeName       string
	dispatcher      *githubdispatch.Service
	translator      render.Translator
	languages       []string
	now             func() time.Time
	logger          *slog.Logger
	transformers    []orchestrator.Transformer
	addr            string
	shutdownTimeout time.Duration

	orchestrator *orchestrator.Orchestrator
	assembler    *payload.Assembler
	pages        rendertemplate.TemplateRenderer
	apiDoc       []byte
	bodySchema   *jsonschema.Schema
}

// New builds a server over st. Without WithDispatcher, dispatches go to the
// public GitHub API.
func New(ctx context.Context, st store.Store, options ...Option) (*Server, error) {
	if st == nil {
		return nil, errors.New("server: store is required")
	}

	s := &Server{
		store:           st,
		storeName:       "store",
		languages:       []string{"en"},
		now:             time.Now,
		logger:          slog.Default(),
		addr:            defaultAddr,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.dispatcher == nil {
		s.dispatcher = githubdispatch.NewService(githubdispatch.NewClient(), s.now)
	}
	s.assembler = payload.NewAssembler(clockFunc(s.now))

	formRenderer, err := vanilla.New(vanilla.WithStylesheet(assetsPrefix + "formdispatch.css"))
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(formRenderer); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	orchestratorOptions := []orchestrator.Option{
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(vanilla.Name),
	}
	for _, t := range s.transformers {
		orchestratorOptions = append(orchestratorOptions, orchestrator.WithTransformer(t))
	}
	s.orchestrator = orchestrator.New(orchestratorOptions...)

	pages, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		return nil, fmt.Errorf("server: page templates: %w", err)
	}
	s.pages = pages

	if s.apiDoc, err = loadAPIDocument(ctx); err != nil {
		return nil, err
	}
	if s.bodySchema, err = compileDispatchSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/forms", s.handleListForms)
	mux.HandleFunc("POST /api/forms", s.handleCreateForm)
	mux.HandleFunc("GET /api/forms/{name}", s.handleGetForm)
	mux.HandleFunc("PUT /api/forms/{name}", s.handleUpdateForm)
	mux.HandleFunc("DELETE /api/forms/{name}", s.handleDeleteForm)
	mux.HandleFunc("POST /api/github/dispatch", s.handleDispatch)
	mux.HandleFunc("GET /api/openapi.json", s.handleOpenAPI)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /forms/{name}", s.handleFormPage)
	mux.HandleFunc("POST /forms/{name}/preview", s.handlePreview)
	mux.HandleFunc("POST /forms/{name}/dispatch", s.handleFormDispatch)
	mux.Handle("GET "+runtimePrefix, http.StripPrefix(runtimePrefix, http.FileServerFS(runtimeFS())))
	mux.Handle("GET "+assetsPrefix, http.StripPrefix(assetsPrefix, http.FileServerFS(vanilla.AssetsFS())))

	return s.withRequestLogging(mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr, "store", s.storeName)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down", "timeout", s.shutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		reqLogger := s.logger.With("request_id", requestID(), "method", r.Method, "path", r.URL.Path)
		ctx := logger.WithLogger(r.Context(), reqLogger)

		next.ServeHTTP(rec, r.WithContext(ctx))

		level := slog.LevelDebug
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		reqLogger.Log(ctx, level, "request", "status", rec.status, "duration", s.now().Sub(start))
	})
}

func requestID() string {
	tid, err := typeid.Generate("req")
	if err != nil {
		return ""
	}
	return tid.String()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }
