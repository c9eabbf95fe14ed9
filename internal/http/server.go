package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	appweb "fintrack/web"
)

const defaultMaxUpload = 10 << 20

// Store is what the server needs from a backend.
type Store interface {
	sheets.Workbook
	sheets.Pinger
}

// Services bundles the application services behind the pages.
type Services struct {
	Dashboard      *services.DashboardService
	Reconciliation *services.ReconciliationService
	Categorize     *services.CategorizationService
	Savings        *services.SavingsService
	Budget         *services.BudgetService
	Import         *services.ImportService
}

// NewServices wires every service to store.
func NewServices(store sheets.Workbook, people []string) Services {
	return Services{
		Dashboard:      services.NewDashboardService(store),
		Reconciliation: services.NewReconciliationService(store),
		Categorize:     services.NewCategorizationService(store),
		Savings:        services.NewSavingsService(store),
		Budget:         services.NewBudgetService(store, people),
		Import:         services.NewImportService(store),
	}
}

// Option customises a Server.
type Option func(*Server)

func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

func WithMetrics(reg *metrics.Registry) Option { return func(s *Server) { s.metrics = reg } }

func WithRateLimit(cfg ratelimit.Config) Option { return func(s *Server) { s.limitCfg = cfg } }

func WithMaxUploadBytes(n int64) Option { return func(s *Server) { s.maxUpload = n } }

// WithClock overrides the clock used for default months.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

type Server struct {
	http.Server
	templates *template.Template
	svc       Services
	store     Store

	logger    *log.Logger
	metrics   *metrics.Registry
	limitCfg  ratelimit.Config
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	maxUpload int64
	now       func() time.Time
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server.
func NewServer(addr string, store Store, people []string, opts ...Option) *Server {
	s := &Server{
		svc:       NewServices(store, people),
		store:     store,
		limitCfg:  ratelimit.DefaultConfig(),
		detector:  security.NewDetector(),
		maxUpload: defaultMaxUpload,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.started = s.now()
	s.limiter = ratelimit.NewLimiter(s.limitCfg)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /ui/reconciliation", s.handleReconciliation)
	mux.HandleFunc("GET /api/trend", s.handleTrend)
	mux.HandleFunc("GET /budgeting", s.handleBudgeting)
	mux.HandleFunc("POST /budgeting/income", s.handleSubmitIncome)
	mux.HandleFunc("POST /budgeting/budget", s.handleSubmitBudget)
	mux.HandleFunc("GET /import", s.handleImportForm)
	mux.HandleFunc("POST /import", s.handleImport)
	mux.HandleFunc("GET /categorize", s.handleCategorize)
	mux.HandleFunc("POST /categorize", s.handleSaveCategories)
	mux.HandleFunc("GET /savings", s.handleSavings)
	mux.HandleFunc("POST /savings/allocate", s.handleAllocate)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// render executes a named template into w, logging failures.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", name, log.FieldError, err)
	}
}

// fail logs err and writes resp.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error, resp *HTMXResponseBuilder) {
	level := slog.LevelWarn
	if resp.statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.FromContext(r.Context()).Log(r.Context(), level, msg, log.FieldError, err)
	resp.Write(w)
}
