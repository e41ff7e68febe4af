package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"meeting-brief-service/internal/config"
	"meeting-brief-service/internal/infra/logging"
	"meeting-brief-service/internal/infra/worker"
	"meeting-brief-service/internal/usecase"
)

type Server struct {
	submitUC  usecase.SubmissionUseCase
	queryUC   usecase.QueryUseCase
	pool      *worker.Pool
	processor *worker.BriefJobProcessor
	cfg       config.BriefConfig
	log       *zerolog.Logger
}

func NewServer(
	submitUC usecase.SubmissionUseCase,
	queryUC usecase.QueryUseCase,
	pool *worker.Pool,
	processor *worker.BriefJobProcessor,
	cfg config.BriefConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		submitUC:  submitUC,
		queryUC:   queryUC,
		pool:      pool,
		processor: processor,
		cfg:       cfg,
		log:       logger,
	}
}

// Router wires the public API. The service exposes no auth surface in v1;
// deployments front it with their own gateway.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/briefs", s.handleSubmit)
		r.Get("/briefs", s.handleListBriefs)
		r.Get("/briefs/{id}", s.handleGetBrief)
		r.Get("/jobs/{id}", s.handleJobStatus)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
