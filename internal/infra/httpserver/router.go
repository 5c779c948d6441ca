package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/application"
	appfootprint "github.com/bryanwahyu/ecosense/internal/application/footprint"
	appsolar "github.com/bryanwahyu/ecosense/internal/application/solar"
	domai "github.com/bryanwahyu/ecosense/internal/domain/ai"
	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
	"github.com/bryanwahyu/ecosense/internal/logging"
	"github.com/bryanwahyu/ecosense/internal/middleware"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

type Options struct {
	Footprint      *appfootprint.Service
	Solar          *appsolar.Service
	Checkers       map[string]middleware.HealthChecker
	RateLimiter    *middleware.RateLimiter
	Logger         *zap.Logger
	Clock          application.Clock
	MaxUploadBytes int64
	MaxSimulation  int
	CORSOrigins    []string
}

type Router struct {
	footprintSvc *appfootprint.Service
	solarSvc     *appsolar.Service
	logger       *zap.Logger
	clock        application.Clock
	maxUpload    int64
	maxSim       int
}

func NewRouter(opts Options) http.Handler {
	r := &Router{
		footprintSvc: opts.Footprint,
		solarSvc:     opts.Solar,
		logger:       logging.Or(opts.Logger),
		clock:        opts.Clock,
		maxUpload:    opts.MaxUploadBytes,
		maxSim:       opts.MaxSimulation,
	}
	if r.clock == nil {
		r.clock = application.SystemClock{}
	}
	if r.maxUpload <= 0 {
		r.maxUpload = 16 << 20
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logging(r.logger))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if opts.RateLimiter != nil {
		mux.Use(opts.RateLimiter.Middleware)
	}

	mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "Endpoint not found",
			"message": "The requested endpoint does not exist",
		})
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"error":   "Method not allowed",
			"message": req.Method + " is not supported on " + req.URL.Path,
		})
	})

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", middleware.LivenessHandler("EcoSense API is running", Version))
		rt.Get("/ready", middleware.HealthHandler(opts.Checkers))
		rt.Get("/metrics", middleware.MetricsHandler)

		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/test", r.wrap(r.handleTest))

		rt.Route("/solar", func(sr chi.Router) {
			sr.Post("/analyze", r.wrapSolar(r.handleSolarAnalyze))
			sr.Post("/simulate", r.wrapSolar(r.handleSolarSimulate))
			sr.Get("/config", r.wrapSolar(r.handleSolarConfigGet))
			sr.Post("/config", r.wrapSolar(r.handleSolarConfigSet))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// requestError carries a client-facing status and message.
type requestError struct {
	status  int
	title   string
	message string
}

func (e *requestError) Error() string { return e.title + ": " + e.message }

func badRequest(title, message string) error {
	return &requestError{status: http.StatusBadRequest, title: title, message: message}
}

// wrap maps carbon endpoint errors to {error, message, stage?} bodies.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var (
			reqErr   *requestError
			stageErr *footprint.StageError
			maxErr   *http.MaxBytesError
		)
		body := map[string]any{"message": err.Error()}
		status := http.StatusInternalServerError
		switch {
		case errors.As(err, &reqErr):
			status, body["error"], body["message"] = reqErr.status, reqErr.title, reqErr.message
		case errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large"):
			status, body["error"] = http.StatusRequestEntityTooLarge, "File too large"
			body["message"] = "Maximum upload size exceeded"
		case errors.Is(err, footprint.ErrSampleNotFound):
			status, body["error"] = http.StatusNotFound, "Sample image not found"
		case errors.Is(err, domai.ErrQuotaExceeded):
			status, body["error"] = http.StatusTooManyRequests, "AI quota exceeded"
		default:
			body["error"] = "Analysis failed"
		}
		if errors.As(err, &stageErr) {
			body["stage"] = stageErr.Stage()
		}
		if status >= http.StatusInternalServerError {
			r.logger.Error("request failed",
				zap.String("path", req.URL.Path),
				zap.String("request_id", middleware.GetRequestID(req.Context())),
				zap.Error(err))
		}
		writeJSON(w, status, body)
	}
}

// wrapSolar maps solar endpoint errors to {success:false, error} bodies.
func (r *Router) wrapSolar(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			writeJSON(w, reqErr.status, map[string]any{"success": false, "error": reqErr.message})
			return
		}
		r.logger.Error("solar request failed", zap.String("path", req.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Internal server error: " + err.Error(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
