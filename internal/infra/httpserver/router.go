package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/legalmind/internal/application/analysis"
	domai "github.com/bryanwahyu/legalmind/internal/domain/ai"
	domain "github.com/bryanwahyu/legalmind/internal/domain/analysis"
	"github.com/bryanwahyu/legalmind/internal/middleware"
	"github.com/bryanwahyu/legalmind/internal/sample"
)

const (
	defaultMaxUploadBytes = 5 << 20
	multipartOverhead     = 1 << 20
)

// Options for NewRouter
type Options struct {
	Logger         *zap.Logger
	Checkers       map[string]middleware.HealthChecker
	AllowedOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets them.
	TrustProxy     bool
	APIKeys        map[string]string
	RateLimit      bool
	RateBurst      int
	RatePerSecond  float64
	MaxUploadBytes int64
}

type Router struct {
	svc            *appanalysis.Service
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := &Router{svc: svc, logger: logger, maxUploadBytes: maxUpload}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	if opts.TrustProxy {
		mux.Use(chimw.RealIP)
	}
	mux.Use(middleware.Logging(logger))
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.Checkers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))

		rt.Get("/sample", r.handleSample)
		rt.Group(func(g chi.Router) {
			if opts.RateLimit {
				g.Use(middleware.RateLimit(opts.RateBurst, opts.RatePerSecond))
			}
			g.Post("/analyses", r.wrap(r.handleAnalyze))
		})
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/history", r.wrap(r.handleHistory))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks client input errors
type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error { return badRequestError{err: err} }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var (
			br     badRequestError
			tooBig *http.MaxBytesError
		)
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrEmptyInput), errors.As(err, &br):
			status = http.StatusBadRequest
		case errors.Is(err, middleware.ErrPayloadTooLarge), errors.As(err, &tooBig):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, middleware.ErrUnsupportedMediaType):
			status = http.StatusUnsupportedMediaType
		case errors.Is(err, domai.ErrQuotaExceeded):
			status = http.StatusTooManyRequests
		case domain.IsAnalysisError(err):
			status = http.StatusBadGateway
		}

		fields := []zap.Field{
			zap.String("request_id", middleware.GetRequestID(req.Context())),
			zap.String("path", req.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= 500 {
			r.logger.Error("request failed", fields...)
		} else {
			r.logger.Debug("request rejected", fields...)
		}
		http.Error(w, err.Error(), status)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// GET /v1/sample
func (r *Router) handleSample(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, sample.Contract())
}

type analyzeResponse struct {
	*domain.Result
	TextHash string `json:"text_hash"`
}

// POST /v1/analyses
// Body: {"text": "..."} | {"sample": true} | multipart form with a text/plain "file"
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	text, err := r.readContract(w, req)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyInput
	}

	done := middleware.StartAnalysis()
	res, err := r.svc.AnalyzeAndStore(req.Context(), text)
	if err != nil {
		done(middleware.AnalysisOutcome{Err: err, QuotaExceeded: errors.Is(err, domai.ErrQuotaExceeded)})
		return err
	}
	done(middleware.AnalysisOutcome{InferenceSeconds: res.ProcessingTime})

	return writeJSON(w, http.StatusCreated, analyzeResponse{Result: res, TextHash: domain.TextHash(res.Text)})
}

func (r *Router) readContract(w http.ResponseWriter, req *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxUploadBytes+multipartOverhead)
		if err := req.ParseMultipartForm(r.maxUploadBytes); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return "", err
			}
			return "", badRequest(fmt.Errorf("invalid multipart form: %w", err))
		}
		file, header, err := req.FormFile("file")
		if err != nil {
			return "", badRequest(fmt.Errorf("file is required: %w", err))
		}
		defer file.Close()

		if err := middleware.ValidateUpload(header.Filename, header.Header.Get("Content-Type"), header.Size, r.maxUploadBytes); err != nil {
			return "", err
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		text, err := middleware.ValidateText(data)
		if err != nil {
			return "", badRequest(err)
		}
		return text, nil
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.maxUploadBytes)
	var body struct {
		Text   string `json:"text"`
		Sample bool   `json:"sample"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", err
		}
		return "", badRequest(fmt.Errorf("invalid JSON body: %w", err))
	}
	if body.Sample {
		return sample.Contract(), nil
	}
	return middleware.SanitizeString(body.Text), nil
}

// GET /v1/analyses?limit=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	limit, err := middleware.ValidateLimit(req.URL.Query().Get("limit"))
	if err != nil {
		return badRequest(err)
	}
	list, err := r.svc.Recent(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		return badRequest(fmt.Errorf("invalid id %q", chi.URLParam(req, "id")))
	}
	rec, err := r.svc.Get(req.Context(), domain.RecordID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// GET /v1/history?limit=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit, err := middleware.ValidateLimit(req.URL.Query().Get("limit"))
	if err != nil {
		return badRequest(err)
	}
	h, err := r.svc.History(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, h)
}
