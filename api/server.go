package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/melkeydev/datadesk/dashboard"
	"github.com/melkeydev/datadesk/telemetry"
	"github.com/melkeydev/datadesk/types"
)

const maxUploadSize = 32 << 20

type Server struct {
	svc     *dashboard.Service
	logger  *slog.Logger
	timeout time.Duration
	router  *mux.Router
}

// NewServer wires the record and table routes. A positive timeout bounds
// the storage work of each request.
func NewServer(svc *dashboard.Service, logger *slog.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		svc:     svc,
		logger:  logger,
		timeout: timeout,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(s.requestID, s.logRequests, s.withTimeout)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/insertar", s.handleInsertar).Methods(http.MethodPost)
	api.HandleFunc("/consultar", s.handleConsultar).Methods(http.MethodGet)
	api.HandleFunc("/estadisticas", s.handleEstadisticas).Methods(http.MethodGet)

	api.HandleFunc("/tablas", s.handleTableCounts).Methods(http.MethodGet)
	api.HandleFunc("/tablas/{name}", s.handleDescribeTable).Methods(http.MethodGet)
	api.HandleFunc("/tablas/{name}/muestra", s.handleSampleTable).Methods(http.MethodGet)
	api.HandleFunc("/tablas/{name}", s.handleUploadTable).Methods(http.MethodPost)
	api.HandleFunc("/tablas/{name}", s.handleDropTable).Methods(http.MethodDelete)
}

type ctxKey struct{}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", requestIDFrom(r.Context()),
		)
	})
}

func (s *Server) withTimeout(next http.Handler) http.Handler {
	if s.timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func statusFor(err error) int {
	var (
		nf *types.NotFoundError
		ie *types.InvalidIdentifierError
	)
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ie),
		errors.Is(err, types.ErrEmptyDataset),
		errors.Is(err, types.ErrInvalidDataset):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code and reports server-side failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err, "request_id", requestIDFrom(r.Context()))
		telemetry.CaptureError(op, err)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func badRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detail})
}
