package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/application/service"
	"github.com/TemirB/erp-order-bridge/internal/domain"
	"github.com/TemirB/erp-order-bridge/internal/ledger"
	"github.com/TemirB/erp-order-bridge/internal/observability"
)

//go:generate mockgen -source internal/httpapi/httpapi.go -destination=internal/httpapi/httpapi_mock_test.go -package=httpapi

const maxBodyBytes = 10 << 20

type Coordinator interface {
	SubmitBatch(ctx context.Context, subs []domain.Submission) []domain.ItemResult
	GetStatus(ctx context.Context, key domain.OrderKey) (domain.LedgerRecord, error)
	Reconcile(ctx context.Context, key domain.OrderKey, docID, docNumber *int) (domain.LedgerRecord, error)
	Health(ctx context.Context) service.Health
}

// Info identifies the running deployment on /health.
type Info struct {
	Version     string
	Environment string
	Company     string
}

type Options struct {
	APIKey string
	Info   Info
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
}

type Server struct {
	service Coordinator
	router  chi.Router
	opts    Options
	logger  *zap.Logger
	metrics observability.Metrics
	now     func() time.Time
}

func New(service Coordinator, opts Options, logger *zap.Logger, metrics observability.Metrics) *Server {
	s := &Server{
		service: service,
		router:  chi.NewRouter(),
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(ServerTimingApp(s.metrics))

	r.Get("/health", s.health)
	if s.opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(s.opts.APIKey))
		r.Post("/orders", s.submit)
		r.Get("/orders/{externalOrderId}/{instanceId}/status", s.status)
		r.Post("/orders/{externalOrderId}/{instanceId}/reconcile", s.reconcile)
	})
}

type response struct {
	OK      bool                 `json:"ok"`
	Code    string               `json:"code,omitempty"`
	Message string               `json:"message,omitempty"`
	Results []domain.ItemResult  `json:"results,omitempty"`
	Record  *domain.LedgerRecord `json:"record,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, response{OK: false, Code: code, Message: msg})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "cannot read body: "+err.Error())
		return
	}
	subs, err := domain.DecodeBatch(body)
	if err != nil {
		s.logger.Info("rejected batch body", zap.Error(err), zap.Int("bytes", len(body)))
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	t0 := time.Now()
	results := s.service.SubmitBatch(r.Context(), subs)
	dur := observability.MsSince(t0)
	observability.AppendServerTiming(w, "batch", dur, strconv.Itoa(len(subs))+" items")
	observability.SetIfPos(w, "X-Batch-Time", dur)
	writeJSON(w, http.StatusOK, response{OK: true, Results: results})
}

func keyFrom(r *http.Request) domain.OrderKey {
	return domain.NewOrderKey(chi.URLParam(r, "externalOrderId"), chi.URLParam(r, "instanceId"))
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetStatus(r.Context(), keyFrom(r))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no ledger record for this order")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "ERROR", "ledger unavailable")
	default:
		writeJSON(w, http.StatusOK, response{OK: true, Record: &rec})
	}
}

type reconcileRequest struct {
	DocID     *int `json:"docId"`
	DocNumber *int `json:"docNumber"`
}

func (s *Server) reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "bad json: "+err.Error())
		return
	}
	if (req.DocID == nil) != (req.DocNumber == nil) {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "docId and docNumber must be given together")
		return
	}

	key := keyFrom(r)
	rec, err := s.service.Reconcile(r.Context(), key, req.DocID, req.DocNumber)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no ledger record for this order")
	case errors.Is(err, ledger.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case err != nil:
		s.logger.Error("reconcile failed", zap.Stringer("key", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "ERROR", "ledger unavailable")
	default:
		writeJSON(w, http.StatusOK, response{OK: true, Record: &rec})
	}
}

type healthResponse struct {
	OK          bool   `json:"ok"`
	Code        string `json:"code"`
	Version     string `json:"version"`
	Timestamp   string `json:"timestamp"`
	Company     string `json:"company"`
	Environment string `json:"environment"`
	Ledger      string `json:"ledger"`
	ERP         string `json:"erp"`
}

// health always answers 200 while the process is up; a broken ledger is
// reported as DEGRADED.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	h := s.service.Health(r.Context())
	resp := healthResponse{
		OK:          true,
		Code:        "HEALTHY",
		Version:     s.opts.Info.Version,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
		Company:     s.opts.Info.Company,
		Environment: s.opts.Info.Environment,
		Ledger:      h.Ledger,
		ERP:         h.ERP,
	}
	if h.Ledger != "ok" {
		resp.OK, resp.Code = false, "DEGRADED"
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }
