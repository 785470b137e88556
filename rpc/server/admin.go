package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gometrics "github.com/rcrowley/go-metrics"
)

// AdminServer serves health, metrics and review lookups over HTTP
type AdminServer struct {
	rpc      *RPCServer
	server   *http.Server
	listener net.Listener
}

// NewAdminServer creates the admin server for an RPC server. Nothing is bound before Start.
func NewAdminServer(endpoint string, rpc *RPCServer) *AdminServer {
	a := &AdminServer{rpc: rpc}
	a.server = &http.Server{
		Addr:              endpoint,
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a
}

// Router returns the admin routes:
//
//	GET /healthz          liveness
//	GET /metrics          Prometheus metrics (server and registered pool metrics)
//	GET /stats            request latency timers as JSON
//	GET /reviews/{reqID}  a review of the compose-review service
func (a *AdminServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(loggerMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.handleHealth)
	r.Get("/metrics", a.handleMetrics)
	r.Get("/stats", a.handleStats)
	r.Get("/reviews/{reqID}", a.handleGetReview)
	return r
}

// Start binds the admin endpoint
func (a *AdminServer) Start() error {
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on admin endpoint %s: %w", a.server.Addr, err)
	}
	a.listener = listener
	Logger.Infof("Starting admin server on %s", listener.Addr())
	return nil
}

// Serve serves HTTP requests until Close is called
func (a *AdminServer) Serve() error {
	if a.listener == nil {
		return fmt.Errorf("admin server is not listening")
	}
	if err := a.server.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the address of the admin endpoint, nil before Start
func (a *AdminServer) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Close shuts the admin server down, waiting at most timeout for running requests
func (a *AdminServer) Close(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return a.server.Shutdown(ctx)
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func (a *AdminServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok\n"))
}

func (a *AdminServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	a.rpc.Metrics().WritePrometheus(w)
	metrics.WritePrometheus(w, true)
}

func (a *AdminServer) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	gometrics.WriteJSONOnce(a.rpc.Timers(), w)
}

type reviewResponse struct {
	ReqID    int64  `json:"req_id"`
	ReviewID int64  `json:"review_id"`
	MovieID  string `json:"movie_id"`
	Text     string `json:"text"`
	Rating   int32  `json:"rating"`
	Complete bool   `json:"complete"`
}

func (a *AdminServer) handleGetReview(w http.ResponseWriter, r *http.Request) {
	reqID, err := strconv.ParseInt(chi.URLParam(r, "reqID"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	service := a.rpc.ComposeReview()
	if service == nil {
		writeJSONError(w, http.StatusNotFound, "no compose-review service configured")
		return
	}

	review, complete, found := service.Review(reqID)
	if !found {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no review for request %d", reqID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reviewResponse{
		ReqID:    review.ReqID,
		ReviewID: review.ReviewID,
		MovieID:  review.MovieID,
		Text:     review.Text,
		Rating:   review.Rating,
		Complete: complete,
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		Logger.Debugf("[%s] %s %s => %d took %s",
			middleware.GetReqID(r.Context()), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
