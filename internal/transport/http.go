package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ganot/studyvault/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MethodHandler handles JSON-RPC method dispatch.
type MethodHandler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// codedError is implemented by domain errors that carry a stable code.
type codedError interface {
	error
	CodeValue() string
	MessageValue() string
	RecoveryHintValue() string
}

// Options configures the router.
type Options struct {
	// MCP, when set, is mounted at /mcp.
	MCP     http.Handler
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// RateLimit wraps every route when set; see NewIPRateLimiter.
	RateLimit     func(http.Handler) http.Handler
	SecureHeaders bool
	// HealthChecks are run by GET /health, keyed by dependency name.
	HealthChecks  map[string]HealthCheck
}

// Server wires HTTP handlers.
type Server struct {
	handler MethodHandler
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler MethodHandler, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(opts.Metrics.Middleware)
	if opts.SecureHeaders {
		r.Use(SecureHeaders())
	}
	if opts.RateLimit != nil {
		r.Use(opts.RateLimit)
	}

	srv := &Server{handler: handler, logger: opts.Logger}

	r.Post("/rpc", srv.handleRPC)
	r.Get("/health", healthHandler(opts.HealthChecks))
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return r
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		code := ErrInvalidReq
		if errors.Is(err, ErrParse) {
			code = ErrParseCode
		}
		WriteError(w, nil, code, err.Error(), nil)
		return
	}

	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		code, message, data := classify(err)
		if s.logger != nil {
			s.logger.Debug("rpc call failed", "method", req.Method, "request_id", middleware.GetReqID(r.Context()), "error", err)
		}
		WriteError(w, req.ID, code, message, data)
		return
	}

	WriteResult(w, req.ID, result)
}

// classify picks the JSON-RPC code and message for err and exposes its domain
// code as data.
func classify(err error) (int, string, any) {
	var coded codedError
	if !errors.As(err, &coded) {
		return ErrInternal, err.Error(), nil
	}
	data := map[string]string{"code": coded.CodeValue()}
	if hint := coded.RecoveryHintValue(); hint != "" {
		data["recovery_hint"] = hint
	}
	switch coded.CodeValue() {
	case "UNKNOWN_METHOD":
		return ErrMethodNotFound, coded.MessageValue(), data
	case "INVALID_PARAMS", "INVALID_INPUT":
		return ErrInvalidParams, coded.MessageValue(), data
	default:
		return ErrServer, coded.MessageValue(), data
	}
}
