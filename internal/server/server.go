// Package server exposes the application services as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/service"
)

// Server wires the services to their HTTP routes.
type Server struct {
	authService   *service.AuthService
	chatService   *service.ChatService
	splitService  *service.SplitService
	ticketService *service.TicketService
	jwtManager    *auth.JWTManager
}

// New creates a server over the given services.
func New(
	authService *service.AuthService,
	chatService *service.ChatService,
	splitService *service.SplitService,
	ticketService *service.TicketService,
	jwtManager *auth.JWTManager,
) *Server {
	return &Server{
		authService:   authService,
		chatService:   chatService,
		splitService:  splitService,
		ticketService: ticketService,
		jwtManager:    jwtManager,
	}
}

// Handler builds the route table. Everything under /api/v1 except the auth
// endpoints requires a valid Bearer token.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	authed := middleware.RequireAuth(s.jwtManager)
	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(h))
	}

	protect("GET /api/v1/sessions", s.handleListSessions)
	protect("POST /api/v1/sessions", s.handleStartSession)
	protect("GET /api/v1/sessions/{id}", s.handleGetSession)
	protect("DELETE /api/v1/sessions/{id}", s.handleDeleteSession)
	protect("POST /api/v1/sessions/{id}/messages", s.handleSendMessage)
	protect("GET /api/v1/sessions/{id}/expenses", s.handleListExpenses)
	protect("POST /api/v1/sessions/{id}/expenses", s.handleAddExpense)
	protect("DELETE /api/v1/sessions/{id}/expenses/{expenseID}", s.handleRemoveExpense)
	protect("GET /api/v1/sessions/{id}/splits", s.handleGetSplits)
	protect("GET /api/v1/sessions/{id}/flights", s.handleListFlights)
	protect("DELETE /api/v1/sessions/{id}/flights/{flightID}", s.handleDeleteFlight)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return middleware.Logging(mux, middleware.CORS(mux))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

// serviceError maps service-layer errors onto HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, service.ErrInvalidExpense), errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, auth.ErrEmailExists), errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err)
	default:
		slog.Error("Request handling failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
