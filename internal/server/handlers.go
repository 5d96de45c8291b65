package server

import (
	"net/http"

	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/settle"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !readJSON(w, r, &req) {
		return
	}
	user, token, err := s.authService.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !readJSON(w, r, &req) {
		return
	}
	user, token, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

type startSessionRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !readJSON(w, r, &req) {
		return
	}
	session, err := s.chatService.StartSession(r.Context(), middleware.GetUserID(r.Context()), req.Title)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.chatService.ListSessions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

type sessionResponse struct {
	Session  *models.Session   `json:"session"`
	Messages []*models.Message `json:"messages"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, messages, err := s.chatService.GetSession(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: session, Messages: messages})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.chatService.DeleteSession(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id")); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type sendMessageResponse struct {
	Message *models.Message `json:"message"`
	Flights []models.Flight `json:"flights,omitempty"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !readJSON(w, r, &req) {
		return
	}
	message, flights, err := s.chatService.SendMessage(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), req.Content)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sendMessageResponse{Message: message, Flights: flights})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var expense models.Expense
	if !readJSON(w, r, &expense) {
		return
	}
	expense.SessionID = r.PathValue("id")
	created, err := s.splitService.AddExpense(r.Context(), middleware.GetUserID(r.Context()), &expense)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.splitService.ListExpenses(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	err := s.splitService.RemoveExpense(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), r.PathValue("expenseID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type splitsResponse struct {
	Balances    []settle.Balance    `json:"balances"`
	Settlements []settle.Settlement `json:"settlements"`
}

func (s *Server) handleGetSplits(w http.ResponseWriter, r *http.Request) {
	balances, settlements, err := s.splitService.GetSplits(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splitsResponse{Balances: balances, Settlements: settlements})
}

func (s *Server) handleListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := s.ticketService.ListFlights(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flights": flights})
}

func (s *Server) handleDeleteFlight(w http.ResponseWriter, r *http.Request) {
	err := s.ticketService.DeleteFlight(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id"), r.PathValue("flightID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
