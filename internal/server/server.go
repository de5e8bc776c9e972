// Package server exposes the ledger over HTTP. It is a thin transport:
// all business rules live in the ledger and session packages, and every
// response uses the {success, data | message} envelope.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/securebank-dev/ledger/internal/history"
	"github.com/securebank-dev/ledger/internal/ledger"
	"github.com/securebank-dev/ledger/internal/session"
	"github.com/securebank-dev/ledger/internal/store"
)

// Server wires the HTTP routes to the core services.
type Server struct {
	engine   *ledger.Engine
	sessions *session.Manager
	log      *history.Log
	logger   *slog.Logger
}

// New creates a Server.
func New(engine *ledger.Engine, sessions *session.Manager, log *history.Log, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, sessions: sessions, log: log, logger: logger}
}

// Router builds the chi router with all API routes registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/logout", s.handleLogout)
			r.Get("/balance", s.handleBalance)
			r.Post("/deposit", s.handleDeposit)
			r.Post("/withdraw", s.handleWithdraw)
			r.Post("/transfer", s.handleTransfer)
			r.Get("/transactions", s.handleTransactions)
		})
	})
	return r
}

// response is the standard JSON envelope.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: false, Message: msg})
}

// writeDomainError maps core errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var (
		credErr    *session.CredentialsError
		limitErr   *ledger.DailyLimitError
		partialErr *ledger.PartialTransferError
	)
	switch {
	case errors.As(err, &credErr):
		writeError(w, http.StatusUnauthorized, credErr.Error())
	case errors.Is(err, session.ErrLocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, session.ErrExpired):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, ledger.ErrBeneficiaryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSelfTransfer):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &limitErr):
		writeError(w, http.StatusConflict, limitErr.Error())
	case errors.As(err, &partialErr):
		// Torn transfers must reach the operator, not just the caller.
		s.logger.Error("partial transfer failure",
			"sender", partialErr.SenderID,
			"receiver", partialErr.ReceiverID,
			"amount", partialErr.Amount,
			"sent_record", partialErr.SentRecordID,
			"error", partialErr.Err)
		writeError(w, http.StatusInternalServerError, partialErr.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusRequestTimeout, "request cancelled")
	default:
		s.logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type contextKey string

const sessionKey contextKey = "session"

// requireSession validates the bearer token and records activity on the
// session before the handler runs.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		sess, err := s.sessions.Validate(token)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.sessions.Touch(token)

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) session.Session {
	sess, _ := r.Context().Value(sessionKey).(session.Session)
	return sess
}
