package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/securebank-dev/ledger/internal/history"
	"github.com/securebank-dev/ledger/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.sessions.Login(r.Context(), req.Username, req.PIN)
	if err != nil {
		s.logger.Info("login rejected", "username", req.Username, "reason", err)
		s.writeDomainError(w, err)
		return
	}

	s.logger.Info("login", "username", req.Username)
	writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, Username: sess.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionFrom(r).Token
	s.sessions.Logout(token)
	writeJSON(w, http.StatusOK, nil)
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.engine.Balance(r.Context(), sessionFrom(r).Username)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type transactionJSON struct {
	ID           string          `json:"transactionId"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Timestamp    time.Time       `json:"timestamp"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Description  string          `json:"description,omitempty"`
}

func toTransactionJSON(rec model.TransactionRecord) transactionJSON {
	return transactionJSON{
		ID:           rec.ID,
		Type:         string(rec.Type),
		Amount:       rec.Amount,
		Timestamp:    rec.Timestamp,
		BalanceAfter: rec.BalanceAfter,
		Description:  rec.Description,
	}
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username := sessionFrom(r).Username
	rec, err := s.engine.Deposit(r.Context(), username, req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.logger.Info("deposit", "username", username, "amount", req.Amount)
	writeJSON(w, http.StatusOK, toTransactionJSON(rec))
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username := sessionFrom(r).Username
	rec, err := s.engine.Withdraw(r.Context(), username, req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.logger.Info("withdraw", "username", username, "amount", req.Amount)
	writeJSON(w, http.StatusOK, toTransactionJSON(rec))
}

type transferRequest struct {
	Beneficiary string          `json:"beneficiary"`
	Amount      decimal.Decimal `json:"amount"`
}

type transferResponse struct {
	Sent          transactionJSON `json:"sent"`
	ReceiverName  string          `json:"receiverName"`
	SenderBalance decimal.Decimal `json:"senderBalance"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	username := sessionFrom(r).Username
	res, err := s.engine.Transfer(r.Context(), username, req.Beneficiary, req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.logger.Info("transfer", "username", username, "beneficiary", req.Beneficiary, "amount", req.Amount)
	writeJSON(w, http.StatusOK, transferResponse{
		Sent:          toTransactionJSON(res.Sent),
		ReceiverName:  res.ReceiverName,
		SenderBalance: res.SenderBalance,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	filter := history.Filter{
		Search: r.URL.Query().Get("search"),
	}
	if typ := r.URL.Query().Get("type"); typ != "" && typ != "ALL" {
		t := model.TransactionType(typ)
		if !t.Valid() {
			writeError(w, http.StatusBadRequest, "unknown transaction type")
			return
		}
		filter.Type = t
	}

	recs, err := s.log.Query(r.Context(), sessionFrom(r).Username, filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	out := make([]transactionJSON, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toTransactionJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}
