package server

import (
	"errors"
	"net/http"

	"github.com/noirclub/noird/internal/bank"
	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/model"
)

// handleCellBalance handles GET /v1/bank/{subject}.
func (s *NoirServer) handleCellBalance(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	balance, err := s.bank.Balance(r.Context(), subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.CellReceipt{Subject: subject, Balance: balance})
}

// handleDeposit handles POST /v1/bank/{subject}/deposit.
func (s *NoirServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Amount int64 `json:"amount"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	receipt, err := s.bank.Deposit(r.Context(), subject, in.Amount)
	if err != nil {
		if errors.Is(err, bank.ErrInsufficientFunds) || errors.Is(err, bank.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), events.TopicCellDeposit, events.CellMovement{Receipt: receipt})
	writeJSON(w, http.StatusOK, receipt)
}

// handleWithdraw handles POST /v1/bank/{subject}/withdraw.
func (s *NoirServer) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Amount int64 `json:"amount"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	receipt, err := s.bank.Withdraw(r.Context(), subject, in.Amount)
	if err != nil {
		if errors.Is(err, bank.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), events.TopicCellWithdraw, events.CellMovement{Receipt: receipt})
	writeJSON(w, http.StatusOK, receipt)
}

// handleTouch handles POST /v1/bank/{subject}/touch.
func (s *NoirServer) handleTouch(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	receipt, err := s.bank.Touch(r.Context(), subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleBankTotal handles GET /v1/bank/total.
func (s *NoirServer) handleBankTotal(w http.ResponseWriter, r *http.Request) {
	total, err := s.bank.Total(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}
