package server

import (
	"net/http"
	"strconv"

	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/model"
)

// handleGetBalance handles GET /v1/balances/{subject}.
func (s *NoirServer) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	balance, err := s.ledger.Balance(r.Context(), subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.BalanceEntry{Subject: subject, Balance: balance})
}

// handleChangeBalance handles POST /v1/balances/{subject}/change.
func (s *NoirServer) handleChangeBalance(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Delta  int64  `json:"delta"`
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta is required")
		return
	}

	balance, err := s.ledger.ChangeBalance(r.Context(), subject, in.Delta, in.Reason)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), events.TopicBalanceChanged, events.BalanceChanged{
		Subject: subject,
		Delta:   in.Delta,
		Balance: balance,
		Reason:  in.Reason,
	})
	writeJSON(w, http.StatusOK, model.BalanceEntry{Subject: subject, Balance: balance})
}

// handleResetBalance handles POST /v1/balances/{subject}/reset.
func (s *NoirServer) handleResetBalance(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Actor int64 `json:"actor"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	if err := s.ledger.ResetBalance(r.Context(), subject, "reset by "+strconv.FormatInt(in.Actor, 10)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), events.TopicBalanceReset, events.BalanceReset{Subject: &subject, Actor: in.Actor})
	writeJSON(w, http.StatusOK, model.BalanceEntry{Subject: subject, Balance: 0})
}

// handleResetAllBalances handles POST /v1/balances/reset.
func (s *NoirServer) handleResetAllBalances(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Actor int64 `json:"actor"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	if err := s.ledger.ResetAllBalances(r.Context(), "reset by "+strconv.FormatInt(in.Actor, 10)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), events.TopicBalanceReset, events.BalanceReset{Actor: in.Actor})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTopBalances handles GET /v1/balances/top.
func (s *NoirServer) handleTopBalances(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	top, err := s.ledger.Top(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if top == nil {
		top = []model.BalanceEntry{}
	}
	writeJSON(w, http.StatusOK, top)
}

// handleListEvents handles GET /v1/events.
func (s *NoirServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.EventFilter{Order: model.OrderDesc, Limit: 50}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("subject"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.Subject = &n
		}
	}
	if v := q.Get("kind"); v != "" {
		filter.Kinds = []model.Kind{model.Kind(v)}
	}

	list, err := s.store.Events(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, list)
}
