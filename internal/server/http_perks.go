package server

import (
	"net/http"
	"sort"

	"github.com/noirclub/noird/internal/events"
)

// handleGetPerks handles GET /v1/perks/{subject}.
func (s *NoirServer) handleGetPerks(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	active, err := s.perks.Active(r.Context(), subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	codes := make([]string, 0, len(active))
	for code := range active {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	writeJSON(w, http.StatusOK, map[string]any{"subject": subject, "perks": codes})
}

// handleGrantPerk handles POST /v1/perks/{subject}/grant.
func (s *NoirServer) handleGrantPerk(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := s.perks.Grant(r.Context(), subject, in.Code); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicPerkGranted, events.PerkChanged{Subject: subject, Code: in.Code})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRevokePerk handles POST /v1/perks/{subject}/revoke.
func (s *NoirServer) handleRevokePerk(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := s.perks.Revoke(r.Context(), subject, in.Code); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicPerkRevoked, events.PerkChanged{Subject: subject, Code: in.Code})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetCredits handles GET /v1/perks/{subject}/credits?code=.
func (s *NoirServer) handleGetCredits(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	credits, err := s.perks.Credits(r.Context(), subject, code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subject": subject, "code": code, "credits": credits})
}

// handleAddCredits handles POST /v1/perks/{subject}/credits.
func (s *NoirServer) handleAddCredits(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Code string `json:"code"`
		N    int64  `json:"n"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Code == "" || in.N <= 0 {
		writeError(w, http.StatusBadRequest, "code and positive n are required")
		return
	}

	if err := s.perks.CreditAdd(r.Context(), subject, in.Code, in.N); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	credits, err := s.perks.Credits(r.Context(), subject, in.Code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicVoucherIssued, events.VoucherIssued{Subject: subject, Code: in.Code, Credits: credits})
	writeJSON(w, http.StatusOK, map[string]any{"subject": subject, "code": in.Code, "credits": credits})
}

// handleUseCredit handles POST /v1/perks/{subject}/credits/use.
func (s *NoirServer) handleUseCredit(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	used, err := s.perks.CreditUse(r.Context(), subject, in.Code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !used {
		writeError(w, http.StatusConflict, "no credits available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
