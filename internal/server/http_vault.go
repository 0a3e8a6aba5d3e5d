package server

import (
	"net/http"

	"github.com/noirclub/noird/internal/events"
)

// handleInitVault handles POST /v1/vault/init.
func (s *NoirServer) handleInitVault(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Cap   int64 `json:"cap"`
		Actor int64 `json:"actor"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Cap <= 0 {
		writeError(w, http.StatusBadRequest, "cap must be positive")
		return
	}

	free, err := s.vault.Init(r.Context(), in.Cap, in.Actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if free == nil {
		writeError(w, http.StatusConflict, "cap is below circulating money")
		return
	}

	s.publish(r.Context(), events.TopicVaultInitialized, events.VaultInitialized{Cap: in.Cap, Free: *free})
	writeJSON(w, http.StatusOK, map[string]int64{"cap": in.Cap, "free": *free})
}

// handleVaultStats handles GET /v1/vault/stats.
func (s *NoirServer) handleVaultStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.vault.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleRecordBurn handles POST /v1/vault/burn.
func (s *NoirServer) handleRecordBurn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount int64  `json:"amount"`
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	if err := s.vault.RecordBurn(r.Context(), in.Amount, in.Reason); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicBurnRecorded, events.BurnRecorded{Amount: in.Amount, Reason: in.Reason})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
