package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *NoirServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/events", s.handleListEvents)

	mux.HandleFunc("GET /v1/balances/top", s.handleTopBalances)
	mux.HandleFunc("GET /v1/balances/{subject}", s.handleGetBalance)
	mux.HandleFunc("POST /v1/balances/{subject}/change", s.handleChangeBalance)
	mux.HandleFunc("POST /v1/balances/{subject}/reset", s.handleResetBalance)
	mux.HandleFunc("POST /v1/balances/reset", s.handleResetAllBalances)

	mux.HandleFunc("GET /v1/perks/{subject}", s.handleGetPerks)
	mux.HandleFunc("POST /v1/perks/{subject}/grant", s.handleGrantPerk)
	mux.HandleFunc("POST /v1/perks/{subject}/revoke", s.handleRevokePerk)
	mux.HandleFunc("GET /v1/perks/{subject}/credits", s.handleGetCredits)
	mux.HandleFunc("POST /v1/perks/{subject}/credits", s.handleAddCredits)
	mux.HandleFunc("POST /v1/perks/{subject}/credits/use", s.handleUseCredit)

	mux.HandleFunc("POST /v1/offers", s.handleCreateOffer)
	mux.HandleFunc("GET /v1/offers", s.handleListOffers)
	mux.HandleFunc("POST /v1/offers/{id}/cancel", s.handleCancelOffer)
	mux.HandleFunc("POST /v1/offers/{id}/settle", s.handleSettleOffer)

	mux.HandleFunc("POST /v1/vault/init", s.handleInitVault)
	mux.HandleFunc("GET /v1/vault/stats", s.handleVaultStats)
	mux.HandleFunc("POST /v1/vault/burn", s.handleRecordBurn)

	mux.HandleFunc("GET /v1/bank/total", s.handleBankTotal)
	mux.HandleFunc("GET /v1/bank/{subject}", s.handleCellBalance)
	mux.HandleFunc("POST /v1/bank/{subject}/deposit", s.handleDeposit)
	mux.HandleFunc("POST /v1/bank/{subject}/withdraw", s.handleWithdraw)
	mux.HandleFunc("POST /v1/bank/{subject}/touch", s.handleTouch)

	mux.HandleFunc("GET /v1/club/roles", s.handleAllRoles)
	mux.HandleFunc("GET /v1/club/roles/{subject}", s.handleGetRole)
	mux.HandleFunc("PUT /v1/club/roles/{subject}", s.handleSetRole)
	mux.HandleFunc("PUT /v1/club/roles/{subject}/image", s.handleSetRoleImage)
	mux.HandleFunc("DELETE /v1/club/roles/{subject}", s.handleClearRole)
	mux.HandleFunc("GET /v1/club/keys", s.handleKeyHolders)
	mux.HandleFunc("GET /v1/club/keys/{subject}", s.handleHasKey)
	mux.HandleFunc("POST /v1/club/keys/{subject}/grant", s.handleGrantKey)
	mux.HandleFunc("POST /v1/club/keys/{subject}/revoke", s.handleRevokeKey)

	mux.HandleFunc("GET /v1/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /v1/settings/{key}", s.handleSetSetting)

	mux.HandleFunc("GET /v1/games/hero", s.handleGetHero)
	mux.HandleFunc("POST /v1/games/hero", s.handleSetHero)
	mux.HandleFunc("POST /v1/games/hero/claim", s.handleClaimHero)
	mux.HandleFunc("POST /v1/games/codeword", s.handleSetCodeword)
	mux.HandleFunc("POST /v1/games/codeword/guess", s.handleGuessCodeword)
	mux.HandleFunc("GET /v1/games/pool", s.handlePoolBalance)
	mux.HandleFunc("POST /v1/games/pool/contribute", s.handleContribute)
	mux.HandleFunc("POST /v1/games/pool/payout", s.handlePoolPayout)
	mux.HandleFunc("POST /v1/games/bet", s.handlePlaceBet)
	mux.HandleFunc("POST /v1/games/rob", s.handleRob)
	mux.HandleFunc("POST /v1/games/salary/claim", s.handleClaimSalary)

	mux.HandleFunc("GET /v1/dedup", s.handleDedupCheck)
	mux.HandleFunc("POST /v1/dedup", s.handleDedupMark)

	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *NoirServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AuthMiddleware wraps an http.Handler and checks the Authorization header for
// a valid Bearer token. When token is empty, auth is disabled and all requests
// pass through. GET /v1/health is always exempt.
func AuthMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Exempt health check.
		if r.Method == http.MethodGet && r.URL.Path == "/v1/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "invalid authorization scheme")
			return
		}

		provided := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// pathID parses the named integer path value, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// decodeBody decodes the request body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
