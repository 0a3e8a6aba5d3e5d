package server

import (
	"errors"
	"net/http"

	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/games"
)

// handleGetHero handles GET /v1/games/hero.
func (s *NoirServer) handleGetHero(w http.ResponseWriter, r *http.Request) {
	hero, err := s.games.Hero(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hero == nil {
		writeError(w, http.StatusNotFound, "no hero crowned")
		return
	}
	writeJSON(w, http.StatusOK, hero)
}

// handleSetHero handles POST /v1/games/hero.
func (s *NoirServer) handleSetHero(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Subject int64  `json:"subject"`
		Title   string `json:"title"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if err := s.games.SetHero(r.Context(), in.Subject, in.Title); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, games.Hero{Subject: in.Subject, Title: in.Title})
}

// handleClaimHero handles POST /v1/games/hero/claim.
func (s *NoirServer) handleClaimHero(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Subject int64 `json:"subject"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	reward, ok, err := s.games.ClaimHero(r.Context(), in.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "nothing to claim")
		return
	}

	s.publish(r.Context(), events.TopicHeroClaimed, events.HeroClaimed{Subject: in.Subject, Reward: reward})
	writeJSON(w, http.StatusOK, map[string]int64{"reward": reward})
}

// handleSetCodeword handles POST /v1/games/codeword.
func (s *NoirServer) handleSetCodeword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Word  string `json:"word"`
		Prize int64  `json:"prize"`
		Actor int64  `json:"actor"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Word == "" || in.Prize <= 0 {
		writeError(w, http.StatusBadRequest, "word and positive prize are required")
		return
	}
	if err := s.games.SetCodeword(r.Context(), in.Word, in.Prize, in.Actor); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGuessCodeword handles POST /v1/games/codeword/guess.
func (s *NoirServer) handleGuessCodeword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Subject int64  `json:"subject"`
		Guess   string `json:"guess"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	prize, won, err := s.games.TryCodeword(r.Context(), in.Subject, in.Guess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if won {
		s.publish(r.Context(), events.TopicCodewordWon, events.CodewordWon{Subject: in.Subject, Prize: prize})
	}
	writeJSON(w, http.StatusOK, map[string]any{"won": won, "prize": prize})
}

// handlePoolBalance handles GET /v1/games/pool.
func (s *NoirServer) handlePoolBalance(w http.ResponseWriter, r *http.Request) {
	pool, err := s.games.PoolBalance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"pool": pool})
}

// handleContribute handles POST /v1/games/pool/contribute.
func (s *NoirServer) handleContribute(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Subject int64 `json:"subject"`
		Amount  int64 `json:"amount"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	if err := s.games.Contribute(r.Context(), in.Subject, in.Amount); err != nil {
		if errors.Is(err, games.ErrInsufficientFunds) || errors.Is(err, games.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePoolPayout handles POST /v1/games/pool/payout.
func (s *NoirServer) handlePoolPayout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Subject int64 `json:"subject"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	amount, err := s.games.Payout(r.Context(), in.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if amount > 0 {
		s.publish(r.Context(), events.TopicPoolPaidOut, events.PoolPaidOut{Subject: in.Subject, Amount: amount})
	}
	writeJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}

// handlePlaceBet handles POST /v1/games/bet.
func (s *NoirServer) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Subject    int64 `json:"subject"`
		Stake      int64 `json:"stake"`
		Won        bool  `json:"won"`
		PayoutMult int64 `json:"payout_mult"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Stake <= 0 || in.PayoutMult <= 0 {
		writeError(w, http.StatusBadRequest, "positive stake and payout_mult are required")
		return
	}

	result, err := s.games.PlaceBet(r.Context(), in.Subject, in.Stake, in.Won, in.PayoutMult)
	if err != nil {
		switch {
		case errors.Is(err, games.ErrBusy):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, games.ErrInsufficientFunds):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.publish(r.Context(), events.TopicBetResolved, events.BetResolved{
		Subject: result.Subject,
		Stake:   result.Stake,
		Won:     result.Won,
		Payout:  result.Payout,
	})
	writeJSON(w, http.StatusOK, result)
}

// handleRob handles POST /v1/games/rob.
func (s *NoirServer) handleRob(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Subject int64 `json:"subject"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	loot, err := s.games.Rob(r.Context(), in.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), events.TopicBankRobbed, events.BankRobbed{Robber: in.Subject, Loot: loot})
	writeJSON(w, http.StatusOK, map[string]int64{"loot": loot})
}

// handleClaimSalary handles POST /v1/games/salary/claim.
func (s *NoirServer) handleClaimSalary(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Subject int64 `json:"subject"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	amount, ok, err := s.games.ClaimSalary(r.Context(), in.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "salary not due")
		return
	}

	s.publish(r.Context(), events.TopicSalaryPaid, events.SalaryPaid{Subject: in.Subject, Amount: amount})
	writeJSON(w, http.StatusOK, map[string]int64{"amount": amount})
}
