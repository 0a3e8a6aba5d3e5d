package games

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/idgen"
)

// BetResult reports the outcome of a resolved bet.
type BetResult struct {
	Subject int64  `json:"subject"`
	Stake   int64  `json:"stake"`
	Won     bool   `json:"won"`
	Payout  int64  `json:"payout"`
	Balance int64  `json:"balance"`
	Ref     string `json:"ref"`
}

// PlaceBet runs the whole check-reserve-resolve sequence for one bet under
// the subject's lock: check the stake is covered, take it, then pay out
// stake*payoutMult on a win. The outcome is decided by the caller; the dice
// live in the chat adapter, not here. A subject whose previous bet is still
// resolving gets ErrBusy.
func (g *Games) PlaceBet(ctx context.Context, subject, stake int64, won bool, payoutMult int64) (*BetResult, error) {
	if stake <= 0 {
		return nil, fmt.Errorf("bet stake %d: must be positive", stake)
	}
	if payoutMult <= 0 {
		return nil, fmt.Errorf("bet payout multiplier %d: must be positive", payoutMult)
	}

	if !g.locks.TryAcquire(subject) {
		return nil, ErrBusy
	}
	defer g.locks.Release(subject)

	balance, err := g.ledger.Balance(ctx, subject)
	if err != nil {
		return nil, err
	}
	if balance < stake {
		return nil, ErrInsufficientFunds
	}

	ref, err := idgen.Generate()
	if err != nil {
		return nil, err
	}
	if _, err := g.ledger.ChangeBalance(ctx, subject, -stake, "bet stake "+ref); err != nil {
		return nil, err
	}

	result := &BetResult{Subject: subject, Stake: stake, Won: won, Ref: ref}
	if won {
		result.Payout = stake * payoutMult
		if _, err := g.ledger.ChangeBalance(ctx, subject, result.Payout, "bet win "+ref); err != nil {
			return nil, err
		}
	}

	result.Balance, err = g.ledger.Balance(ctx, subject)
	if err != nil {
		return nil, err
	}
	return result, nil
}
