package games

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/model"
)

// Contribute moves amount from the subject's pocket into the generosity pool.
// The subject's lock is held from the sufficiency check through the debit.
func (g *Games) Contribute(ctx context.Context, from, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("contribute %d: amount must be positive", amount)
	}
	if !g.locks.TryAcquire(from) {
		return ErrBusy
	}
	defer g.locks.Release(from)

	balance, err := g.ledger.Balance(ctx, from)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	if _, err := g.ledger.ChangeBalance(ctx, from, -amount, "generosity pool"); err != nil {
		return err
	}
	ev := &model.Event{
		Subject: model.Int64(from),
		Kind:    model.KindGenerosityAdd,
		Amount:  model.Int64(amount),
	}
	if err := g.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("contribute %d to pool: %w", amount, err)
	}
	return nil
}

// PoolBalance is what the pool currently holds.
func (g *Games) PoolBalance(ctx context.Context) (int64, error) {
	added, err := g.store.SumAmounts(ctx, model.EventFilter{
		Kinds: []model.Kind{model.KindGenerosityAdd},
	})
	if err != nil {
		return 0, fmt.Errorf("pool contributions: %w", err)
	}
	paid, err := g.store.SumAmounts(ctx, model.EventFilter{
		Kinds: []model.Kind{model.KindGenerosityPayout},
	})
	if err != nil {
		return 0, fmt.Errorf("pool payouts: %w", err)
	}
	pool := added - paid
	if pool < 0 {
		pool = 0
	}
	return pool, nil
}

// Payout empties the pool into the recipient's pocket and returns the amount.
// An empty pool pays nothing and appends nothing.
func (g *Games) Payout(ctx context.Context, to int64) (int64, error) {
	pool, err := g.PoolBalance(ctx)
	if err != nil {
		return 0, err
	}
	if pool == 0 {
		return 0, nil
	}
	ev := &model.Event{
		Subject: model.Int64(to),
		Kind:    model.KindGenerosityPayout,
		Amount:  model.Int64(pool),
	}
	if err := g.store.AppendEvent(ctx, ev); err != nil {
		return 0, fmt.Errorf("pay pool to %d: %w", to, err)
	}
	if _, err := g.ledger.ChangeBalance(ctx, to, pool, "generosity payout"); err != nil {
		return 0, err
	}
	return pool, nil
}
