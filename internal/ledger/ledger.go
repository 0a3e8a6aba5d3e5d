// Package ledger derives pocket balances from balance-delta events.
//
// A balance is never stored: it is always the running sum of deltas for a
// subject, floored at zero. Resets are themselves deltas, so history is
// never rewritten.
package ledger

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// Ledger answers balance queries and appends balance mutations.
type Ledger struct {
	store store.Store
}

// New returns a Ledger over the given store.
func New(s store.Store) *Ledger {
	return &Ledger{store: s}
}

// Balance returns the subject's balance: the sum of its deltas, 0 for an
// unknown subject. The write path keeps the sum non-negative; the floor here
// covers logs written before that held.
func (l *Ledger) Balance(ctx context.Context, subject int64) (int64, error) {
	sum, err := l.store.SumAmounts(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindBalanceDelta},
		Subject: &subject,
	})
	if err != nil {
		return 0, fmt.Errorf("balance for %d: %w", subject, err)
	}
	if sum < 0 {
		sum = 0
	}
	return sum, nil
}

// ChangeBalance appends a balance-delta and returns the new balance. When
// the requested delta would push the balance below zero, the stored delta is
// clamped so the sum lands exactly on zero. Callers are expected to
// pre-check sufficiency; the clamp is a backstop, not an error.
func (l *Ledger) ChangeBalance(ctx context.Context, subject, delta int64, reason string) (int64, error) {
	current, err := l.Balance(ctx, subject)
	if err != nil {
		return 0, err
	}

	applied := delta
	if current+delta < 0 {
		applied = -current
	}

	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindBalanceDelta,
		Amount:     model.Int64(applied),
		Annotation: reason,
	}
	if err := l.store.AppendEvent(ctx, ev); err != nil {
		return 0, fmt.Errorf("change balance for %d: %w", subject, err)
	}
	return current + applied, nil
}

// ResetBalance zeroes one subject's balance with a compensating delta.
func (l *Ledger) ResetBalance(ctx context.Context, subject int64, reason string) error {
	current, err := l.Balance(ctx, subject)
	if err != nil {
		return err
	}
	if current == 0 {
		return nil
	}
	_, err = l.ChangeBalance(ctx, subject, -current, reason)
	return err
}

// ResetAllBalances zeroes every known balance inside one transaction, one
// compensating delta per subject.
func (l *Ledger) ResetAllBalances(ctx context.Context, reason string) error {
	return l.store.RunInTransaction(ctx, func(tx store.Store) error {
		sums, err := tx.SubjectSums(ctx, model.KindBalanceDelta)
		if err != nil {
			return fmt.Errorf("list balances: %w", err)
		}
		for _, s := range sums {
			if s.Sum <= 0 {
				continue
			}
			ev := &model.Event{
				Subject:    model.Int64(s.Subject),
				Kind:       model.KindBalanceDelta,
				Amount:     model.Int64(-s.Sum),
				Annotation: reason,
			}
			if err := tx.AppendEvent(ctx, ev); err != nil {
				return fmt.Errorf("reset balance for %d: %w", s.Subject, err)
			}
		}
		return nil
	})
}

// Top returns the n richest subjects with a positive balance.
func (l *Ledger) Top(ctx context.Context, n int) ([]model.BalanceEntry, error) {
	sums, err := l.store.SubjectSums(ctx, model.KindBalanceDelta)
	if err != nil {
		return nil, fmt.Errorf("top balances: %w", err)
	}

	var entries []model.BalanceEntry
	for _, s := range sums {
		if s.Sum <= 0 {
			break // sums are ordered largest first
		}
		entries = append(entries, model.BalanceEntry{Subject: s.Subject, Balance: s.Sum})
		if n > 0 && len(entries) == n {
			break
		}
	}
	return entries, nil
}

// Circulating returns the live sum of all pocket balances. Per-subject sums
// are floored at zero before adding, matching Balance.
func (l *Ledger) Circulating(ctx context.Context) (int64, error) {
	sums, err := l.store.SubjectSums(ctx, model.KindBalanceDelta)
	if err != nil {
		return 0, fmt.Errorf("circulating: %w", err)
	}

	var total int64
	for _, s := range sums {
		if s.Sum > 0 {
			total += s.Sum
		}
	}
	return total, nil
}

// KnownSubjects returns every subject that has ever had a balance delta.
func (l *Ledger) KnownSubjects(ctx context.Context) ([]int64, error) {
	return l.store.Subjects(ctx, model.KindBalanceDelta)
}
