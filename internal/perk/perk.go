// Package perk derives perk ownership, vouchers, and escrow state from
// grant/revoke/credit/escrow events.
package perk

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// Registry answers perk queries and appends perk mutations.
type Registry struct {
	store store.Store
}

// New returns a Registry over the given store.
func New(s store.Store) *Registry {
	return &Registry{store: s}
}

// Grant appends a perk-grant for the alias-normalized code.
func (r *Registry) Grant(ctx context.Context, subject int64, code string) error {
	code = Normalize(code)
	if code == "" {
		return nil
	}
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindPerkGrant,
		Annotation: code,
	}
	if err := r.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("grant perk %q to %d: %w", code, subject, err)
	}
	return nil
}

// Revoke appends a perk-revoke. If the perk was active and the subject holds
// a voucher for it, the voucher is consumed in the same transaction to
// re-grant the perk immediately, so a subject with a banked replacement never
// observes the perk missing. This auto-replacement is part of Revoke itself,
// not of any particular caller.
func (r *Registry) Revoke(ctx context.Context, subject int64, code string) error {
	code = Normalize(code)
	if code == "" {
		return nil
	}

	return r.store.RunInTransaction(ctx, func(tx store.Store) error {
		reg := &Registry{store: tx}

		wasActive, err := reg.Has(ctx, subject, code)
		if err != nil {
			return err
		}

		if err := reg.revokeRaw(ctx, subject, code); err != nil {
			return err
		}
		if !wasActive {
			return nil
		}

		credits, err := reg.Credits(ctx, subject, code)
		if err != nil {
			return err
		}
		if credits <= 0 {
			return nil
		}

		if err := reg.spendCredit(ctx, subject, code); err != nil {
			return err
		}
		return reg.Grant(ctx, subject, code)
	})
}

// revokeRaw appends a perk-revoke with no voucher auto-replacement. Used by
// Revoke internally and by escrow, which must actually remove the perk.
func (r *Registry) revokeRaw(ctx context.Context, subject int64, code string) error {
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindPerkRevoke,
		Annotation: code,
	}
	if err := r.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("revoke perk %q from %d: %w", code, subject, err)
	}
	return nil
}

// Active replays the subject's grant/revoke history in id order: every grant
// adds the code, every revoke removes it until the next grant.
func (r *Registry) Active(ctx context.Context, subject int64) (map[string]bool, error) {
	events, err := r.store.Events(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindPerkGrant, model.KindPerkRevoke},
		Subject: &subject,
	})
	if err != nil {
		return nil, fmt.Errorf("perk history for %d: %w", subject, err)
	}

	active := make(map[string]bool)
	for _, ev := range events {
		// Historical events may carry pre-rename codes.
		code := Normalize(ev.Annotation)
		if code == "" {
			continue
		}
		switch ev.Kind {
		case model.KindPerkGrant:
			active[code] = true
		case model.KindPerkRevoke:
			delete(active, code)
		}
	}
	return active, nil
}

// Has reports whether the subject currently holds the perk.
func (r *Registry) Has(ctx context.Context, subject int64, code string) (bool, error) {
	active, err := r.Active(ctx, subject)
	if err != nil {
		return false, err
	}
	return active[Normalize(code)], nil
}

// CreditAdd banks n vouchers for the code.
func (r *Registry) CreditAdd(ctx context.Context, subject int64, code string, n int64) error {
	code = Normalize(code)
	if code == "" || n <= 0 {
		return nil
	}
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindPerkCreditAdd,
		Amount:     model.Int64(n),
		Annotation: code,
	}
	if err := r.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("add %d credits of %q for %d: %w", n, code, subject, err)
	}
	return nil
}

// Credits returns the voucher count for (subject, code). Credit-use events
// carry negative amounts, so the count is a single sum.
func (r *Registry) Credits(ctx context.Context, subject int64, code string) (int64, error) {
	sum, err := r.store.SumAmounts(ctx, model.EventFilter{
		Kinds:      []model.Kind{model.KindPerkCreditAdd, model.KindPerkCreditUse},
		Subject:    &subject,
		Annotation: Normalize(code),
	})
	if err != nil {
		return 0, fmt.Errorf("credits of %q for %d: %w", code, subject, err)
	}
	if sum < 0 {
		sum = 0
	}
	return sum, nil
}

// CreditUse consumes one voucher. It returns false and appends nothing when
// the subject has no credits for the code.
func (r *Registry) CreditUse(ctx context.Context, subject int64, code string) (bool, error) {
	code = Normalize(code)
	credits, err := r.Credits(ctx, subject, code)
	if err != nil {
		return false, err
	}
	if credits <= 0 {
		return false, nil
	}
	if err := r.spendCredit(ctx, subject, code); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Registry) spendCredit(ctx context.Context, subject int64, code string) error {
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindPerkCreditUse,
		Amount:     model.Int64(-1),
		Annotation: code,
	}
	if err := r.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("use credit of %q for %d: %w", code, subject, err)
	}
	return nil
}
