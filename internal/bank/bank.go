// Package bank implements per-subject bank cells. A cell charges a one-off
// deposit fee and a storage fee per elapsed interval; storage fees accrue
// lazily, settled whenever the cell is next touched. The accrual position is
// tracked by a cell-timestamp marker event whose amount is a unix second, so
// the marker advances by exact interval multiples regardless of when the
// touch happens.
package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noirclub/noird/internal/guard"
	"github.com/noirclub/noird/internal/idgen"
	"github.com/noirclub/noird/internal/ledger"
	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/settings"
	"github.com/noirclub/noird/internal/store"
)

var (
	// ErrInsufficientFunds is returned when a deposit exceeds the subject's
	// pocket balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBusy is returned when another multi-step sequence for the same
	// subject is in flight; the caller should report "try again".
	ErrBusy = errors.New("subject busy")
)

const (
	feeReasonDeposit  = "deposit"
	feeReasonInterval = "interval"

	withdrawReasonOwner   = "owner"
	withdrawReasonRobbery = "robbery"
)

// Bank operates bank cells on top of the ledger.
type Bank struct {
	store    store.Store
	ledger   *ledger.Ledger
	settings *settings.Settings
	locks    *guard.Locks

	// Now is the clock used for fee accrual. Overridable in tests.
	Now func() time.Time
}

// New returns a Bank over the given store.
func New(s store.Store, l *ledger.Ledger, cfg *settings.Settings, locks *guard.Locks) *Bank {
	return &Bank{store: s, ledger: l, settings: cfg, locks: locks, Now: time.Now}
}

func ceilPct(amount, pct int64) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	return (amount*pct + 99) / 100
}

// cellBalance folds the cell's history: deposits in, withdrawals and fees out.
func (b *Bank) cellBalance(ctx context.Context, subject int64) (int64, error) {
	var total int64
	for _, leg := range []struct {
		kind model.Kind
		sign int64
	}{
		{model.KindCellDeposit, 1},
		{model.KindCellWithdraw, -1},
		{model.KindCellFee, -1},
	} {
		sum, err := b.store.SumAmounts(ctx, model.EventFilter{
			Kinds:   []model.Kind{leg.kind},
			Subject: &subject,
		})
		if err != nil {
			return 0, fmt.Errorf("cell balance of %d: %w", subject, err)
		}
		total += leg.sign * sum
	}
	if total < 0 {
		total = 0
	}
	return total, nil
}

func (b *Bank) marker(ctx context.Context, subject int64) (*model.Event, error) {
	ev, err := b.store.LastEvent(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindCellTimestamp},
		Subject: &subject,
	})
	if err != nil {
		return nil, fmt.Errorf("cell marker of %d: %w", subject, err)
	}
	return ev, nil
}

func (b *Bank) setMarker(ctx context.Context, subject, unix int64) error {
	ev := &model.Event{
		Subject: model.Int64(subject),
		Kind:    model.KindCellTimestamp,
		Amount:  model.Int64(unix),
	}
	if err := b.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("set cell marker of %d: %w", subject, err)
	}
	return nil
}

func (b *Bank) appendFee(ctx context.Context, subject, fee int64, reason, ref string) error {
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindCellFee,
		Amount:     model.Int64(fee),
		Annotation: model.EncodeFields([2]string{"reason", reason}, [2]string{"ref", ref}),
	}
	if err := b.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("charge cell fee for %d: %w", subject, err)
	}
	return nil
}

// Touch settles storage fees accrued since the marker: one fee per whole
// elapsed interval, each computed on the balance left by the previous one.
// The marker advances by exactly intervals*interval, so a touch within the
// same interval is a no-op and partial intervals are never charged.
func (b *Bank) Touch(ctx context.Context, subject int64) (*model.CellReceipt, error) {
	marker, err := b.marker(ctx, subject)
	if err != nil {
		return nil, err
	}
	balance, err := b.cellBalance(ctx, subject)
	if err != nil {
		return nil, err
	}
	receipt := &model.CellReceipt{Subject: subject, Balance: balance}
	if marker == nil {
		return receipt, nil
	}

	interval, err := b.settings.CellInterval(ctx)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return receipt, nil
	}
	pct, err := b.settings.StorageFeePct(ctx)
	if err != nil {
		return nil, err
	}

	elapsed := b.Now().Unix() - marker.AmountValue()
	intervals := elapsed / int64(interval/time.Second)
	if intervals <= 0 {
		return receipt, nil
	}

	var charged int64
	for i := int64(0); i < intervals; i++ {
		fee := ceilPct(balance, pct)
		if fee == 0 {
			break
		}
		if fee > balance {
			fee = balance
		}
		if err := b.appendFee(ctx, subject, fee, feeReasonInterval, ""); err != nil {
			return nil, err
		}
		balance -= fee
		charged += fee
	}

	next := marker.AmountValue() + intervals*int64(interval/time.Second)
	if err := b.setMarker(ctx, subject, next); err != nil {
		return nil, err
	}

	receipt.Fee = charged
	receipt.Intervals = intervals
	receipt.Balance = balance
	return receipt, nil
}

// Deposit moves gross out of the subject's pocket into their cell, charging
// the one-off deposit fee out of the deposited amount. Accrued storage fees
// are settled first so they are computed on the pre-deposit balance. The
// subject's lock is held from the pocket check through the debit.
func (b *Bank) Deposit(ctx context.Context, subject, gross int64) (*model.CellReceipt, error) {
	if gross <= 0 {
		return nil, fmt.Errorf("deposit %d: amount must be positive", gross)
	}
	if !b.locks.TryAcquire(subject) {
		return nil, ErrBusy
	}
	defer b.locks.Release(subject)

	pocket, err := b.ledger.Balance(ctx, subject)
	if err != nil {
		return nil, err
	}
	if pocket < gross {
		return nil, ErrInsufficientFunds
	}

	if _, err := b.Touch(ctx, subject); err != nil {
		return nil, err
	}

	pct, err := b.settings.DepositFeePct(ctx)
	if err != nil {
		return nil, err
	}
	fee := ceilPct(gross, pct)
	if fee >= gross {
		return nil, fmt.Errorf("deposit %d: fee %d leaves nothing to store", gross, fee)
	}

	ref, err := idgen.Generate()
	if err != nil {
		return nil, err
	}

	if _, err := b.ledger.ChangeBalance(ctx, subject, -gross, "bank deposit "+ref); err != nil {
		return nil, err
	}
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindCellDeposit,
		Amount:     model.Int64(gross),
		Annotation: model.DepositAnnotation{Fee: fee, Ref: ref}.Encode(),
	}
	if err := b.store.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("deposit %d for %d: %w", gross, subject, err)
	}
	if err := b.appendFee(ctx, subject, fee, feeReasonDeposit, ref); err != nil {
		return nil, err
	}

	marker, err := b.marker(ctx, subject)
	if err != nil {
		return nil, err
	}
	if marker == nil {
		if err := b.setMarker(ctx, subject, b.Now().Unix()); err != nil {
			return nil, err
		}
	}

	balance, err := b.cellBalance(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &model.CellReceipt{Subject: subject, Gross: gross, Fee: fee, Balance: balance}, nil
}

// Withdraw moves up to amount from the cell back into the pocket. Withdrawing
// more than the cell holds takes what is there; an empty cell is a no-op.
// The subject's lock is held from the cell read through the pocket credit.
func (b *Bank) Withdraw(ctx context.Context, subject, amount int64) (*model.CellReceipt, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdraw %d: amount must be positive", amount)
	}
	if !b.locks.TryAcquire(subject) {
		return nil, ErrBusy
	}
	defer b.locks.Release(subject)

	if _, err := b.Touch(ctx, subject); err != nil {
		return nil, err
	}
	balance, err := b.cellBalance(ctx, subject)
	if err != nil {
		return nil, err
	}
	taken := amount
	if taken > balance {
		taken = balance
	}
	if taken == 0 {
		return &model.CellReceipt{Subject: subject, Balance: balance}, nil
	}

	ref, err := idgen.Generate()
	if err != nil {
		return nil, err
	}
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindCellWithdraw,
		Amount:     model.Int64(taken),
		Annotation: model.EncodeFields([2]string{"reason", withdrawReasonOwner}, [2]string{"ref", ref}),
	}
	if err := b.store.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("withdraw %d for %d: %w", taken, subject, err)
	}
	if _, err := b.ledger.ChangeBalance(ctx, subject, taken, "bank withdraw "+ref); err != nil {
		return nil, err
	}
	return &model.CellReceipt{Subject: subject, Taken: taken, Balance: balance - taken}, nil
}

// Balance settles accrued fees and returns the cell balance.
func (b *Bank) Balance(ctx context.Context, subject int64) (int64, error) {
	receipt, err := b.Touch(ctx, subject)
	if err != nil {
		return 0, err
	}
	return receipt.Balance, nil
}

// subjects lists everyone who ever had a cell.
func (b *Bank) subjects(ctx context.Context) ([]int64, error) {
	subjects, err := b.store.Subjects(ctx, model.KindCellDeposit)
	if err != nil {
		return nil, fmt.Errorf("cell subjects: %w", err)
	}
	return subjects, nil
}

// Total settles every cell and returns the sum of their balances.
func (b *Bank) Total(ctx context.Context) (int64, error) {
	subjects, err := b.subjects(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, subject := range subjects {
		balance, err := b.Balance(ctx, subject)
		if err != nil {
			return 0, err
		}
		total += balance
	}
	return total, nil
}

// RobAll empties every cell and returns the loot. Each cell is settled first
// so accrued fees are not stolen, then drained with a robbery-tagged
// withdrawal. The stolen money goes wherever the caller sends it; RobAll
// itself only empties the cells.
func (b *Bank) RobAll(ctx context.Context, ref string) (int64, error) {
	subjects, err := b.subjects(ctx)
	if err != nil {
		return 0, err
	}
	var loot int64
	for _, subject := range subjects {
		balance, err := b.Balance(ctx, subject)
		if err != nil {
			return 0, err
		}
		if balance == 0 {
			continue
		}
		ev := &model.Event{
			Subject:    model.Int64(subject),
			Kind:       model.KindCellWithdraw,
			Amount:     model.Int64(balance),
			Annotation: model.EncodeFields([2]string{"reason", withdrawReasonRobbery}, [2]string{"ref", ref}),
		}
		if err := b.store.AppendEvent(ctx, ev); err != nil {
			return 0, fmt.Errorf("rob cell of %d: %w", subject, err)
		}
		loot += balance
	}
	return loot, nil
}
