// Package vault accounts for the club's money supply. A vault-init event
// opens an accounting epoch with a hard cap; burns recorded after the epoch
// shrink the supply, and the vault reads as whatever part of the supply is
// neither in pockets nor in bank cells' history yet.
package vault

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/bank"
	"github.com/noirclub/noird/internal/ledger"
	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/settings"
	"github.com/noirclub/noird/internal/store"
)

// Vault answers supply queries and records burns.
type Vault struct {
	store    store.Store
	ledger   *ledger.Ledger
	bank     *bank.Bank
	settings *settings.Settings
}

// New returns a Vault over the given store.
func New(s store.Store, l *ledger.Ledger, b *bank.Bank, cfg *settings.Settings) *Vault {
	return &Vault{store: s, ledger: l, bank: b, settings: cfg}
}

// epoch returns the most recent vault-init event, nil when the vault was
// never initialized.
func (v *Vault) epoch(ctx context.Context) (*model.Event, error) {
	ev, err := v.store.LastEvent(ctx, model.EventFilter{
		Kinds:         []model.Kind{model.KindVaultInit},
		SystemSubject: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vault epoch: %w", err)
	}
	return ev, nil
}

// Init opens a new accounting epoch with the given cap. The epoch starts
// "clean": burns and fees recorded before it no longer count against the
// supply. A cap below what is already circulating would make the vault
// negative from the start, so Init refuses it and returns nil.
func (v *Vault) Init(ctx context.Context, cap int64, actor int64) (*int64, error) {
	if cap <= 0 {
		return nil, fmt.Errorf("init vault with cap %d: cap must be positive", cap)
	}
	circulating, err := v.ledger.Circulating(ctx)
	if err != nil {
		return nil, err
	}
	if cap < circulating {
		return nil, nil
	}

	ev := &model.Event{
		Kind:       model.KindVaultInit,
		Amount:     model.Int64(cap),
		Annotation: model.EncodeFields([2]string{"actor", fmt.Sprint(actor)}),
	}
	if err := v.store.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("init vault: %w", err)
	}
	free := cap - circulating
	return &free, nil
}

// RecordBurn permanently removes amount from the supply.
func (v *Vault) RecordBurn(ctx context.Context, amount int64, reason string) error {
	if amount <= 0 {
		return nil
	}
	ev := &model.Event{
		Kind:       model.KindBurn,
		Amount:     model.Int64(amount),
		Annotation: reason,
	}
	if err := v.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("record burn of %d: %w", amount, err)
	}
	return nil
}

// Stats reconstructs the supply snapshot for the current epoch. When no
// epoch exists the snapshot reads as uninitialized and every figure is zero.
// The bank total settles accrued cell fees as a side effect, so the returned
// figures are consistent with each other at the moment of the call.
func (v *Vault) Stats(ctx context.Context) (*model.VaultStats, error) {
	epoch, err := v.epoch(ctx)
	if err != nil {
		return nil, err
	}
	if epoch == nil {
		return &model.VaultStats{}, nil
	}

	bankTotal, err := v.bank.Total(ctx)
	if err != nil {
		return nil, err
	}
	burned, err := v.store.SumAmounts(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindBurn},
		AfterID: epoch.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("burned since epoch: %w", err)
	}
	income, err := v.store.SumAmounts(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindCellFee},
		AfterID: epoch.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("fee income since epoch: %w", err)
	}
	circulating, err := v.ledger.Circulating(ctx)
	if err != nil {
		return nil, err
	}
	burnBps, err := v.settings.BurnBps(ctx)
	if err != nil {
		return nil, err
	}

	cap := epoch.AmountValue()
	// Money parked in bank cells is not circulating, so it stays inside the
	// vault figure; BankTotal reports it separately.
	vault := cap - burned - circulating
	if vault < 0 {
		vault = 0
	}
	return &model.VaultStats{
		Initialized: true,
		Cap:         cap,
		Burned:      burned,
		Circulating: circulating,
		Vault:       vault,
		Supply:      cap - burned,
		BankTotal:   bankTotal,
		BurnBps:     burnBps,
		Income:      income,
	}, nil
}
