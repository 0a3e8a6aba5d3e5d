// Package games implements the club's mini-games on top of the ledger: hero
// of the day, the codeword hunt, the generosity pool, bets, the bank robbery,
// and the salary claim. Every game is a thin rule layer over event appends;
// none of them keeps state of its own.
package games

import (
	"errors"

	"github.com/noirclub/noird/internal/bank"
	"github.com/noirclub/noird/internal/cooldown"
	"github.com/noirclub/noird/internal/guard"
	"github.com/noirclub/noird/internal/ledger"
	"github.com/noirclub/noird/internal/perk"
	"github.com/noirclub/noird/internal/settings"
	"github.com/noirclub/noird/internal/store"
)

var (
	// ErrBusy is returned when another multi-step sequence for the same
	// subject is in flight; the caller should report "try again".
	ErrBusy = errors.New("subject busy")
	// ErrInsufficientFunds is returned when a stake or contribution exceeds
	// the subject's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Games bundles the mini-game rules over the shared services.
type Games struct {
	store    store.Store
	ledger   *ledger.Ledger
	bank     *bank.Bank
	perks    *perk.Registry
	settings *settings.Settings
	cooldown *cooldown.Tracker
	locks    *guard.Locks
}

// New returns a Games over the given services.
func New(s store.Store, l *ledger.Ledger, b *bank.Bank, p *perk.Registry, cfg *settings.Settings, cd *cooldown.Tracker, locks *guard.Locks) *Games {
	return &Games{store: s, ledger: l, bank: b, perks: p, settings: cfg, cooldown: cd, locks: locks}
}
