// Package model defines the persisted event record, the closed set of event
// kinds, and the typed annotation payloads each kind carries.
package model

import "time"

// Kind identifies which derivation reads an event. The set is closed: a new
// derived aggregate gets new kinds, old kinds are never repurposed.
type Kind string

const (
	KindBalanceDelta     Kind = "balance-delta"
	KindPerkGrant        Kind = "perk-grant"
	KindPerkRevoke       Kind = "perk-revoke"
	KindPerkCreditAdd    Kind = "perk-credit-add"
	KindPerkCreditUse    Kind = "perk-credit-use"
	KindPerkEscrowOpen   Kind = "perk-escrow-open"
	KindPerkEscrowClose  Kind = "perk-escrow-close"
	KindOfferCreate      Kind = "offer-create"
	KindOfferCancel      Kind = "offer-cancel"
	KindOfferSold        Kind = "offer-sold"
	KindVaultInit        Kind = "vault-init"
	KindBurn             Kind = "burn"
	KindCellDeposit      Kind = "cell-deposit"
	KindCellWithdraw     Kind = "cell-withdraw"
	KindCellFee          Kind = "cell-fee"
	KindCellTimestamp    Kind = "cell-timestamp"
	KindConfigSet        Kind = "config-set"
	KindDedupMarker      Kind = "dedup-marker"
	KindCooldownMarker   Kind = "cooldown-marker"
	KindRoleSet          Kind = "role-set"
	KindKeyGrant         Kind = "key-grant"
	KindKeyRevoke        Kind = "key-revoke"
	KindHeroSet          Kind = "hero-set"
	KindHeroClaim        Kind = "hero-claim"
	KindCodewordSet      Kind = "codeword-set"
	KindCodewordWin      Kind = "codeword-win"
	KindGenerosityAdd    Kind = "generosity-add"
	KindGenerosityPayout Kind = "generosity-payout"
	KindBankRob          Kind = "bank-rob"
)

// Event is one immutable, append-only record in the log. Every piece of
// mutable state is derived by replaying or filter-querying these records.
//
// ID is assigned at insert and is the total order; derivations that need
// "most recent wins" order by ID, never by CreatedAt (second precision is
// not a safe tie-breaker).
type Event struct {
	ID         int64     `json:"id"`
	Subject    *int64    `json:"subject,omitempty"` // nil for system-wide events
	Kind       Kind      `json:"kind"`
	Amount     *int64    `json:"amount,omitempty"`
	Annotation string    `json:"annotation,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Int64 returns a pointer to v, for the nullable Subject and Amount fields.
func Int64(v int64) *int64 { return &v }

// SubjectID returns the event subject, or 0 when the event is system-wide.
func (e *Event) SubjectID() int64 {
	if e.Subject == nil {
		return 0
	}
	return *e.Subject
}

// AmountValue returns the event amount, or 0 when absent.
func (e *Event) AmountValue() int64 {
	if e.Amount == nil {
		return 0
	}
	return *e.Amount
}
