package model

import "time"

// Derived, read-only views reconstructed from the log. None of these are
// persisted.

// Offer is an active market offer derived from an offer-create event.
type Offer struct {
	ID        int64     `json:"id"` // the offer-create event ID
	Seller    int64     `json:"seller"`
	Price     int64     `json:"price"`
	Kind      OfferKind `json:"kind"`
	Item      string    `json:"item"`
	Ref       string    `json:"ref"`
	CreatedAt time.Time `json:"created_at"`
}

// Settlement reports the legs of a settled offer.
type Settlement struct {
	OfferID       int64  `json:"offer_id"`
	Buyer         int64  `json:"buyer"`
	Seller        int64  `json:"seller"`
	Price         int64  `json:"price"`
	Burn          int64  `json:"burn"`
	ToSeller      int64  `json:"to_seller"`
	Ref           string `json:"ref"`
	PerkCode      string `json:"perk_code,omitempty"`
	VoucherIssued bool   `json:"voucher_issued,omitempty"` // buyer already held the perk
}

// VaultStats is the money-supply snapshot. Initialized is false until the
// first vault-init epoch exists; the other fields are zero in that case.
type VaultStats struct {
	Initialized bool  `json:"initialized"`
	Cap         int64 `json:"cap"`
	Burned      int64 `json:"burned"`      // since the current epoch
	Circulating int64 `json:"circulating"` // live sum of pocket balances
	Vault       int64 `json:"vault"`       // cap - burned - circulating, floored at 0
	Supply      int64 `json:"supply"`      // cap - burned
	BankTotal   int64 `json:"bank_total"`
	BurnBps     int64 `json:"burn_bps"`
	Income      int64 `json:"income"` // fees collected since the epoch
}

// CellReceipt reports the outcome of a bank-cell operation.
type CellReceipt struct {
	Subject   int64 `json:"subject"`
	Gross     int64 `json:"gross,omitempty"`
	Fee       int64 `json:"fee,omitempty"`
	Taken     int64 `json:"taken,omitempty"`
	Intervals int64 `json:"intervals,omitempty"` // fee intervals charged by a touch
	Balance   int64 `json:"balance"`
}

// BalanceEntry is one row of the balance leaderboard.
type BalanceEntry struct {
	Subject int64 `json:"subject"`
	Balance int64 `json:"balance"`
}

// Role is a subject's current club role, nil-able at the call sites.
type Role struct {
	Subject int64      `json:"subject"`
	Name    string     `json:"name"`
	Desc    string     `json:"desc,omitempty"`
	Until   *time.Time `json:"until,omitempty"`
	Image   string     `json:"image,omitempty"`
}
