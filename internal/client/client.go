// Package client provides a transport-agnostic interface for the noird
// service and an HTTP/JSON implementation that talks to the noird REST API.
package client

import (
	"context"
	"time"

	"github.com/noirclub/noird/internal/games"
	"github.com/noirclub/noird/internal/model"
)

// NoirClient is the interface that all noird CLI commands use to communicate
// with the server. It is implemented by HTTPClient (default) and can be
// backed by any transport.
type NoirClient interface {
	// Balances
	GetBalance(ctx context.Context, subject int64) (*model.BalanceEntry, error)
	ChangeBalance(ctx context.Context, subject, delta int64, reason string) (*model.BalanceEntry, error)
	ResetBalance(ctx context.Context, subject, actor int64) error
	ResetAllBalances(ctx context.Context, actor int64) error
	TopBalances(ctx context.Context, limit int) ([]model.BalanceEntry, error)
	ListEvents(ctx context.Context, req *ListEventsRequest) ([]*model.Event, error)

	// Perks
	GetPerks(ctx context.Context, subject int64) ([]string, error)
	GrantPerk(ctx context.Context, subject int64, code string) error
	RevokePerk(ctx context.Context, subject int64, code string) error
	GetCredits(ctx context.Context, subject int64, code string) (int64, error)
	AddCredits(ctx context.Context, subject int64, code string, n int64) (int64, error)
	UseCredit(ctx context.Context, subject int64, code string) error

	// Market
	CreateOffer(ctx context.Context, req *CreateOfferRequest) (*model.Offer, error)
	ListOffers(ctx context.Context) ([]*model.Offer, error)
	CancelOffer(ctx context.Context, id, by int64) error
	SettleOffer(ctx context.Context, id, buyer int64) (*model.Settlement, error)

	// Vault
	InitVault(ctx context.Context, cap, actor int64) (int64, error)
	VaultStats(ctx context.Context) (*model.VaultStats, error)
	RecordBurn(ctx context.Context, amount int64, reason string) error

	// Bank
	CellBalance(ctx context.Context, subject int64) (*model.CellReceipt, error)
	Deposit(ctx context.Context, subject, amount int64) (*model.CellReceipt, error)
	Withdraw(ctx context.Context, subject, amount int64) (*model.CellReceipt, error)
	BankTotal(ctx context.Context) (int64, error)

	// Club
	AllRoles(ctx context.Context) ([]*model.Role, error)
	GetRole(ctx context.Context, subject int64) (*model.Role, error)
	SetRole(ctx context.Context, subject int64, name, desc string, until *time.Time) (*model.Role, error)
	SetRoleImage(ctx context.Context, subject int64, image string) (*model.Role, error)
	ClearRole(ctx context.Context, subject int64) error
	KeyHolders(ctx context.Context) ([]int64, error)
	GrantKey(ctx context.Context, subject int64) error
	RevokeKey(ctx context.Context, subject int64) error

	// Settings
	GetSettings(ctx context.Context) (map[string]int64, error)
	SetSetting(ctx context.Context, key string, value, actor int64) error

	// Games
	GetHero(ctx context.Context) (*games.Hero, error)
	SetHero(ctx context.Context, subject int64, title string) error
	ClaimHero(ctx context.Context, subject int64) (int64, error)
	SetCodeword(ctx context.Context, word string, prize, actor int64) error
	GuessCodeword(ctx context.Context, subject int64, guess string) (*GuessResult, error)
	PoolBalance(ctx context.Context) (int64, error)
	Contribute(ctx context.Context, subject, amount int64) error
	PoolPayout(ctx context.Context, subject int64) (int64, error)
	PlaceBet(ctx context.Context, req *PlaceBetRequest) (*games.BetResult, error)
	Rob(ctx context.Context, subject int64) (int64, error)
	ClaimSalary(ctx context.Context, subject int64) (int64, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// ListEventsRequest holds filters for the event history listing.
type ListEventsRequest struct {
	Subject *int64
	Kind    string
	Limit   int
}

// CreateOfferRequest holds parameters for putting an offer on the market.
type CreateOfferRequest struct {
	Seller int64  `json:"seller"`
	Price  int64  `json:"price"`
	Kind   string `json:"kind,omitempty"`
	Item   string `json:"item"`
}

// PlaceBetRequest holds parameters for one resolved bet.
type PlaceBetRequest struct {
	Subject    int64 `json:"subject"`
	Stake      int64 `json:"stake"`
	Won        bool  `json:"won"`
	PayoutMult int64 `json:"payout_mult"`
}

// GuessResult is the outcome of a codeword guess.
type GuessResult struct {
	Won   bool  `json:"won"`
	Prize int64 `json:"prize"`
}
