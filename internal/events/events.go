package events

import (
	"context"
	"errors"

	"github.com/noirclub/noird/internal/model"
)

// Event topic constants
const (
	TopicBalanceChanged = "noir.balance.changed"
	TopicBalanceReset   = "noir.balance.reset"

	TopicPerkGranted   = "noir.perk.granted"
	TopicPerkRevoked   = "noir.perk.revoked"
	TopicVoucherIssued = "noir.perk.voucher_issued"

	TopicOfferCreated   = "noir.offer.created"
	TopicOfferCancelled = "noir.offer.cancelled"
	TopicOfferSettled   = "noir.offer.settled"

	TopicVaultInitialized = "noir.vault.initialized"
	TopicBurnRecorded     = "noir.vault.burned"

	TopicCellDeposit  = "noir.bank.deposit"
	TopicCellWithdraw = "noir.bank.withdraw"
	TopicBankRobbed   = "noir.bank.robbed"

	TopicRoleSet    = "noir.club.role_set"
	TopicKeyChanged = "noir.club.key_changed"

	TopicHeroClaimed = "noir.games.hero_claimed"
	TopicCodewordWon = "noir.games.codeword_won"
	TopicBetResolved = "noir.games.bet_resolved"
	TopicPoolPaidOut = "noir.games.pool_paid_out"
	TopicSalaryPaid  = "noir.games.salary_paid"

	TopicSettingSet = "noir.settings.set"
)

// ErrUnknownTopic is returned when a publish names a subject outside the
// set declared above.
var ErrUnknownTopic = errors.New("unknown event topic")

var knownTopics = map[string]struct{}{
	TopicBalanceChanged:   {},
	TopicBalanceReset:     {},
	TopicPerkGranted:      {},
	TopicPerkRevoked:      {},
	TopicVoucherIssued:    {},
	TopicOfferCreated:     {},
	TopicOfferCancelled:   {},
	TopicOfferSettled:     {},
	TopicVaultInitialized: {},
	TopicBurnRecorded:     {},
	TopicCellDeposit:      {},
	TopicCellWithdraw:     {},
	TopicBankRobbed:       {},
	TopicRoleSet:          {},
	TopicKeyChanged:       {},
	TopicHeroClaimed:      {},
	TopicCodewordWon:      {},
	TopicBetResolved:      {},
	TopicPoolPaidOut:      {},
	TopicSalaryPaid:       {},
	TopicSettingSet:       {},
}

// KnownTopic reports whether topic is one of the declared noir.* subjects.
// Publishers check it so a typo cannot open a stray subject on the broker.
func KnownTopic(topic string) bool {
	_, ok := knownTopics[topic]
	return ok
}

// Event types

type BalanceChanged struct {
	Subject int64  `json:"subject"`
	Delta   int64  `json:"delta"`
	Balance int64  `json:"balance"`
	Reason  string `json:"reason,omitempty"`
}

type BalanceReset struct {
	Subject *int64 `json:"subject,omitempty"` // nil for a club-wide reset
	Actor   int64  `json:"actor"`
}

type PerkChanged struct {
	Subject int64  `json:"subject"`
	Code    string `json:"code"`
}

type VoucherIssued struct {
	Subject int64  `json:"subject"`
	Code    string `json:"code"`
	Credits int64  `json:"credits"`
}

type OfferCreated struct {
	Offer *model.Offer `json:"offer"`
}

type OfferCancelled struct {
	OfferID int64 `json:"offer_id"`
	By      int64 `json:"by"`
}

type OfferSettled struct {
	Settlement *model.Settlement `json:"settlement"`
}

type VaultInitialized struct {
	Cap  int64 `json:"cap"`
	Free int64 `json:"free"`
}

type BurnRecorded struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

type CellMovement struct {
	Receipt *model.CellReceipt `json:"receipt"`
}

type BankRobbed struct {
	Robber int64 `json:"robber"`
	Loot   int64 `json:"loot"`
}

type RoleSet struct {
	Role *model.Role `json:"role,omitempty"`
	// Subject is set when the role was cleared and Role is nil.
	Subject int64 `json:"subject"`
}

type KeyChanged struct {
	Subject int64 `json:"subject"`
	Held    bool  `json:"held"`
}

type HeroClaimed struct {
	Subject int64 `json:"subject"`
	Reward  int64 `json:"reward"`
}

type CodewordWon struct {
	Subject int64 `json:"subject"`
	Prize   int64 `json:"prize"`
}

type BetResolved struct {
	Subject int64 `json:"subject"`
	Stake   int64 `json:"stake"`
	Won     bool  `json:"won"`
	Payout  int64 `json:"payout"`
}

type PoolPaidOut struct {
	Subject int64 `json:"subject"`
	Amount  int64 `json:"amount"`
}

type SalaryPaid struct {
	Subject int64 `json:"subject"`
	Amount  int64 `json:"amount"`
}

type SettingSet struct {
	Key   string `json:"key"`
	Value int64  `json:"value"`
	Actor int64  `json:"actor"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
