// Package market derives the set of active offers from create/cancel/sold
// events and settles purchases. An offer's ID is its create event's ID; it
// leaves the active set when an offer-cancel carries that ID as its amount or
// an offer-sold references it in its annotation. An offer transitions
// create -> cancel or create -> sold exactly once; the derivation treats any
// later transition as a no-op.
package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/noirclub/noird/internal/guard"
	"github.com/noirclub/noird/internal/idgen"
	"github.com/noirclub/noird/internal/ledger"
	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/perk"
	"github.com/noirclub/noird/internal/settings"
	"github.com/noirclub/noird/internal/store"
	"github.com/noirclub/noird/internal/vault"
)

var (
	// ErrNotActive is returned when the offer does not exist or was already
	// cancelled or sold.
	ErrNotActive = errors.New("offer not active")
	// ErrInsufficientFunds is returned when the buyer cannot cover the price.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrOwnOffer is returned when a seller tries to buy their own offer.
	ErrOwnOffer = errors.New("cannot settle own offer")
	// ErrPerkNotHeld is returned when a seller lists a perk they do not hold.
	ErrPerkNotHeld = errors.New("perk not held")
	// ErrBusy is returned when another multi-step sequence for the buyer is
	// in flight; the caller should report "try again".
	ErrBusy = errors.New("buyer busy")
)

// Market operates offers over the ledger, perk registry, and vault.
type Market struct {
	store    store.Store
	ledger   *ledger.Ledger
	perks    *perk.Registry
	vault    *vault.Vault
	settings *settings.Settings
	locks    *guard.Locks
}

// New returns a Market over the given store and services.
func New(s store.Store, l *ledger.Ledger, p *perk.Registry, v *vault.Vault, cfg *settings.Settings, locks *guard.Locks) *Market {
	return &Market{store: s, ledger: l, perks: p, vault: v, settings: cfg, locks: locks}
}

// Create lists a new offer and returns its ID. A perk-backed offer moves the
// perk into escrow: the seller stops holding it the moment it is listed, so
// it cannot be sold twice or revoked out from under a pending sale.
func (m *Market) Create(ctx context.Context, seller, price int64, kind model.OfferKind, item string) (int64, error) {
	if price <= 0 {
		return 0, fmt.Errorf("create offer: price %d must be positive", price)
	}
	if kind == model.OfferPerk {
		item = perk.Normalize(item)
		held, err := m.perks.Has(ctx, seller, item)
		if err != nil {
			return 0, err
		}
		if !held {
			return 0, ErrPerkNotHeld
		}
	}

	ref, err := idgen.Generate()
	if err != nil {
		return 0, err
	}
	ev := &model.Event{
		Subject:    model.Int64(seller),
		Kind:       model.KindOfferCreate,
		Amount:     model.Int64(price),
		Annotation: model.OfferAnnotation{Kind: kind, Item: item, Ref: ref}.Encode(),
	}
	if err := m.store.AppendEvent(ctx, ev); err != nil {
		return 0, fmt.Errorf("create offer: %w", err)
	}

	if kind == model.OfferPerk {
		if err := m.perks.EscrowOpen(ctx, seller, item, ev.ID); err != nil {
			return 0, err
		}
	}
	return ev.ID, nil
}

// Active lists the currently active offers, oldest first.
func (m *Market) Active(ctx context.Context) ([]*model.Offer, error) {
	events, err := m.store.Events(ctx, model.EventFilter{
		Kinds: []model.Kind{model.KindOfferCreate, model.KindOfferCancel, model.KindOfferSold},
	})
	if err != nil {
		return nil, fmt.Errorf("offer history: %w", err)
	}

	gone := make(map[int64]bool)
	for _, ev := range events {
		switch ev.Kind {
		case model.KindOfferCancel:
			gone[ev.AmountValue()] = true
		case model.KindOfferSold:
			gone[model.ParseSoldAnnotation(ev.Annotation).Offer] = true
		}
	}

	var offers []*model.Offer
	for _, ev := range events {
		if ev.Kind != model.KindOfferCreate || gone[ev.ID] {
			continue
		}
		ann := model.ParseOfferAnnotation(ev.Annotation)
		offers = append(offers, &model.Offer{
			ID:        ev.ID,
			Seller:    ev.SubjectID(),
			Price:     ev.AmountValue(),
			Kind:      ann.Kind,
			Item:      ann.Item,
			Ref:       ann.Ref,
			CreatedAt: ev.CreatedAt,
		})
	}
	return offers, nil
}

// Get returns the offer if it is active, nil otherwise.
func (m *Market) Get(ctx context.Context, offerID int64) (*model.Offer, error) {
	offers, err := m.Active(ctx)
	if err != nil {
		return nil, err
	}
	for _, offer := range offers {
		if offer.ID == offerID {
			return offer, nil
		}
	}
	return nil, nil
}

// Cancel withdraws an active offer. A perk-backed offer returns the escrowed
// perk to its owner. Cancelling an offer that is not active is a safe no-op.
func (m *Market) Cancel(ctx context.Context, offerID, by int64) error {
	offer, err := m.Get(ctx, offerID)
	if err != nil {
		return err
	}
	if offer == nil {
		return nil
	}

	ev := &model.Event{
		Subject: model.Int64(by),
		Kind:    model.KindOfferCancel,
		Amount:  model.Int64(offerID),
	}
	if err := m.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("cancel offer %d: %w", offerID, err)
	}

	if offer.Kind == model.OfferPerk {
		hold, err := m.perks.EscrowOwner(ctx, offerID)
		if err != nil {
			return err
		}
		if hold != nil {
			if err := m.perks.EscrowClose(ctx, hold.Subject, hold.Code, offerID, "cancelled"); err != nil {
				return err
			}
			if err := m.perks.Grant(ctx, hold.Subject, hold.Code); err != nil {
				return err
			}
		}
	}
	return nil
}

// Settle sells the offer to the buyer. The sale is a sequence of independent
// appends sharing one reference code, not a single transaction: debit the
// buyer, burn the cut, credit the seller the remainder, mark the offer sold,
// then resolve perk escrow. A crash mid-sequence leaves a partial but fully
// reconstructible trail: every leg carries the same ref, so an operator can
// find and complete or compensate an interrupted sale.
//
// The buyer's lock is held from the sufficiency check through the debit, so
// two settlements cannot both spend the same balance.
func (m *Market) Settle(ctx context.Context, offerID, buyer int64) (*model.Settlement, error) {
	offer, err := m.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrNotActive
	}
	if offer.Seller == buyer {
		return nil, ErrOwnOffer
	}

	if !m.locks.TryAcquire(buyer) {
		return nil, ErrBusy
	}
	defer m.locks.Release(buyer)

	balance, err := m.ledger.Balance(ctx, buyer)
	if err != nil {
		return nil, err
	}
	if balance < offer.Price {
		return nil, ErrInsufficientFunds
	}

	bps, err := m.settings.BurnBps(ctx)
	if err != nil {
		return nil, err
	}
	burn := offer.Price * bps / 10000
	toSeller := offer.Price - burn

	ref, err := idgen.Generate()
	if err != nil {
		return nil, err
	}

	if _, err := m.ledger.ChangeBalance(ctx, buyer, -offer.Price, "market purchase "+ref); err != nil {
		return nil, err
	}
	if err := m.vault.RecordBurn(ctx, burn, "market sale "+ref); err != nil {
		return nil, err
	}
	if _, err := m.ledger.ChangeBalance(ctx, offer.Seller, toSeller, "market sale "+ref); err != nil {
		return nil, err
	}

	sold := &model.Event{
		Subject:    model.Int64(offer.Seller),
		Kind:       model.KindOfferSold,
		Amount:     model.Int64(offer.Price),
		Annotation: model.SoldAnnotation{Offer: offerID, Buyer: buyer, Ref: ref}.Encode(),
	}
	if err := m.store.AppendEvent(ctx, sold); err != nil {
		return nil, fmt.Errorf("mark offer %d sold: %w", offerID, err)
	}

	result := &model.Settlement{
		OfferID:  offerID,
		Buyer:    buyer,
		Seller:   offer.Seller,
		Price:    offer.Price,
		Burn:     burn,
		ToSeller: toSeller,
		Ref:      ref,
	}

	if offer.Kind == model.OfferPerk {
		if err := m.resolveEscrow(ctx, offer, buyer, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// resolveEscrow hands the escrowed perk to the buyer. A buyer who already
// holds the perk gets a voucher instead, so the purchase is never silently
// absorbed by the duplicate.
func (m *Market) resolveEscrow(ctx context.Context, offer *model.Offer, buyer int64, result *model.Settlement) error {
	hold, err := m.perks.EscrowOwner(ctx, offer.ID)
	if err != nil {
		return err
	}
	if hold == nil {
		return nil
	}
	if err := m.perks.EscrowClose(ctx, hold.Subject, hold.Code, offer.ID, "sold"); err != nil {
		return err
	}
	result.PerkCode = hold.Code

	held, err := m.perks.Has(ctx, buyer, hold.Code)
	if err != nil {
		return err
	}
	if held {
		result.VoucherIssued = true
		return m.perks.CreditAdd(ctx, buyer, hold.Code, 1)
	}
	return m.perks.Grant(ctx, buyer, hold.Code)
}
