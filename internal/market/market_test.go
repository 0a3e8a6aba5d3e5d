package market

import (
	"context"
	"errors"
	"testing"

	"github.com/noirclub/noird/internal/bank"
	"github.com/noirclub/noird/internal/guard"
	"github.com/noirclub/noird/internal/ledger"
	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/perk"
	"github.com/noirclub/noird/internal/settings"
	"github.com/noirclub/noird/internal/store"
	"github.com/noirclub/noird/internal/store/memory"
	"github.com/noirclub/noird/internal/vault"
)

type fixture struct {
	market *Market
	ledger *ledger.Ledger
	perks  *perk.Registry
	locks  *guard.Locks
	store  store.Store
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()
	l := ledger.New(st)
	p := perk.New(st)
	cfg := settings.New(st)
	locks := guard.New()
	v := vault.New(st, l, bank.New(st, l, cfg, locks), cfg)
	return &fixture{
		market: New(st, l, p, v, cfg, locks),
		ledger: l,
		perks:  p,
		locks:  locks,
		store:  st,
	}
}

func TestCreateAndList(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	id, err := f.market.Create(ctx, 1, 100, model.OfferItem, "старинная зажигалка")
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("offer ID should be the create event ID, never 0")
	}

	offers, err := f.market.Active(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(offers) != 1 {
		t.Fatalf("active offers = %d, want 1", len(offers))
	}
	got := offers[0]
	if got.ID != id || got.Seller != 1 || got.Price != 100 || got.Item != "старинная зажигалка" {
		t.Errorf("offer = %+v", got)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	id, err := f.market.Create(ctx, 1, 100, model.OfferItem, "thing")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.market.Cancel(ctx, id, 1); err != nil {
		t.Fatal(err)
	}
	if offer, _ := f.market.Get(ctx, id); offer != nil {
		t.Errorf("offer = %+v, want nil after cancel", offer)
	}

	// A second cancel and a cancel of an unknown offer are safe no-ops.
	if err := f.market.Cancel(ctx, id, 1); err != nil {
		t.Fatal(err)
	}
	if err := f.market.Cancel(ctx, 9999, 1); err != nil {
		t.Fatal(err)
	}
}

func TestSettleMovesMoney(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	if _, err := f.ledger.ChangeBalance(ctx, 2, 150, "seed"); err != nil {
		t.Fatal(err)
	}
	id, err := f.market.Create(ctx, 1, 100, model.OfferItem, "thing")
	if err != nil {
		t.Fatal(err)
	}

	result, err := f.market.Settle(ctx, id, 2)
	if err != nil {
		t.Fatal(err)
	}
	// Default burn rate is 500 bps: burn 5, seller nets 95.
	if result.Burn != 5 || result.ToSeller != 95 {
		t.Errorf("result = %+v, want burn 5 toSeller 95", result)
	}
	if result.Ref == "" {
		t.Error("settlement legs must share a reference code")
	}

	if bal, _ := f.ledger.Balance(ctx, 2); bal != 50 {
		t.Errorf("buyer balance = %d, want 50", bal)
	}
	if bal, _ := f.ledger.Balance(ctx, 1); bal != 95 {
		t.Errorf("seller balance = %d, want 95", bal)
	}
	if offer, _ := f.market.Get(ctx, id); offer != nil {
		t.Errorf("offer = %+v, want gone after sale", offer)
	}

	// The sold offer cannot be settled again.
	if _, err := f.market.Settle(ctx, id, 2); !errors.Is(err, ErrNotActive) {
		t.Errorf("second settle err = %v, want ErrNotActive", err)
	}
}

func TestSettlePreconditions(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	id, err := f.market.Create(ctx, 1, 100, model.OfferItem, "thing")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.market.Settle(ctx, id, 2); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("broke buyer err = %v, want ErrInsufficientFunds", err)
	}
	if _, err := f.market.Settle(ctx, id, 1); !errors.Is(err, ErrOwnOffer) {
		t.Errorf("self-purchase err = %v, want ErrOwnOffer", err)
	}
	if _, err := f.market.Settle(ctx, 9999, 2); !errors.Is(err, ErrNotActive) {
		t.Errorf("unknown offer err = %v, want ErrNotActive", err)
	}
}

func TestPerkOfferEscrowsOnCreate(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	if err := f.perks.Grant(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	id, err := f.market.Create(ctx, 1, 100, model.OfferPerk, "vip")
	if err != nil {
		t.Fatal(err)
	}

	// Listing moves the perk into escrow: the seller no longer holds it.
	if has, _ := f.perks.Has(ctx, 1, "vip"); has {
		t.Error("seller should not hold the perk while it is listed")
	}
	hold, err := f.perks.EscrowOwner(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if hold == nil || hold.Subject != 1 {
		t.Fatalf("hold = %+v, want seller 1", hold)
	}

	// A perk the seller does not hold cannot be listed.
	if _, err := f.market.Create(ctx, 2, 50, model.OfferPerk, "vip"); !errors.Is(err, ErrPerkNotHeld) {
		t.Errorf("err = %v, want ErrPerkNotHeld", err)
	}
}

func TestCancelPerkOfferReturnsPerk(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	if err := f.perks.Grant(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	id, err := f.market.Create(ctx, 1, 100, model.OfferPerk, "vip")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.market.Cancel(ctx, id, 1); err != nil {
		t.Fatal(err)
	}

	if has, _ := f.perks.Has(ctx, 1, "vip"); !has {
		t.Error("cancelled listing should return the perk to the seller")
	}
	if hold, _ := f.perks.EscrowOwner(ctx, id); hold != nil {
		t.Errorf("hold = %+v, want closed escrow", hold)
	}
}

func TestSettlePerkOfferGrantsBuyer(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	if err := f.perks.Grant(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.ledger.ChangeBalance(ctx, 2, 100, "seed"); err != nil {
		t.Fatal(err)
	}
	id, err := f.market.Create(ctx, 1, 100, model.OfferPerk, "vip")
	if err != nil {
		t.Fatal(err)
	}

	result, err := f.market.Settle(ctx, id, 2)
	if err != nil {
		t.Fatal(err)
	}
	if result.PerkCode != "vip" || result.VoucherIssued {
		t.Errorf("result = %+v, want perk vip granted directly", result)
	}
	if has, _ := f.perks.Has(ctx, 2, "vip"); !has {
		t.Error("buyer should hold the perk after the sale")
	}
	if hold, _ := f.perks.EscrowOwner(ctx, id); hold != nil {
		t.Errorf("hold = %+v, want closed escrow", hold)
	}
}

func TestSettlePerkOfferIssuesVoucherToHolder(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	if err := f.perks.Grant(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if err := f.perks.Grant(ctx, 2, "vip"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.ledger.ChangeBalance(ctx, 2, 100, "seed"); err != nil {
		t.Fatal(err)
	}
	id, err := f.market.Create(ctx, 1, 100, model.OfferPerk, "vip")
	if err != nil {
		t.Fatal(err)
	}

	result, err := f.market.Settle(ctx, id, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !result.VoucherIssued {
		t.Errorf("result = %+v, want a voucher for the duplicate holder", result)
	}
	if n, _ := f.perks.Credits(ctx, 2, "vip"); n != 1 {
		t.Errorf("buyer credits = %d, want 1", n)
	}
}

func TestSettleWhileBuyerBusy(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	if _, err := f.ledger.ChangeBalance(ctx, 2, 150, "seed"); err != nil {
		t.Fatal(err)
	}
	id, err := f.market.Create(ctx, 1, 100, model.OfferItem, "thing")
	if err != nil {
		t.Fatal(err)
	}

	// Another sequence for the buyer is in flight: the settle must refuse
	// rather than re-check a balance that is about to change.
	if !f.locks.TryAcquire(2) {
		t.Fatal("buyer lock should be free")
	}
	if _, err := f.market.Settle(ctx, id, 2); !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
	if bal, _ := f.ledger.Balance(ctx, 2); bal != 150 {
		t.Errorf("buyer balance = %d, want untouched 150", bal)
	}
	if bal, _ := f.ledger.Balance(ctx, 1); bal != 0 {
		t.Errorf("seller balance = %d, want untouched 0", bal)
	}

	f.locks.Release(2)
	if _, err := f.market.Settle(ctx, id, 2); err != nil {
		t.Fatal(err)
	}
}

func TestSettleCannotSpendBalanceTwice(t *testing.T) {
	f := newFixture(t, memory.New())
	ctx := context.Background()

	// A buyer with 100 facing two 100-coin offers can afford exactly one.
	if _, err := f.ledger.ChangeBalance(ctx, 3, 100, "seed"); err != nil {
		t.Fatal(err)
	}
	first, err := f.market.Create(ctx, 1, 100, model.OfferItem, "one")
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.market.Create(ctx, 2, 100, model.OfferItem, "two")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.market.Settle(ctx, first, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := f.market.Settle(ctx, second, 3); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("second settle err = %v, want ErrInsufficientFunds", err)
	}

	// One sale's worth of money moved, no more: buyer emptied, first seller
	// paid net of burn, second seller got nothing.
	if bal, _ := f.ledger.Balance(ctx, 3); bal != 0 {
		t.Errorf("buyer balance = %d, want 0", bal)
	}
	if bal, _ := f.ledger.Balance(ctx, 1); bal != 95 {
		t.Errorf("first seller balance = %d, want 95", bal)
	}
	if bal, _ := f.ledger.Balance(ctx, 2); bal != 0 {
		t.Errorf("second seller balance = %d, want 0", bal)
	}
}

// crashStore fails every append after the first n, simulating a process
// crash in the middle of a multi-leg settlement.
type crashStore struct {
	store.Store
	remaining int
}

var errCrash = errors.New("simulated crash")

func (c *crashStore) AppendEvent(ctx context.Context, ev *model.Event) error {
	if c.remaining <= 0 {
		return errCrash
	}
	c.remaining--
	return c.Store.AppendEvent(ctx, ev)
}

func (c *crashStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(c)
}

func TestSettleCrashLeavesReconstructibleTrail(t *testing.T) {
	st := memory.New()
	f := newFixture(t, st)
	ctx := context.Background()

	if _, err := f.ledger.ChangeBalance(ctx, 2, 150, "seed"); err != nil {
		t.Fatal(err)
	}
	id, err := f.market.Create(ctx, 1, 100, model.OfferItem, "thing")
	if err != nil {
		t.Fatal(err)
	}

	// Crash after the first settlement leg: the buyer is debited, nothing
	// else happened yet.
	crashed := newFixture(t, &crashStore{Store: st, remaining: 1})
	if _, err := crashed.market.Settle(ctx, id, 2); !errors.Is(err, errCrash) {
		t.Fatalf("err = %v, want simulated crash", err)
	}

	if bal, _ := f.ledger.Balance(ctx, 2); bal != 50 {
		t.Errorf("buyer balance = %d, want 50: the debit leg landed", bal)
	}
	if bal, _ := f.ledger.Balance(ctx, 1); bal != 0 {
		t.Errorf("seller balance = %d, want 0: the credit leg never ran", bal)
	}
	offer, err := f.market.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if offer == nil {
		t.Fatal("offer should still be active: the sold marker never landed")
	}

	// The orphaned debit is findable by its reference annotation, so an
	// operator can compensate or complete the sale.
	last, err := st.LastEvent(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindBalanceDelta},
		Subject: model.Int64(2),
	})
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.Annotation == "seed" {
		t.Fatalf("last delta = %+v, want the ref-tagged purchase leg", last)
	}

	// A retry against the healthy store completes the sale normally.
	if _, err := f.ledger.ChangeBalance(ctx, 2, 100, "compensate "+last.Annotation); err != nil {
		t.Fatal(err)
	}
	if _, err := f.market.Settle(ctx, id, 2); err != nil {
		t.Fatal(err)
	}
	if offer, _ := f.market.Get(ctx, id); offer != nil {
		t.Errorf("offer = %+v, want sold after retry", offer)
	}
}
