package perk

import (
	"context"
	"testing"

	"github.com/noirclub/noird/internal/store/memory"
)

func TestGrantRevokeRoundTrip(t *testing.T) {
	r := New(memory.New())
	ctx := context.Background()

	if err := r.Grant(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if has, _ := r.Has(ctx, 1, "vip"); !has {
		t.Error("vip should be active after grant")
	}

	if err := r.Revoke(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if has, _ := r.Has(ctx, 1, "vip"); has {
		t.Error("vip should be gone after revoke")
	}

	if err := r.Grant(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if has, _ := r.Has(ctx, 1, "vip"); !has {
		t.Error("vip should be active after re-grant")
	}
}

func TestNormalizeAliases(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"VIP", "vip"},
		{"  vip ", "vip"},
		{"зп", "salary"},
		{"вип", "vip"},
		{"salary", "salary"},
	} {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLegacyCodesCountAtReadTime(t *testing.T) {
	r := New(memory.New())
	ctx := context.Background()

	// A grant written before the rename existed.
	if err := r.Grant(ctx, 1, "зп"); err != nil {
		t.Fatal(err)
	}
	if has, _ := r.Has(ctx, 1, "salary"); !has {
		t.Error("legacy grant should read as the current code")
	}

	// Revoking via the current code removes the legacy grant.
	if err := r.Revoke(ctx, 1, "salary"); err != nil {
		t.Fatal(err)
	}
	if has, _ := r.Has(ctx, 1, "зп"); has {
		t.Error("perk should be gone under either name")
	}
}

func TestCredits(t *testing.T) {
	r := New(memory.New())
	ctx := context.Background()

	if n, _ := r.Credits(ctx, 1, "vip"); n != 0 {
		t.Errorf("initial credits = %d, want 0", n)
	}

	if err := r.CreditAdd(ctx, 1, "vip", 2); err != nil {
		t.Fatal(err)
	}
	if n, _ := r.Credits(ctx, 1, "vip"); n != 2 {
		t.Errorf("credits = %d, want 2", n)
	}

	ok, err := r.CreditUse(ctx, 1, "vip")
	if err != nil || !ok {
		t.Fatalf("credit use = %v, %v; want true, nil", ok, err)
	}
	if n, _ := r.Credits(ctx, 1, "vip"); n != 1 {
		t.Errorf("credits after use = %d, want 1", n)
	}
}

func TestCreditUseFailsAtZero(t *testing.T) {
	r := New(memory.New())
	ctx := context.Background()

	ok, err := r.CreditUse(ctx, 1, "vip")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("credit use should fail with no credits")
	}
	if n, _ := r.Credits(ctx, 1, "vip"); n != 0 {
		t.Errorf("credits = %d, want 0", n)
	}
}

func TestRevokeAutoReplacement(t *testing.T) {
	r := New(memory.New())
	ctx := context.Background()

	if err := r.Grant(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if err := r.CreditAdd(ctx, 1, "vip", 1); err != nil {
		t.Fatal(err)
	}

	if err := r.Revoke(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}

	// The voucher was consumed to keep the perk active.
	if has, _ := r.Has(ctx, 1, "vip"); !has {
		t.Error("vip should still be active via voucher auto-replacement")
	}
	if n, _ := r.Credits(ctx, 1, "vip"); n != 0 {
		t.Errorf("credits = %d, want 0 after auto-replacement", n)
	}

	// A second revoke has no voucher left and actually removes the perk.
	if err := r.Revoke(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if has, _ := r.Has(ctx, 1, "vip"); has {
		t.Error("vip should be gone once vouchers are exhausted")
	}
}

func TestRevokeInactivePerkKeepsVoucher(t *testing.T) {
	r := New(memory.New())
	ctx := context.Background()

	if err := r.CreditAdd(ctx, 1, "vip", 1); err != nil {
		t.Fatal(err)
	}
	if err := r.Revoke(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if n, _ := r.Credits(ctx, 1, "vip"); n != 1 {
		t.Errorf("credits = %d, want 1: revoking an inactive perk must not burn a voucher", n)
	}
}

func TestEscrowLifecycle(t *testing.T) {
	r := New(memory.New())
	ctx := context.Background()

	if err := r.Grant(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if err := r.EscrowOpen(ctx, 1, "vip", 42); err != nil {
		t.Fatal(err)
	}

	// Escrow removes the perk from the active set.
	if has, _ := r.Has(ctx, 1, "vip"); has {
		t.Error("escrowed perk should not be active")
	}

	hold, err := r.EscrowOwner(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if hold == nil || hold.Subject != 1 || hold.Code != "vip" {
		t.Fatalf("hold = %+v, want subject 1 code vip", hold)
	}

	if err := r.EscrowClose(ctx, 1, "vip", 42, "cancelled"); err != nil {
		t.Fatal(err)
	}
	hold, err = r.EscrowOwner(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if hold != nil {
		t.Errorf("hold after close = %+v, want nil", hold)
	}
}

func TestEscrowDoesNotConsumeVoucher(t *testing.T) {
	r := New(memory.New())
	ctx := context.Background()

	if err := r.Grant(ctx, 1, "vip"); err != nil {
		t.Fatal(err)
	}
	if err := r.CreditAdd(ctx, 1, "vip", 1); err != nil {
		t.Fatal(err)
	}
	if err := r.EscrowOpen(ctx, 1, "vip", 7); err != nil {
		t.Fatal(err)
	}

	if has, _ := r.Has(ctx, 1, "vip"); has {
		t.Error("escrowed perk should not be active even with a voucher banked")
	}
	if n, _ := r.Credits(ctx, 1, "vip"); n != 1 {
		t.Errorf("credits = %d, want 1: escrow must not trigger auto-replacement", n)
	}
}

func TestEscrowOwnerUnknownOffer(t *testing.T) {
	r := New(memory.New())
	hold, err := r.EscrowOwner(context.Background(), 999)
	if err != nil {
		t.Fatal(err)
	}
	if hold != nil {
		t.Errorf("hold = %+v, want nil", hold)
	}
}
