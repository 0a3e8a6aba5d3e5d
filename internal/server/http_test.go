package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store/memory"
)

// newTestServer returns a fresh server over a memory store and an HTTP
// handler with auth disabled.
func newTestServer() (*NoirServer, *memory.MemoryStore, http.Handler) {
	ms := memory.New()
	s := NewNoirServer(ms, &events.NoopPublisher{})
	return s, ms, s.NewHTTPHandler("")
}

// doJSON performs an HTTP request with an optional JSON body and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// requireStatus asserts the recorder has the expected HTTP status code.
func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected status %d, got %d; body: %s", code, rec.Code, rec.Body.String())
	}
}

// decodeJSON decodes the recorder's response body into v.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "GET", "/v1/health", nil)
	requireStatus(t, rec, 200)
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Fatalf("expected status=ok, got %q", body["status"])
	}
}

func TestHandleHTTPErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{"GetBalance/BadSubject", "GET", "/v1/balances/abc", nil, 400},
		{"ChangeBalance/ZeroDelta", "POST", "/v1/balances/1/change", map[string]any{"delta": 0}, 400},
		{"GrantPerk/MissingCode", "POST", "/v1/perks/1/grant", map[string]any{}, 400},
		{"CreateOffer/ZeroPrice", "POST", "/v1/offers", map[string]any{"seller": 1, "price": 0}, 400},
		{"CreateOffer/BadKind", "POST", "/v1/offers", map[string]any{"seller": 1, "price": 5, "kind": "spaceship"}, 400},
		{"InitVault/ZeroCap", "POST", "/v1/vault/init", map[string]any{"cap": 0}, 400},
		{"Deposit/NegativeAmount", "POST", "/v1/bank/1/deposit", map[string]any{"amount": -5}, 400},
		{"SetRole/MissingName", "PUT", "/v1/club/roles/1", map[string]any{}, 400},
		{"SetRoleImage/MissingImage", "PUT", "/v1/club/roles/1/image", map[string]any{}, 400},
		{"SetRoleImage/NoRole", "PUT", "/v1/club/roles/99/image", map[string]any{"image": "img:abc"}, 404},
		{"SetSetting/UnknownKey", "PUT", "/v1/settings/flux_capacitor", map[string]any{"value": 1}, 404},
		{"GetRole/NoRole", "GET", "/v1/club/roles/99", nil, 404},
		{"Hero/NeverCrowned", "GET", "/v1/games/hero", nil, 404},
		{"Dedup/MissingKey", "GET", "/v1/dedup", nil, 400},
		{"SetCodeword/EmptyWord", "POST", "/v1/games/codeword", map[string]any{"word": "", "prize": 5}, 400},
		{"Bet/ZeroStake", "POST", "/v1/games/bet", map[string]any{"subject": 1, "stake": 0, "payout_mult": 2}, 400},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, h := newTestServer()
			rec := doJSON(t, h, tc.method, tc.path, tc.body)
			requireStatus(t, rec, tc.code)
		})
	}
}

func TestHandleBalanceFlow(t *testing.T) {
	_, _, h := newTestServer()

	rec := doJSON(t, h, "POST", "/v1/balances/7/change", map[string]any{"delta": 100, "reason": "seed"})
	requireStatus(t, rec, 200)
	var entry model.BalanceEntry
	decodeJSON(t, rec, &entry)
	if entry.Balance != 100 {
		t.Fatalf("expected balance 100, got %d", entry.Balance)
	}

	rec = doJSON(t, h, "GET", "/v1/balances/7", nil)
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &entry)
	if entry.Subject != 7 || entry.Balance != 100 {
		t.Fatalf("got subject=%d balance=%d", entry.Subject, entry.Balance)
	}

	rec = doJSON(t, h, "POST", "/v1/balances/7/reset", map[string]any{"actor": 1})
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "GET", "/v1/balances/7", nil)
	decodeJSON(t, rec, &entry)
	if entry.Balance != 0 {
		t.Fatalf("expected balance 0 after reset, got %d", entry.Balance)
	}
}

func TestHandleTopBalances(t *testing.T) {
	_, _, h := newTestServer()
	doJSON(t, h, "POST", "/v1/balances/1/change", map[string]any{"delta": 10})
	doJSON(t, h, "POST", "/v1/balances/2/change", map[string]any{"delta": 30})
	doJSON(t, h, "POST", "/v1/balances/3/change", map[string]any{"delta": 20})

	rec := doJSON(t, h, "GET", "/v1/balances/top?limit=2", nil)
	requireStatus(t, rec, 200)
	var top []model.BalanceEntry
	decodeJSON(t, rec, &top)
	if len(top) != 2 || top[0].Subject != 2 || top[1].Subject != 3 {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}
}

func TestHandlePerkFlow(t *testing.T) {
	_, _, h := newTestServer()

	rec := doJSON(t, h, "POST", "/v1/perks/5/grant", map[string]any{"code": "vip"})
	requireStatus(t, rec, 200)

	rec = doJSON(t, h, "GET", "/v1/perks/5", nil)
	requireStatus(t, rec, 200)
	var got struct {
		Perks []string `json:"perks"`
	}
	decodeJSON(t, rec, &got)
	if len(got.Perks) != 1 || got.Perks[0] != "vip" {
		t.Fatalf("expected [vip], got %v", got.Perks)
	}

	rec = doJSON(t, h, "POST", "/v1/perks/5/credits", map[string]any{"code": "vip", "n": 2})
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "POST", "/v1/perks/5/credits/use", map[string]any{"code": "vip"})
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "GET", "/v1/perks/5/credits?code=vip", nil)
	requireStatus(t, rec, 200)
	var credits struct {
		Credits int64 `json:"credits"`
	}
	decodeJSON(t, rec, &credits)
	if credits.Credits != 1 {
		t.Fatalf("expected 1 credit left, got %d", credits.Credits)
	}

	rec = doJSON(t, h, "POST", "/v1/perks/5/revoke", map[string]any{"code": "vip"})
	requireStatus(t, rec, 200)
}

func TestHandleUseCreditEmpty(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "POST", "/v1/perks/5/credits/use", map[string]any{"code": "vip"})
	requireStatus(t, rec, 409)
}

func TestHandleOfferLifecycle(t *testing.T) {
	_, _, h := newTestServer()
	doJSON(t, h, "POST", "/v1/balances/2/change", map[string]any{"delta": 500})

	rec := doJSON(t, h, "POST", "/v1/offers", map[string]any{"seller": 1, "price": 100, "item": "rare sticker"})
	requireStatus(t, rec, 201)
	var offer model.Offer
	decodeJSON(t, rec, &offer)
	if offer.ID == 0 || offer.Seller != 1 || offer.Price != 100 {
		t.Fatalf("unexpected offer: %+v", offer)
	}

	rec = doJSON(t, h, "GET", "/v1/offers", nil)
	requireStatus(t, rec, 200)
	var offers []model.Offer
	decodeJSON(t, rec, &offers)
	if len(offers) != 1 {
		t.Fatalf("expected 1 active offer, got %d", len(offers))
	}

	settlePath := fmt.Sprintf("/v1/offers/%d/settle", offer.ID)
	rec = doJSON(t, h, "POST", settlePath, map[string]any{"buyer": 1})
	requireStatus(t, rec, 409) // own offer

	rec = doJSON(t, h, "POST", settlePath, map[string]any{"buyer": 2})
	requireStatus(t, rec, 200)
	var settlement model.Settlement
	decodeJSON(t, rec, &settlement)
	if settlement.Buyer != 2 || settlement.Price != 100 || settlement.Burn != 5 {
		t.Fatalf("unexpected settlement: %+v", settlement)
	}

	rec = doJSON(t, h, "POST", settlePath, map[string]any{"buyer": 2})
	requireStatus(t, rec, 404) // already gone
}

func TestHandleCreateOfferPerkNotHeld(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "POST", "/v1/offers", map[string]any{"seller": 1, "price": 10, "kind": "perk", "item": "vip"})
	requireStatus(t, rec, 409)
}

func TestHandleVaultFlow(t *testing.T) {
	_, _, h := newTestServer()
	doJSON(t, h, "POST", "/v1/balances/1/change", map[string]any{"delta": 200})

	rec := doJSON(t, h, "GET", "/v1/vault/stats", nil)
	requireStatus(t, rec, 200)
	var stats model.VaultStats
	decodeJSON(t, rec, &stats)
	if stats.Initialized {
		t.Fatal("expected uninitialized vault")
	}

	rec = doJSON(t, h, "POST", "/v1/vault/init", map[string]any{"cap": 100, "actor": 1})
	requireStatus(t, rec, 409) // cap below circulating

	rec = doJSON(t, h, "POST", "/v1/vault/init", map[string]any{"cap": 1000, "actor": 1})
	requireStatus(t, rec, 200)
	var initResp map[string]int64
	decodeJSON(t, rec, &initResp)
	if initResp["free"] != 800 {
		t.Fatalf("expected free 800, got %d", initResp["free"])
	}

	rec = doJSON(t, h, "POST", "/v1/vault/burn", map[string]any{"amount": 50, "reason": "manual"})
	requireStatus(t, rec, 200)

	rec = doJSON(t, h, "GET", "/v1/vault/stats", nil)
	decodeJSON(t, rec, &stats)
	if !stats.Initialized || stats.Supply != 950 || stats.Vault != 750 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestHandleBankFlow(t *testing.T) {
	_, _, h := newTestServer()
	doJSON(t, h, "POST", "/v1/balances/4/change", map[string]any{"delta": 200})

	rec := doJSON(t, h, "POST", "/v1/bank/4/deposit", map[string]any{"amount": 100})
	requireStatus(t, rec, 200)
	var receipt model.CellReceipt
	decodeJSON(t, rec, &receipt)
	if receipt.Fee != 3 || receipt.Balance != 97 {
		t.Fatalf("expected fee 3 balance 97, got %+v", receipt)
	}

	rec = doJSON(t, h, "POST", "/v1/bank/4/deposit", map[string]any{"amount": 500})
	requireStatus(t, rec, 409) // pocket only holds 100

	rec = doJSON(t, h, "GET", "/v1/bank/total", nil)
	requireStatus(t, rec, 200)
	var total map[string]int64
	decodeJSON(t, rec, &total)
	if total["total"] != 97 {
		t.Fatalf("expected total 97, got %d", total["total"])
	}

	rec = doJSON(t, h, "POST", "/v1/bank/4/withdraw", map[string]any{"amount": 50})
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &receipt)
	if receipt.Taken != 50 || receipt.Balance != 47 {
		t.Fatalf("expected taken 50 balance 47, got %+v", receipt)
	}

	rec = doJSON(t, h, "GET", "/v1/bank/4", nil)
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &receipt)
	if receipt.Balance != 47 {
		t.Fatalf("expected cell balance 47, got %d", receipt.Balance)
	}
}

func TestHandleClubFlow(t *testing.T) {
	_, _, h := newTestServer()

	rec := doJSON(t, h, "PUT", "/v1/club/roles/3", map[string]any{"name": "казначей", "desc": "держит кассу"})
	requireStatus(t, rec, 200)

	rec = doJSON(t, h, "GET", "/v1/club/roles/3", nil)
	requireStatus(t, rec, 200)
	var role model.Role
	decodeJSON(t, rec, &role)
	if role.Name != "казначей" {
		t.Fatalf("expected казначей, got %q", role.Name)
	}

	rec = doJSON(t, h, "PUT", "/v1/club/roles/3/image", map[string]any{"image": "img:abc"})
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "GET", "/v1/club/roles/3", nil)
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &role)
	if role.Image != "img:abc" {
		t.Fatalf("expected role image img:abc, got %q", role.Image)
	}

	rec = doJSON(t, h, "GET", "/v1/club/roles", nil)
	requireStatus(t, rec, 200)
	var roles []model.Role
	decodeJSON(t, rec, &roles)
	if len(roles) != 1 {
		t.Fatalf("expected 1 role, got %d", len(roles))
	}

	rec = doJSON(t, h, "DELETE", "/v1/club/roles/3", nil)
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "GET", "/v1/club/roles/3", nil)
	requireStatus(t, rec, 404)

	rec = doJSON(t, h, "POST", "/v1/club/keys/3/grant", nil)
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "GET", "/v1/club/keys/3", nil)
	requireStatus(t, rec, 200)
	var key struct {
		Held bool `json:"held"`
	}
	decodeJSON(t, rec, &key)
	if !key.Held {
		t.Fatal("expected key held")
	}
	rec = doJSON(t, h, "POST", "/v1/club/keys/3/revoke", nil)
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "GET", "/v1/club/keys", nil)
	requireStatus(t, rec, 200)
	var holders struct {
		Holders []int64 `json:"holders"`
	}
	decodeJSON(t, rec, &holders)
	if len(holders.Holders) != 0 {
		t.Fatalf("expected no holders, got %v", holders.Holders)
	}
}

func TestHandleSettings(t *testing.T) {
	_, _, h := newTestServer()

	rec := doJSON(t, h, "GET", "/v1/settings", nil)
	requireStatus(t, rec, 200)
	var all map[string]int64
	decodeJSON(t, rec, &all)
	if all["burn_bps"] != 500 {
		t.Fatalf("expected default burn_bps 500, got %d", all["burn_bps"])
	}

	rec = doJSON(t, h, "PUT", "/v1/settings/burn_bps", map[string]any{"value": 250, "actor": 1})
	requireStatus(t, rec, 200)

	rec = doJSON(t, h, "GET", "/v1/settings", nil)
	decodeJSON(t, rec, &all)
	if all["burn_bps"] != 250 {
		t.Fatalf("expected burn_bps 250, got %d", all["burn_bps"])
	}
}

func TestHandleGamesFlow(t *testing.T) {
	_, _, h := newTestServer()

	rec := doJSON(t, h, "POST", "/v1/games/hero", map[string]any{"subject": 9, "title": "спас вечер"})
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "POST", "/v1/games/hero/claim", map[string]any{"subject": 9})
	requireStatus(t, rec, 200)
	var claim map[string]int64
	decodeJSON(t, rec, &claim)
	if claim["reward"] != 5 {
		t.Fatalf("expected reward 5, got %d", claim["reward"])
	}
	rec = doJSON(t, h, "POST", "/v1/games/hero/claim", map[string]any{"subject": 9})
	requireStatus(t, rec, 409) // already claimed

	rec = doJSON(t, h, "POST", "/v1/games/codeword", map[string]any{"word": "тайна", "prize": 7, "actor": 1})
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "POST", "/v1/games/codeword/guess", map[string]any{"subject": 9, "guess": "тайна"})
	requireStatus(t, rec, 200)
	var guess struct {
		Won   bool  `json:"won"`
		Prize int64 `json:"prize"`
	}
	decodeJSON(t, rec, &guess)
	if !guess.Won || guess.Prize != 7 {
		t.Fatalf("expected win with prize 7, got %+v", guess)
	}

	rec = doJSON(t, h, "POST", "/v1/games/pool/contribute", map[string]any{"subject": 9, "amount": 6})
	requireStatus(t, rec, 200)
	rec = doJSON(t, h, "GET", "/v1/games/pool", nil)
	var pool map[string]int64
	decodeJSON(t, rec, &pool)
	if pool["pool"] != 6 {
		t.Fatalf("expected pool 6, got %d", pool["pool"])
	}
	rec = doJSON(t, h, "POST", "/v1/games/pool/payout", map[string]any{"subject": 2})
	requireStatus(t, rec, 200)

	rec = doJSON(t, h, "POST", "/v1/games/bet", map[string]any{"subject": 2, "stake": 6, "won": true, "payout_mult": 2})
	requireStatus(t, rec, 200)
	var bet struct {
		Balance int64 `json:"balance"`
		Payout  int64 `json:"payout"`
	}
	decodeJSON(t, rec, &bet)
	if bet.Payout != 12 || bet.Balance != 12 {
		t.Fatalf("expected payout 12 balance 12, got %+v", bet)
	}
}

func TestHandleRob(t *testing.T) {
	_, _, h := newTestServer()
	doJSON(t, h, "POST", "/v1/balances/1/change", map[string]any{"delta": 100})
	doJSON(t, h, "POST", "/v1/bank/1/deposit", map[string]any{"amount": 100})

	rec := doJSON(t, h, "POST", "/v1/games/rob", map[string]any{"subject": 8})
	requireStatus(t, rec, 200)
	var rob map[string]int64
	decodeJSON(t, rec, &rob)
	if rob["loot"] != 97 {
		t.Fatalf("expected loot 97, got %d", rob["loot"])
	}

	rec = doJSON(t, h, "GET", "/v1/balances/8", nil)
	var entry model.BalanceEntry
	decodeJSON(t, rec, &entry)
	if entry.Balance != 97 {
		t.Fatalf("expected robber balance 97, got %d", entry.Balance)
	}
}

func TestHandleSalaryNotEntitled(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "POST", "/v1/games/salary/claim", map[string]any{"subject": 5})
	requireStatus(t, rec, 409)
}

func TestHandleDedup(t *testing.T) {
	_, _, h := newTestServer()

	rec := doJSON(t, h, "GET", "/v1/dedup?chat=10&msg=42", nil)
	requireStatus(t, rec, 200)
	var check map[string]bool
	decodeJSON(t, rec, &check)
	if check["processed"] {
		t.Fatal("expected unprocessed")
	}

	rec = doJSON(t, h, "POST", "/v1/dedup?chat=10&msg=42", nil)
	requireStatus(t, rec, 200)

	rec = doJSON(t, h, "GET", "/v1/dedup?chat=10&msg=42", nil)
	decodeJSON(t, rec, &check)
	if !check["processed"] {
		t.Fatal("expected processed")
	}
}

func TestHandleListEvents(t *testing.T) {
	_, _, h := newTestServer()
	doJSON(t, h, "POST", "/v1/balances/1/change", map[string]any{"delta": 10})
	doJSON(t, h, "POST", "/v1/balances/2/change", map[string]any{"delta": 20})

	rec := doJSON(t, h, "GET", "/v1/events?subject=2", nil)
	requireStatus(t, rec, 200)
	var list []model.Event
	decodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].SubjectID() != 2 {
		t.Fatalf("unexpected events: %+v", list)
	}
}
