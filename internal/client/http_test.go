package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	method string
	path   string
	query  string
	body   string
	auth   string

	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.RawQuery
	h.auth = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler, token string) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, token)
	return c, srv
}

func TestHTTPClient_GetBalance(t *testing.T) {
	h := &testHandler{responseBody: `{"subject": 7, "balance": 42}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	entry, err := c.GetBalance(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetBalance() error = %v", err)
	}
	if h.method != http.MethodGet || h.path != "/v1/balances/7" {
		t.Errorf("got %s %s, want GET /v1/balances/7", h.method, h.path)
	}
	if entry.Subject != 7 || entry.Balance != 42 {
		t.Errorf("got %+v", entry)
	}
}

func TestHTTPClient_ChangeBalance(t *testing.T) {
	h := &testHandler{responseBody: `{"subject": 7, "balance": 52}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	entry, err := c.ChangeBalance(context.Background(), 7, 10, "bonus")
	if err != nil {
		t.Fatalf("ChangeBalance() error = %v", err)
	}
	if h.method != http.MethodPost || h.path != "/v1/balances/7/change" {
		t.Errorf("got %s %s, want POST /v1/balances/7/change", h.method, h.path)
	}
	if h.body == "" || entry.Balance != 52 {
		t.Errorf("body=%q entry=%+v", h.body, entry)
	}
}

func TestHTTPClient_BearerToken(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	c, srv := newTestClient(h, "secret")
	defer srv.Close()

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.auth != "Bearer secret" {
		t.Errorf("auth header = %q, want Bearer secret", h.auth)
	}
}

func TestHTTPClient_GetCreditsQuery(t *testing.T) {
	h := &testHandler{responseBody: `{"subject": 3, "code": "vip", "credits": 2}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	credits, err := c.GetCredits(context.Background(), 3, "vip")
	if err != nil {
		t.Fatalf("GetCredits() error = %v", err)
	}
	if h.path != "/v1/perks/3/credits" || h.query != "code=vip" {
		t.Errorf("got %s?%s", h.path, h.query)
	}
	if credits != 2 {
		t.Errorf("credits = %d, want 2", credits)
	}
}

func TestHTTPClient_APIError(t *testing.T) {
	h := &testHandler{statusCode: 409, responseBody: `{"error": "insufficient funds"}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	_, err := c.Deposit(context.Background(), 1, 1000)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 409 || apiErr.Message != "insufficient funds" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestHTTPClient_SettleOffer(t *testing.T) {
	h := &testHandler{responseBody: `{"offer_id": 12, "buyer": 2, "seller": 1, "price": 100, "burn": 5, "to_seller": 95, "ref": "nr-abc"}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	settlement, err := c.SettleOffer(context.Background(), 12, 2)
	if err != nil {
		t.Fatalf("SettleOffer() error = %v", err)
	}
	if h.path != "/v1/offers/12/settle" {
		t.Errorf("path = %q", h.path)
	}
	if settlement.ToSeller != 95 || settlement.Ref != "nr-abc" {
		t.Errorf("got %+v", settlement)
	}
}
