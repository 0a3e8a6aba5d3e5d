package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/store/memory"
)

func newAuthedHandler(token string) http.Handler {
	s := NewNoirServer(memory.New(), &events.NoopPublisher{})
	return s.NewHTTPHandler(token)
}

func TestAuthMiddleware(t *testing.T) {
	for _, tc := range []struct {
		name   string
		header string
		code   int
	}{
		{"MissingHeader", "", 401},
		{"WrongScheme", "Basic c2VjcmV0", 401},
		{"WrongToken", "Bearer nope", 401},
		{"ValidToken", "Bearer secret", 200},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newAuthedHandler("secret")
			req := httptest.NewRequest("GET", "/v1/balances/top", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.code {
				t.Fatalf("expected status %d, got %d; body: %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareHealthExempt(t *testing.T) {
	h := newAuthedHandler("secret")
	req := httptest.NewRequest("GET", "/v1/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected health to bypass auth, got %d", rec.Code)
	}
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	h := newAuthedHandler("")
	req := httptest.NewRequest("GET", "/v1/balances/top", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected open access with empty token, got %d", rec.Code)
	}
}
