package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/noirclub/noird/internal/games"
	"github.com/noirclub/noird/internal/model"
)

// HTTPClient implements NoirClient using the noird HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func subjectPath(base string, subject int64, rest string) string {
	p := base + "/" + strconv.FormatInt(subject, 10)
	if rest != "" {
		p += "/" + rest
	}
	return p
}

// --- Balances ---

func (c *HTTPClient) GetBalance(ctx context.Context, subject int64) (*model.BalanceEntry, error) {
	var entry model.BalanceEntry
	if err := c.doJSON(ctx, http.MethodGet, subjectPath("/v1/balances", subject, ""), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *HTTPClient) ChangeBalance(ctx context.Context, subject, delta int64, reason string) (*model.BalanceEntry, error) {
	body := map[string]any{"delta": delta, "reason": reason}
	var entry model.BalanceEntry
	if err := c.doJSON(ctx, http.MethodPost, subjectPath("/v1/balances", subject, "change"), body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *HTTPClient) ResetBalance(ctx context.Context, subject, actor int64) error {
	return c.doJSON(ctx, http.MethodPost, subjectPath("/v1/balances", subject, "reset"), map[string]int64{"actor": actor}, nil)
}

func (c *HTTPClient) ResetAllBalances(ctx context.Context, actor int64) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/balances/reset", map[string]int64{"actor": actor}, nil)
}

func (c *HTTPClient) TopBalances(ctx context.Context, limit int) ([]model.BalanceEntry, error) {
	path := "/v1/balances/top"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var top []model.BalanceEntry
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &top); err != nil {
		return nil, err
	}
	return top, nil
}

func (c *HTTPClient) ListEvents(ctx context.Context, req *ListEventsRequest) ([]*model.Event, error) {
	q := url.Values{}
	if req.Subject != nil {
		q.Set("subject", strconv.FormatInt(*req.Subject, 10))
	}
	if req.Kind != "" {
		q.Set("kind", req.Kind)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	path := "/v1/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var list []*model.Event
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// --- Perks ---

func (c *HTTPClient) GetPerks(ctx context.Context, subject int64) ([]string, error) {
	var resp struct {
		Perks []string `json:"perks"`
	}
	if err := c.doJSON(ctx, http.MethodGet, subjectPath("/v1/perks", subject, ""), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Perks, nil
}

func (c *HTTPClient) GrantPerk(ctx context.Context, subject int64, code string) error {
	return c.doJSON(ctx, http.MethodPost, subjectPath("/v1/perks", subject, "grant"), map[string]string{"code": code}, nil)
}

func (c *HTTPClient) RevokePerk(ctx context.Context, subject int64, code string) error {
	return c.doJSON(ctx, http.MethodPost, subjectPath("/v1/perks", subject, "revoke"), map[string]string{"code": code}, nil)
}

func (c *HTTPClient) GetCredits(ctx context.Context, subject int64, code string) (int64, error) {
	var resp struct {
		Credits int64 `json:"credits"`
	}
	path := subjectPath("/v1/perks", subject, "credits") + "?code=" + url.QueryEscape(code)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Credits, nil
}

func (c *HTTPClient) AddCredits(ctx context.Context, subject int64, code string, n int64) (int64, error) {
	body := map[string]any{"code": code, "n": n}
	var resp struct {
		Credits int64 `json:"credits"`
	}
	if err := c.doJSON(ctx, http.MethodPost, subjectPath("/v1/perks", subject, "credits"), body, &resp); err != nil {
		return 0, err
	}
	return resp.Credits, nil
}

func (c *HTTPClient) UseCredit(ctx context.Context, subject int64, code string) error {
	return c.doJSON(ctx, http.MethodPost, subjectPath("/v1/perks", subject, "credits/use"), map[string]string{"code": code}, nil)
}

// --- Market ---

func (c *HTTPClient) CreateOffer(ctx context.Context, req *CreateOfferRequest) (*model.Offer, error) {
	var offer model.Offer
	if err := c.doJSON(ctx, http.MethodPost, "/v1/offers", req, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (c *HTTPClient) ListOffers(ctx context.Context) ([]*model.Offer, error) {
	var offers []*model.Offer
	if err := c.doJSON(ctx, http.MethodGet, "/v1/offers", nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (c *HTTPClient) CancelOffer(ctx context.Context, id, by int64) error {
	path := fmt.Sprintf("/v1/offers/%d/cancel", id)
	return c.doJSON(ctx, http.MethodPost, path, map[string]int64{"by": by}, nil)
}

func (c *HTTPClient) SettleOffer(ctx context.Context, id, buyer int64) (*model.Settlement, error) {
	path := fmt.Sprintf("/v1/offers/%d/settle", id)
	var settlement model.Settlement
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]int64{"buyer": buyer}, &settlement); err != nil {
		return nil, err
	}
	return &settlement, nil
}

// --- Vault ---

func (c *HTTPClient) InitVault(ctx context.Context, cap, actor int64) (int64, error) {
	body := map[string]int64{"cap": cap, "actor": actor}
	var resp map[string]int64
	if err := c.doJSON(ctx, http.MethodPost, "/v1/vault/init", body, &resp); err != nil {
		return 0, err
	}
	return resp["free"], nil
}

func (c *HTTPClient) VaultStats(ctx context.Context) (*model.VaultStats, error) {
	var stats model.VaultStats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/vault/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) RecordBurn(ctx context.Context, amount int64, reason string) error {
	body := map[string]any{"amount": amount, "reason": reason}
	return c.doJSON(ctx, http.MethodPost, "/v1/vault/burn", body, nil)
}

// --- Bank ---

func (c *HTTPClient) CellBalance(ctx context.Context, subject int64) (*model.CellReceipt, error) {
	var receipt model.CellReceipt
	if err := c.doJSON(ctx, http.MethodGet, subjectPath("/v1/bank", subject, ""), nil, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *HTTPClient) Deposit(ctx context.Context, subject, amount int64) (*model.CellReceipt, error) {
	var receipt model.CellReceipt
	if err := c.doJSON(ctx, http.MethodPost, subjectPath("/v1/bank", subject, "deposit"), map[string]int64{"amount": amount}, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *HTTPClient) Withdraw(ctx context.Context, subject, amount int64) (*model.CellReceipt, error) {
	var receipt model.CellReceipt
	if err := c.doJSON(ctx, http.MethodPost, subjectPath("/v1/bank", subject, "withdraw"), map[string]int64{"amount": amount}, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *HTTPClient) BankTotal(ctx context.Context) (int64, error) {
	var resp map[string]int64
	if err := c.doJSON(ctx, http.MethodGet, "/v1/bank/total", nil, &resp); err != nil {
		return 0, err
	}
	return resp["total"], nil
}

// --- Club ---

func (c *HTTPClient) AllRoles(ctx context.Context) ([]*model.Role, error) {
	var roles []*model.Role
	if err := c.doJSON(ctx, http.MethodGet, "/v1/club/roles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (c *HTTPClient) GetRole(ctx context.Context, subject int64) (*model.Role, error) {
	var role model.Role
	if err := c.doJSON(ctx, http.MethodGet, subjectPath("/v1/club/roles", subject, ""), nil, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (c *HTTPClient) SetRole(ctx context.Context, subject int64, name, desc string, until *time.Time) (*model.Role, error) {
	body := map[string]any{"name": name, "desc": desc}
	if until != nil {
		body["until"] = until
	}
	var role model.Role
	if err := c.doJSON(ctx, http.MethodPut, subjectPath("/v1/club/roles", subject, ""), body, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (c *HTTPClient) SetRoleImage(ctx context.Context, subject int64, image string) (*model.Role, error) {
	body := map[string]any{"image": image}
	var role model.Role
	if err := c.doJSON(ctx, http.MethodPut, subjectPath("/v1/club/roles", subject, "image"), body, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (c *HTTPClient) ClearRole(ctx context.Context, subject int64) error {
	return c.doJSON(ctx, http.MethodDelete, subjectPath("/v1/club/roles", subject, ""), nil, nil)
}

func (c *HTTPClient) KeyHolders(ctx context.Context) ([]int64, error) {
	var resp struct {
		Holders []int64 `json:"holders"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/club/keys", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Holders, nil
}

func (c *HTTPClient) GrantKey(ctx context.Context, subject int64) error {
	return c.doJSON(ctx, http.MethodPost, subjectPath("/v1/club/keys", subject, "grant"), nil, nil)
}

func (c *HTTPClient) RevokeKey(ctx context.Context, subject int64) error {
	return c.doJSON(ctx, http.MethodPost, subjectPath("/v1/club/keys", subject, "revoke"), nil, nil)
}

// --- Settings ---

func (c *HTTPClient) GetSettings(ctx context.Context) (map[string]int64, error) {
	var all map[string]int64
	if err := c.doJSON(ctx, http.MethodGet, "/v1/settings", nil, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (c *HTTPClient) SetSetting(ctx context.Context, key string, value, actor int64) error {
	body := map[string]int64{"value": value, "actor": actor}
	return c.doJSON(ctx, http.MethodPut, "/v1/settings/"+url.PathEscape(key), body, nil)
}

// --- Games ---

func (c *HTTPClient) GetHero(ctx context.Context) (*games.Hero, error) {
	var hero games.Hero
	if err := c.doJSON(ctx, http.MethodGet, "/v1/games/hero", nil, &hero); err != nil {
		return nil, err
	}
	return &hero, nil
}

func (c *HTTPClient) SetHero(ctx context.Context, subject int64, title string) error {
	body := map[string]any{"subject": subject, "title": title}
	return c.doJSON(ctx, http.MethodPost, "/v1/games/hero", body, nil)
}

func (c *HTTPClient) ClaimHero(ctx context.Context, subject int64) (int64, error) {
	var resp map[string]int64
	if err := c.doJSON(ctx, http.MethodPost, "/v1/games/hero/claim", map[string]int64{"subject": subject}, &resp); err != nil {
		return 0, err
	}
	return resp["reward"], nil
}

func (c *HTTPClient) SetCodeword(ctx context.Context, word string, prize, actor int64) error {
	body := map[string]any{"word": word, "prize": prize, "actor": actor}
	return c.doJSON(ctx, http.MethodPost, "/v1/games/codeword", body, nil)
}

func (c *HTTPClient) GuessCodeword(ctx context.Context, subject int64, guess string) (*GuessResult, error) {
	body := map[string]any{"subject": subject, "guess": guess}
	var result GuessResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/games/codeword/guess", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) PoolBalance(ctx context.Context) (int64, error) {
	var resp map[string]int64
	if err := c.doJSON(ctx, http.MethodGet, "/v1/games/pool", nil, &resp); err != nil {
		return 0, err
	}
	return resp["pool"], nil
}

func (c *HTTPClient) Contribute(ctx context.Context, subject, amount int64) error {
	body := map[string]int64{"subject": subject, "amount": amount}
	return c.doJSON(ctx, http.MethodPost, "/v1/games/pool/contribute", body, nil)
}

func (c *HTTPClient) PoolPayout(ctx context.Context, subject int64) (int64, error) {
	var resp map[string]int64
	if err := c.doJSON(ctx, http.MethodPost, "/v1/games/pool/payout", map[string]int64{"subject": subject}, &resp); err != nil {
		return 0, err
	}
	return resp["amount"], nil
}

func (c *HTTPClient) PlaceBet(ctx context.Context, req *PlaceBetRequest) (*games.BetResult, error) {
	var result games.BetResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/games/bet", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Rob(ctx context.Context, subject int64) (int64, error) {
	var resp map[string]int64
	if err := c.doJSON(ctx, http.MethodPost, "/v1/games/rob", map[string]int64{"subject": subject}, &resp); err != nil {
		return 0, err
	}
	return resp["loot"], nil
}

func (c *HTTPClient) ClaimSalary(ctx context.Context, subject int64) (int64, error) {
	var resp map[string]int64
	if err := c.doJSON(ctx, http.MethodPost, "/v1/games/salary/claim", map[string]int64{"subject": subject}, &resp); err != nil {
		return 0, err
	}
	return resp["amount"], nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
