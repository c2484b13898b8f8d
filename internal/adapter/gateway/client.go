package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/example/storefront-bff/internal/domain"
)

// Client — HTTP-клиент шлюза витрины. Сессионная кука хранится в jar и
// уходит со всеми запросами, как credentialed-запросы браузера.
type Client struct {
	base string
	hc   *http.Client
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

func (c *Client) FetchIdentity(ctx context.Context) (domain.Identity, error) {
	var ident domain.Identity
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &ident); err != nil {
		return domain.Identity{}, err
	}
	if ident.ID == "" {
		return domain.Identity{}, fmt.Errorf("profile response missing id")
	}
	return ident, nil
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) error {
	return c.do(ctx, http.MethodPost, "/login", creds, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	return c.do(ctx, http.MethodPost, "/register", reg, nil)
}

func (c *Client) FetchCart(ctx context.Context) (domain.CartSnapshot, error) {
	var payload struct {
		ID     string          `json:"id"`
		UserID string          `json:"user_id"`
		Items  json.RawMessage `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/cart/getcart", nil, &payload); err != nil {
		return domain.CartSnapshot{}, err
	}
	// отсутствие items — нарушение контракта, не пустая корзина
	if len(payload.Items) == 0 || string(payload.Items) == "null" {
		return domain.CartSnapshot{}, fmt.Errorf("cart response: %w", domain.ErrBadCartPayload)
	}
	var items []domain.CartLineItem
	if err := json.Unmarshal(payload.Items, &items); err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("cart items: %w", domain.ErrBadCartPayload)
	}
	for i := range items {
		if items[i].Quantity <= 0 {
			items[i].Quantity = 1
		}
		if items[i].PriceCents < 0 {
			items[i].PriceCents = 0
		}
	}
	return domain.CartSnapshot{ID: payload.ID, UserID: payload.UserID, Items: items}, nil
}

func (c *Client) AddItem(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodPost, "/cart/add", map[string]string{"product_id": productID}, nil)
}

func (c *Client) RemoveItem(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/remove", map[string]string{"product_id": productID}, nil)
}

func (c *Client) CreateIntent(ctx context.Context, req domain.IntentRequest) (string, error) {
	var resp struct {
		ClientSecret string `json:"client_secret"`
	}
	if err := c.do(ctx, http.MethodPost, "/payments/intent", req, &resp); err != nil {
		return "", err
	}
	if resp.ClientSecret == "" {
		return "", fmt.Errorf("no client secret received")
	}
	return resp.ClientSecret, nil
}

func (c *Client) Confirm(ctx context.Context, clientSecret string) (domain.PaymentOutcome, error) {
	var outcome domain.PaymentOutcome
	err := c.do(ctx, http.MethodPost, "/payments/confirm", map[string]string{"client_secret": clientSecret}, &outcome)
	if err != nil {
		return domain.PaymentOutcome{}, err
	}
	if outcome.Status == "" {
		return domain.PaymentOutcome{}, fmt.Errorf("payment outcome missing status")
	}
	return outcome, nil
}

func (c *Client) ListProducts(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products/get", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) SearchProducts(ctx context.Context, query string) (json.RawMessage, error) {
	var raw json.RawMessage
	path := "/products/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// do выполняет запрос с JSON-телом и разбирает JSON-ответ в out.
// Диагностика (статус, хвост тела) остаётся в ошибке для логов.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: marshal: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotAuthenticated)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

var (
	_ domain.SessionGateway   = (*Client)(nil)
	_ domain.CartGateway      = (*Client)(nil)
	_ domain.PaymentGateway   = (*Client)(nil)
	_ domain.PaymentConfirmer = (*Client)(nil)
	_ domain.ProductCatalog   = (*Client)(nil)
)
