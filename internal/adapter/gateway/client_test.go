package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/storefront-bff/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestFetchCartShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantItems int
		wantErr   error
	}{
		{
			name:      "well formed cart",
			body:      `{"id":"c1","user_id":"u1","items":[{"product_id":"p1","name":"Mug","price_cents":500,"quantity":2}]}`,
			wantItems: 1,
		},
		{
			name:      "empty items is an empty cart, not an error",
			body:      `{"id":"c1","user_id":"u1","items":[]}`,
			wantItems: 0,
		},
		{
			name:    "missing items violates the contract",
			body:    `{"id":"c1","user_id":"u1"}`,
			wantErr: domain.ErrBadCartPayload,
		},
		{
			name:    "null items violates the contract",
			body:    `{"id":"c1","user_id":"u1","items":null}`,
			wantErr: domain.ErrBadCartPayload,
		},
		{
			name:    "items of the wrong type",
			body:    `{"id":"c1","user_id":"u1","items":"oops"}`,
			wantErr: domain.ErrBadCartPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/cart/getcart" {
					http.NotFound(w, r)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))

			snap, err := c.FetchCart(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FetchCart() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchCart() error = %v", err)
			}
			if len(snap.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(snap.Items), tt.wantItems)
			}
		})
	}
}

func TestFetchCartAppliesDefaults(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","user_id":"u1","items":[{"product_id":"p1","price_cents":500}]}`))
	}))

	snap, err := c.FetchCart(context.Background())
	if err != nil {
		t.Fatalf("FetchCart() error = %v", err)
	}
	if snap.Items[0].Quantity != 1 {
		t.Errorf("quantity = %d, want default 1", snap.Items[0].Quantity)
	}
}

func TestFetchIdentityUnauthorized(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))

	_, err := c.FetchIdentity(context.Background())
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("FetchIdentity() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestSessionCookiePersists(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "Authorization", Value: "tok-1", Path: "/"})
			w.WriteHeader(http.StatusOK)
		case "/profile":
			cookie, err := r.Cookie("Authorization")
			if err != nil || cookie.Value != "tok-1" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(domain.Identity{ID: "u1", Email: "a@b.c"})
		default:
			http.NotFound(w, r)
		}
	}))

	if _, err := c.FetchIdentity(context.Background()); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("pre-login FetchIdentity error = %v, want ErrNotAuthenticated", err)
	}
	if err := c.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	ident, err := c.FetchIdentity(context.Background())
	if err != nil {
		t.Fatalf("post-login FetchIdentity error = %v", err)
	}
	if ident.ID != "u1" {
		t.Errorf("identity = %+v, want u1", ident)
	}
}

func TestCreateIntent(t *testing.T) {
	var got domain.IntentRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/intent" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"client_secret":"sec_123"}`))
	}))

	secret, err := c.CreateIntent(context.Background(), domain.IntentRequest{OrderID: "c1", Amount: 1000, Currency: "usd"})
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}
	if secret != "sec_123" {
		t.Errorf("secret = %q, want sec_123", secret)
	}
	if got.OrderID != "c1" || got.Amount != 1000 || got.Currency != "usd" {
		t.Errorf("request body = %+v", got)
	}
}

func TestCreateIntentMissingSecret(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	if _, err := c.CreateIntent(context.Background(), domain.IntentRequest{OrderID: "c1", Amount: 1, Currency: "usd"}); err == nil {
		t.Error("CreateIntent() should fail without a client secret")
	}
}

func TestRemoveItemSendsBody(t *testing.T) {
	var method string
	var body map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.RemoveItem(context.Background(), "p1"); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if method != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", method)
	}
	if body["product_id"] != "p1" {
		t.Errorf("body = %v, want product_id p1", body)
	}
}

func TestSearchProductsEscapesQuery(t *testing.T) {
	var q string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`[]`))
	}))

	raw, err := c.SearchProducts(context.Background(), "red mug & saucer")
	if err != nil {
		t.Fatalf("SearchProducts() error = %v", err)
	}
	if q != "red mug & saucer" {
		t.Errorf("query = %q", q)
	}
	if string(raw) != "[]" {
		t.Errorf("raw = %s, want passthrough []", raw)
	}
}
