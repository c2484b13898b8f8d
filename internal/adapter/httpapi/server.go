package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/storefront-bff/internal/domain"
	"github.com/example/storefront-bff/internal/usecase"
)

// Server — HTTP-фасад ядра для UI: отдаёт состояние и принимает операции.
// Наружу уходят короткие сообщения; диагностика остаётся в логах ядра.
type Server struct {
	Router   *mux.Router
	Session  *usecase.IdentitySession
	Cart     *usecase.CartStore
	Checkout *usecase.CheckoutOrchestrator
	Catalog  domain.ProductCatalog
}

func NewServer(sess *usecase.IdentitySession, cart *usecase.CartStore, checkout *usecase.CheckoutOrchestrator, catalog domain.ProductCatalog) *Server {
	s := &Server{Session: sess, Cart: cart, Checkout: checkout, Catalog: catalog}
	r := mux.NewRouter()
	r.HandleFunc("/api/session", s.handleSession).Methods(http.MethodGet)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/cart", s.handleCart).Methods(http.MethodGet)
	r.HandleFunc("/api/cart/items", s.handleAddItem).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/items/{id}", s.handleRemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/api/products", s.handleProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/api/checkout/{cartID}", s.handleBeginCheckout).Methods(http.MethodPost)
	r.HandleFunc("/api/checkout/{cartID}", s.handleGetCheckout).Methods(http.MethodGet)
	r.HandleFunc("/api/checkout/{cartID}", s.handleAbandonCheckout).Methods(http.MethodDelete)
	r.HandleFunc("/api/checkout/{cartID}/pay", s.handlePay).Methods(http.MethodPost)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("web")))
	s.Router = r
	return s
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ident, loading := s.Session.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"identity": ident,
		"loading":  loading,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.Session.Login(r.Context(), creds); err != nil {
		writeError(w, http.StatusUnauthorized, "Login failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Session.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.Session.Register(r.Context(), reg); err != nil {
		writeError(w, http.StatusBadGateway, "Registration failed")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	st := s.Cart.State()
	payload := map[string]any{
		"cart":        st.Snapshot,
		"loading":     st.Loading,
		"total_cents": domain.AggregateTotal(st.Snapshot.Items),
		"total":       domain.FormatMajor(domain.AggregateTotal(st.Snapshot.Items)),
		"item_count":  domain.ItemCount(st.Snapshot.Items),
	}
	if st.Err != nil {
		payload["error"] = "couldn't load the cart"
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var product domain.CartLineItem
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil || product.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid product")
		return
	}
	if err := s.Cart.AddToCart(r.Context(), product); err != nil {
		writeError(w, http.StatusBadGateway, "Failed to add to cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Cart.RemoveFromCart(r.Context(), id); err != nil {
		writeError(w, http.StatusBadGateway, "Failed to remove from cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	raw, err := s.Catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "products unavailable")
		return
	}
	writeRaw(w, raw)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	raw, err := s.Catalog.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "search unavailable")
		return
	}
	writeRaw(w, raw)
}

func (s *Server) handleBeginCheckout(w http.ResponseWriter, r *http.Request) {
	sess := s.Checkout.Begin(r.Context(), mux.Vars(r)["cartID"])
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleGetCheckout(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Checkout.CurrentFor(mux.Vars(r)["cartID"])
	if !ok {
		writeError(w, http.StatusNotFound, "no checkout in progress")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleAbandonCheckout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.Checkout.CurrentFor(mux.Vars(r)["cartID"]); ok {
		s.Checkout.Abandon(sess.AttemptID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Checkout.CurrentFor(mux.Vars(r)["cartID"])
	if !ok {
		writeError(w, http.StatusNotFound, "no checkout in progress")
		return
	}
	result, err := s.Checkout.Submit(r.Context(), sess.AttemptID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveCheckout) {
			writeError(w, http.StatusNotFound, "no checkout in progress")
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeRaw(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}
