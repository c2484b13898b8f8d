package usecase

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/example/storefront-bff/internal/domain"
)

// CartState — наблюдаемое состояние хранилища корзины. Пустая корзина и
// ошибка — разные состояния: Err == nil с нулём позиций значит "пусто".
type CartState struct {
	Snapshot domain.CartSnapshot
	Loading  bool
	Err      error
}

// CartStore — единственный владелец локальной копии корзины,
// синхронизируемой с удалённым сервисом. Обновления только после
// подтверждения сервером; отката нет, потому что нет опережающих правок.
type CartStore struct {
	gw domain.CartGateway

	mu       sync.Mutex
	snapshot domain.CartSnapshot
	loading  bool
	err      error
	owner    string
	gen      uint64
}

func NewCartStore(gw domain.CartGateway) *CartStore {
	return &CartStore{gw: gw, loading: true}
}

// State возвращает копию текущего состояния.
func (c *CartStore) State() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.snapshot
	snap.Items = append([]domain.CartLineItem(nil), c.snapshot.Items...)
	return CartState{Snapshot: snap, Loading: c.loading, Err: c.err}
}

// OnIdentityChanged — цель подписки на переходы личности: присутствующая
// личность запускает ровно один fetch, отсутствие даёт пустое состояние
// без ошибки и без обращения к серверу.
func (c *CartStore) OnIdentityChanged(ctx context.Context, ident *domain.Identity) {
	if ident == nil {
		c.mu.Lock()
		c.gen++
		c.owner = ""
		c.snapshot = domain.CartSnapshot{}
		c.loading = false
		c.err = nil
		c.mu.Unlock()
		return
	}
	c.mu.Lock()
	c.owner = ident.ID
	c.mu.Unlock()
	c.sync(ctx)
}

// HandleEvent — обработчик сырого события корзины из брокера. Событие
// чужого владельца подтверждается и игнорируется; своё ведёт к пересинхронизации.
func (c *CartStore) HandleEvent(ctx context.Context, raw []byte) error {
	var ev domain.CartEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return err
	}
	c.mu.Lock()
	mine := c.owner != "" && ev.UserID == c.owner
	c.mu.Unlock()
	if !mine {
		return nil
	}
	log.Printf("cart event %s for cart %s, resyncing", ev.EventType, ev.CartID)
	c.sync(ctx)
	return nil
}

// sync перечитывает корзину целиком. Поколение защищает от гонки двух
// fetch: применяется только результат самого нового (last-fetch-wins).
func (c *CartStore) sync(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.loading = true
	c.mu.Unlock()

	snap, err := c.gw.FetchCart(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.loading = false
	if err != nil {
		log.Printf("cart fetch: %v", err)
		c.err = err
		return
	}
	c.snapshot = snap
	c.err = nil
}

// AddToCart добавляет товар. Без личности — молчаливый no-op. Локальная
// копия меняется только после подтверждения сервером, и только если
// позиции с таким product_id ещё нет (идемпотентное добавление).
func (c *CartStore) AddToCart(ctx context.Context, product domain.CartLineItem) error {
	c.mu.Lock()
	if c.owner == "" {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.gw.AddItem(ctx, product.ProductID); err != nil {
		log.Printf("cart add %s: %v", product.ProductID, err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot.Contains(product.ProductID) {
		return nil
	}
	if product.Quantity <= 0 {
		product.Quantity = 1
	}
	c.snapshot.Items = append(c.snapshot.Items, product)
	return nil
}

// RemoveFromCart убирает позицию. Без личности — молчаливый no-op.
// Инвариант гарантирует не более одного совпадения.
func (c *CartStore) RemoveFromCart(ctx context.Context, productID string) error {
	c.mu.Lock()
	if c.owner == "" {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.gw.RemoveItem(ctx, productID); err != nil {
		log.Printf("cart remove %s: %v", productID, err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.snapshot.Items[:0:0]
	for _, it := range c.snapshot.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.snapshot.Items = kept
	return nil
}
