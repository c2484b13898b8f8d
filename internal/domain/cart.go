package domain

import "time"

// CartLineItem — позиция корзины: один товар с количеством и ценой.
type CartLineItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int64  `json:"quantity"`
}

// CartSnapshot — локальная копия корзины, целиком заменяется при fetch.
// Инвариант: не более одной позиции на product_id.
type CartSnapshot struct {
	ID     string         `json:"id"`
	UserID string         `json:"user_id"`
	Items  []CartLineItem `json:"items"`
}

// OrderRef — идентификатор корзины для платёжного интента;
// у новых корзин id может отсутствовать, тогда берём user_id.
func (s CartSnapshot) OrderRef() string {
	if s.ID != "" {
		return s.ID
	}
	return s.UserID
}

// Contains сообщает, есть ли позиция с данным product_id.
func (s CartSnapshot) Contains(productID string) bool {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// CartEvent — событие изменения корзины из брокера.
type CartEvent struct {
	EventType string    `json:"event_type"`
	CartID    string    `json:"cart_id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
