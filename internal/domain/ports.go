package domain

import (
	"context"
	"encoding/json"
)

// SessionGateway — порт удалённых операций с сессией покупателя.
type SessionGateway interface {
	FetchIdentity(ctx context.Context) (Identity, error)
	Login(ctx context.Context, creds Credentials) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, reg Registration) error
}

// CartGateway — порт удалённого сервиса корзины (источник истины).
type CartGateway interface {
	FetchCart(ctx context.Context) (CartSnapshot, error)
	AddItem(ctx context.Context, productID string) error
	RemoveItem(ctx context.Context, productID string) error
}

// PaymentGateway — порт создания платёжного интента.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (clientSecret string, err error)
}

// PaymentConfirmer — порт внешней платёжной способности; для ядра она
// непрозрачна: принимает секрет, возвращает исход.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, clientSecret string) (PaymentOutcome, error)
}

// ProductCatalog — порт каталога товаров; тонкий проброс без разбора.
type ProductCatalog interface {
	ListProducts(ctx context.Context) (json.RawMessage, error)
	SearchProducts(ctx context.Context, query string) (json.RawMessage, error)
}

// CartEventSource — порт подписчика на события изменения корзины.
type CartEventSource interface {
	// Subscribe регистрирует обработчик; ack/повторные доставки реализует адаптер.
	Subscribe(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error
}

// Общие доменные ошибки
var (
	ErrNotAuthenticated = authError("not authenticated")
	ErrAuthFailed       = authError("login failed")
	ErrBadCartPayload   = payloadError("unexpected cart payload")
	ErrNoActiveCheckout = checkoutError("no active checkout attempt")
)

type authError string

func (e authError) Error() string { return string(e) }

type payloadError string

func (e payloadError) Error() string { return string(e) }

type checkoutError string

func (e checkoutError) Error() string { return string(e) }
