package domain

// CheckoutStatus — состояние попытки оформления заказа.
type CheckoutStatus string

const (
	CheckoutInitializing    CheckoutStatus = "initializing"
	CheckoutCartEmpty       CheckoutStatus = "cart_empty"
	CheckoutAwaitingPayment CheckoutStatus = "awaiting_payment"
	CheckoutSubmitting      CheckoutStatus = "submitting"
	CheckoutSucceeded       CheckoutStatus = "succeeded"
	CheckoutFailed          CheckoutStatus = "failed"
)

// CheckoutSession — одна попытка оформления; живёт от входа в checkout
// до терминального состояния и никогда не разделяется между попытками.
type CheckoutSession struct {
	AttemptID    string         `json:"attempt_id"`
	CartID       string         `json:"cart_id"`
	Cart         CartSnapshot   `json:"cart"`
	AmountCents  int64          `json:"amount_cents"`
	Currency     string         `json:"currency"`
	ClientSecret string         `json:"client_secret,omitempty"`
	Status       CheckoutStatus `json:"status"`
	Message      string         `json:"message,omitempty"`
}

// Terminal сообщает, завершена ли попытка.
func (s CheckoutSession) Terminal() bool {
	switch s.Status {
	case CheckoutCartEmpty, CheckoutSucceeded, CheckoutFailed:
		return true
	}
	return false
}

// IntentRequest — запрос платёжного интента на сумму корзины.
type IntentRequest struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentOutcome — результат подтверждения платежа внешней платёжной
// способностью. Статусы отдаёт процессор; ядро различает только успех,
// повторяемый отказ и всё остальное.
type PaymentOutcome struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Статусы процессора, которые ядро понимает.
const (
	PaymentSucceeded         = "succeeded"
	PaymentRequiresNewMethod = "requires_payment_method"
)
