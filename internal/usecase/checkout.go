package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/example/storefront-bff/internal/domain"
)

// CheckoutOrchestrator ведёт машину состояний одной попытки оформления:
// fetch корзины → платёжный интент → подтверждение → исход. Активна не
// более одной попытки; новая вытесняет старую, и запоздавшие результаты
// вытесненной молча отбрасываются по attempt_id.
type CheckoutOrchestrator struct {
	cart     domain.CartGateway
	payments domain.PaymentGateway
	confirm  domain.PaymentConfirmer
	currency string

	mu      sync.Mutex
	current *domain.CheckoutSession
}

func NewCheckoutOrchestrator(cart domain.CartGateway, payments domain.PaymentGateway, confirm domain.PaymentConfirmer, currency string) *CheckoutOrchestrator {
	return &CheckoutOrchestrator{cart: cart, payments: payments, confirm: confirm, currency: currency}
}

// Begin начинает новую попытку для корзины и доводит её до
// awaiting_payment, cart_empty или failed. Автоповтора нет: повтор —
// это явное повторное открытие checkout.
func (o *CheckoutOrchestrator) Begin(ctx context.Context, cartID string) domain.CheckoutSession {
	attempt := domain.CheckoutSession{
		AttemptID: uuid.NewString(),
		CartID:    cartID,
		Currency:  o.currency,
		Status:    domain.CheckoutInitializing,
	}
	o.mu.Lock()
	cur := attempt
	o.current = &cur
	o.mu.Unlock()

	// finish применяет переход к хранимой попытке (если она ещё текущая)
	// и всегда отражает его в локальной копии для возврата вызывающему.
	finish := func(fn func(*domain.CheckoutSession)) domain.CheckoutSession {
		fn(&attempt)
		o.apply(attempt.AttemptID, fn)
		return attempt
	}

	snap, err := o.cart.FetchCart(ctx)
	if err != nil {
		log.Printf("checkout %s cart fetch: %v", attempt.AttemptID, err)
		return finish(func(s *domain.CheckoutSession) {
			s.Status = domain.CheckoutFailed
			s.Message = err.Error()
		})
	}
	if len(snap.Items) == 0 {
		return finish(func(s *domain.CheckoutSession) {
			s.Cart = snap
			s.Status = domain.CheckoutCartEmpty
			s.Message = "Your cart is empty"
		})
	}

	amount := domain.AggregateTotal(snap.Items)
	secret, err := o.payments.CreateIntent(ctx, domain.IntentRequest{
		OrderID:  snap.OrderRef(),
		Amount:   amount,
		Currency: o.currency,
	})
	if err != nil {
		log.Printf("checkout %s intent: %v", attempt.AttemptID, err)
		return finish(func(s *domain.CheckoutSession) {
			s.Cart = snap
			s.AmountCents = amount
			s.Status = domain.CheckoutFailed
			s.Message = err.Error()
		})
	}

	return finish(func(s *domain.CheckoutSession) {
		s.Cart = snap
		s.AmountCents = amount
		s.ClientSecret = secret
		s.Status = domain.CheckoutAwaitingPayment
	})
}

// Submit передаёт удержанный секрет внешней платёжной способности и
// раскладывает её исход по состояниям: успех, повторяемый отказ
// (resubmission разрешён), всё остальное — терминальный failed с
// дословной причиной процессора.
func (o *CheckoutOrchestrator) Submit(ctx context.Context, attemptID string) (domain.CheckoutSession, error) {
	o.mu.Lock()
	if o.current == nil || o.current.AttemptID != attemptID {
		o.mu.Unlock()
		return domain.CheckoutSession{}, domain.ErrNoActiveCheckout
	}
	if o.current.Status != domain.CheckoutAwaitingPayment {
		cur := *o.current
		o.mu.Unlock()
		return cur, fmt.Errorf("checkout is %s, not awaiting payment", cur.Status)
	}
	o.current.Status = domain.CheckoutSubmitting
	o.current.Message = ""
	secret := o.current.ClientSecret
	cur := *o.current
	o.mu.Unlock()

	outcome, err := o.confirm.Confirm(ctx, secret)
	s, ok := o.apply(attemptID, func(s *domain.CheckoutSession) {
		switch {
		case err != nil:
			s.Status = domain.CheckoutFailed
			s.Message = err.Error()
		case outcome.Status == domain.PaymentSucceeded:
			s.Status = domain.CheckoutSucceeded
			s.Message = "Payment succeeded!"
		case outcome.Status == domain.PaymentRequiresNewMethod:
			s.Status = domain.CheckoutAwaitingPayment
			s.Message = "Payment failed"
		default:
			s.Status = domain.CheckoutFailed
			s.Message = outcome.Message
			if s.Message == "" {
				s.Message = outcome.Status
			}
		}
	})
	if !ok {
		// попытка вытеснена, пока ждали процессор
		return cur, nil
	}
	return s, nil
}

// CurrentFor возвращает копию активной попытки для корзины.
func (o *CheckoutOrchestrator) CurrentFor(cartID string) (domain.CheckoutSession, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil || o.current.CartID != cartID {
		return domain.CheckoutSession{}, false
	}
	return *o.current, true
}

// Abandon уничтожает попытку при уходе покупателя из checkout.
func (o *CheckoutOrchestrator) Abandon(attemptID string) {
	o.mu.Lock()
	if o.current != nil && o.current.AttemptID == attemptID {
		o.current = nil
	}
	o.mu.Unlock()
}

// apply применяет переход, только если попытка всё ещё текущая.
func (o *CheckoutOrchestrator) apply(attemptID string, fn func(*domain.CheckoutSession)) (domain.CheckoutSession, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil || o.current.AttemptID != attemptID {
		return domain.CheckoutSession{}, false
	}
	fn(o.current)
	return *o.current, true
}
