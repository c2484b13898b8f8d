package usecase

import (
	"context"
	"sync"

	"github.com/example/storefront-bff/internal/domain"
)

// In-memory fakes for the remote gateway ports.

type fakeSessionGateway struct {
	identity  domain.Identity
	fetchErr  error
	loginErr  error
	logoutErr error
	regErr    error

	fetchCalls  int
	loginCalls  int
	logoutCalls int
}

func (f *fakeSessionGateway) FetchIdentity(ctx context.Context) (domain.Identity, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return domain.Identity{}, f.fetchErr
	}
	return f.identity, nil
}

func (f *fakeSessionGateway) Login(ctx context.Context, creds domain.Credentials) error {
	f.loginCalls++
	return f.loginErr
}

func (f *fakeSessionGateway) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeSessionGateway) Register(ctx context.Context, reg domain.Registration) error {
	return f.regErr
}

type fakeCartGateway struct {
	mu          sync.Mutex
	snap        domain.CartSnapshot
	fetchErr    error
	addErr      error
	removeErr   error
	fetchHook   func(call int) (domain.CartSnapshot, error)
	fetchCalls  int
	addCalls    int
	removeCalls int
}

func (f *fakeCartGateway) FetchCart(ctx context.Context) (domain.CartSnapshot, error) {
	f.mu.Lock()
	f.fetchCalls++
	call := f.fetchCalls
	hook := f.fetchHook
	snap, err := f.snap, f.fetchErr
	f.mu.Unlock()
	if hook != nil {
		return hook(call)
	}
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	snap.Items = append([]domain.CartLineItem(nil), snap.Items...)
	return snap, nil
}

func (f *fakeCartGateway) AddItem(ctx context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	return f.addErr
}

func (f *fakeCartGateway) RemoveItem(ctx context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	return f.removeErr
}

func (f *fakeCartGateway) counts() (fetch, add, remove int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls, f.addCalls, f.removeCalls
}

type fakePaymentGateway struct {
	secret  string
	err     error
	calls   int
	lastReq domain.IntentRequest
}

func (f *fakePaymentGateway) CreateIntent(ctx context.Context, req domain.IntentRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.secret, nil
}

type fakeConfirmer struct {
	mu       sync.Mutex
	outcomes []domain.PaymentOutcome
	err      error
	calls    int
	block    chan struct{} // when set, Confirm waits before returning
}

func (f *fakeConfirmer) Confirm(ctx context.Context, clientSecret string) (domain.PaymentOutcome, error) {
	f.mu.Lock()
	f.calls++
	i := f.calls - 1
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return domain.PaymentOutcome{}, f.err
	}
	if i >= len(f.outcomes) {
		i = len(f.outcomes) - 1
	}
	return f.outcomes[i], nil
}
