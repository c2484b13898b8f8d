package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/example/storefront-bff/internal/domain"
)

// IdentitySession — единственный владелец текущей личности покупателя.
// Остальные компоненты читают её через Current или подписку.
type IdentitySession struct {
	gw domain.SessionGateway

	mu        sync.Mutex
	identity  *domain.Identity
	loading   bool
	observers []func(ctx context.Context, ident *domain.Identity)
}

func NewIdentitySession(gw domain.SessionGateway) *IdentitySession {
	return &IdentitySession{gw: gw, loading: true}
}

// Subscribe регистрирует наблюдателя переходов личности. Наблюдатели
// вызываются синхронно после каждой смены значения.
func (s *IdentitySession) Subscribe(fn func(ctx context.Context, ident *domain.Identity)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Current возвращает копию личности (nil — не аутентифицирован) и флаг
// loading. Пока loading == true, потребители не должны трогать корзину.
func (s *IdentitySession) Current() (*domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil, s.loading
	}
	ident := *s.identity
	return &ident, s.loading
}

// Resolve запрашивает личность текущей сессии при старте. Любая ошибка
// (сеть, 401, битый ответ) — это ожидаемое "не залогинен", не фатально.
func (s *IdentitySession) Resolve(ctx context.Context) {
	ident, err := s.gw.FetchIdentity(ctx)
	if err != nil {
		log.Printf("identity resolve: %v", err)
		s.set(ctx, nil)
		return
	}
	s.set(ctx, &ident)
}

// Login отправляет учётные данные и перечитывает личность. При отказе
// личность остаётся прежней (отсутствующей), ошибка годится для показа.
func (s *IdentitySession) Login(ctx context.Context, creds domain.Credentials) error {
	if err := s.gw.Login(ctx, creds); err != nil {
		log.Printf("login: %v", err)
		return domain.ErrAuthFailed
	}
	ident, err := s.gw.FetchIdentity(ctx)
	if err != nil {
		log.Printf("post-login identity fetch: %v", err)
		return domain.ErrAuthFailed
	}
	s.set(ctx, &ident)
	return nil
}

// Logout завершает сессию на сервере (best-effort) и безусловно
// очищает локальную личность.
func (s *IdentitySession) Logout(ctx context.Context) {
	if err := s.gw.Logout(ctx); err != nil {
		log.Printf("logout: %v", err)
	}
	s.set(ctx, nil)
}

// Register создаёт нового покупателя; вход после регистрации — отдельный шаг.
func (s *IdentitySession) Register(ctx context.Context, reg domain.Registration) error {
	if err := s.gw.Register(ctx, reg); err != nil {
		log.Printf("register: %v", err)
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// set фиксирует новое значение и уведомляет наблюдателей, но только при
// настоящем переходе: первая развязка loading или смена id.
func (s *IdentitySession) set(ctx context.Context, ident *domain.Identity) {
	s.mu.Lock()
	changed := s.loading || identityID(s.identity) != identityID(ident)
	s.identity = ident
	s.loading = false
	observers := make([]func(context.Context, *domain.Identity), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range observers {
		var cp *domain.Identity
		if ident != nil {
			v := *ident
			cp = &v
		}
		fn(ctx, cp)
	}
}

func identityID(ident *domain.Identity) string {
	if ident == nil {
		return ""
	}
	return ident.ID
}
