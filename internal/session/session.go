// Package session carries the acting user. The actor travels in the
// request context so concurrent requests attribute their mutations
// independently; UserSession remains as a single-slot holder for
// interactive callers that act as one identity at a time.
package session

import (
	"context"
	"sync"

	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
)

type actorKey struct{}

// WithActor returns a context bound to the given acting user. A nil user
// returns ctx unchanged.
func WithActor(ctx context.Context, u *domain.User) context.Context {
	if u == nil {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, u)
}

// Actor returns the acting user bound to ctx, if any.
func Actor(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(actorKey{}).(*domain.User)
	return u, ok && u != nil
}

// UserSession holds at most one current actor for the whole process.
type UserSession struct {
	mu      sync.RWMutex
	current *domain.User
}

// SetCurrentUser replaces the current actor. Passing nil logs out.
func (s *UserSession) SetCurrentUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = u
}

// CurrentUser returns the current actor, if one is bound.
func (s *UserSession) CurrentUser() (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Context binds the slot's current actor into ctx. With no actor bound it
// returns ctx unchanged, so downstream mutations fail attribution.
func (s *UserSession) Context(ctx context.Context) context.Context {
	u, ok := s.CurrentUser()
	if !ok {
		return ctx
	}
	return WithActor(ctx, u)
}
