// Package auth is the authorization guard: it compares the acting user's
// role against an operation's minimum required role.
package auth

import (
	"context"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/session"
)

// Require returns the acting user when one is bound to ctx, active, and
// holds at least the min role. Every failure is an AuthorizationError.
func Require(ctx context.Context, min domain.Role) (*domain.User, error) {
	u, ok := session.Actor(ctx)
	if !ok {
		return nil, apperr.Unauthorized("insufficient privileges: no actor bound to session")
	}
	if !u.Active {
		return nil, apperr.Unauthorized("insufficient privileges: user %q is inactive", u.Username)
	}
	if !u.Role.IsAtLeast(min) {
		return nil, apperr.Unauthorized("insufficient privileges: role %s required, user %q has %s",
			min, u.Username, u.Role)
	}
	return u, nil
}

// RequireActor returns the acting user without any role check. Used by
// session-dependent reads, which need attribution but no privilege.
func RequireActor(ctx context.Context) (*domain.User, error) {
	u, ok := session.Actor(ctx)
	if !ok {
		return nil, apperr.Unauthorized("insufficient privileges: no actor bound to session")
	}
	return u, nil
}
