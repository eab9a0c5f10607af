package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/async"
	"github.com/infoyupay/gang-comisiones-backend/internal/auth"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/session"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
	"github.com/infoyupay/gang-comisiones-backend/internal/vault"
)

// UserService manages identities and credentials. Administrative
// mutations require ADMIN; password changes act on the caller's own
// account.
type UserService struct {
	core
}

func buildUser(username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validationf("username", "username must not be empty")
	}
	if !role.Valid() {
		return nil, apperr.Validationf("role", "unknown role %q", string(role))
	}
	if err := vault.ValidatePassword(password); err != nil {
		return nil, err
	}
	salt, err := vault.GenerateSalt()
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Salt:         salt,
		PasswordHash: vault.HashPassword(password, salt),
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Create registers a new active user with the given role.
func (s *UserService) Create(ctx context.Context, username, password string, role domain.Role) *async.Future[*domain.User] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.User, error) {
		u, err := buildUser(username, password, role)
		if err != nil {
			return nil, err
		}
		actor, err := auth.Require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.InsertUser(ctx, u); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, "user.create", "User", u.ID,
				"username="+u.Username+" role="+string(u.Role))
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("user created", "id", u.ID, "username", u.Username, "role", u.Role, "actor", actor.Username)
		return u, nil
	})
}

// ChangePassword replaces the acting user's own password after verifying
// the current one.
func (s *UserService) ChangePassword(ctx context.Context, oldPassword, newPassword string) *async.Future[*domain.User] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.User, error) {
		if err := vault.ValidatePassword(newPassword); err != nil {
			return nil, err
		}
		actor, err := auth.RequireActor(ctx)
		if err != nil {
			return nil, err
		}
		u, err := s.store.GetUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if !vault.VerifyPassword(oldPassword, u.Salt, u.PasswordHash) {
			return nil, apperr.Unauthorized("current password does not match")
		}
		salt, err := vault.GenerateSalt()
		if err != nil {
			return nil, err
		}
		u.Salt = salt
		u.PasswordHash = vault.HashPassword(newPassword, salt)
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.UpdateUser(ctx, u); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, "user.password_change", "User", u.ID, "")
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("password changed", "username", u.Username)
		return u, nil
	})
}

// ResetPassword overwrites another user's password without knowing the
// old one.
func (s *UserService) ResetPassword(ctx context.Context, username, newPassword string) *async.Future[*domain.User] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.User, error) {
		if err := vault.ValidatePassword(newPassword); err != nil {
			return nil, err
		}
		actor, err := auth.Require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		u, err := s.store.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		salt, err := vault.GenerateSalt()
		if err != nil {
			return nil, err
		}
		u.Salt = salt
		u.PasswordHash = vault.HashPassword(newPassword, salt)
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.UpdateUser(ctx, u); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, "user.password_reset", "User", u.ID,
				"username="+u.Username)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("password reset", "username", u.Username, "actor", actor.Username)
		return u, nil
	})
}

// SetActive toggles a user's soft lifecycle flag. Users are never
// physically deleted.
func (s *UserService) SetActive(ctx context.Context, username string, active bool) *async.Future[*domain.User] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.User, error) {
		actor, err := auth.Require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		u, err := s.store.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		u.Active = active
		action := "user.deactivate"
		if active {
			action = "user.activate"
		}
		err = s.inTx(ctx, func(tx storage.Tx) error {
			if err := tx.UpdateUser(ctx, u); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, action, "User", u.ID, "username="+u.Username)
		})
		if err != nil {
			return nil, err
		}
		s.log.Infow("user lifecycle toggled", "username", u.Username, "active", active, "actor", actor.Username)
		return u, nil
	})
}

// Validate checks a credential pair and returns the matching active user.
// It performs no authorization and writes no audit entry; it is the entry
// point of a login flow.
func (s *UserService) Validate(ctx context.Context, username, password string) *async.Future[*domain.User] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.User, error) {
		u, err := s.store.GetUserByUsername(ctx, username)
		if err != nil {
			if apperr.IsNotFound(err) {
				return nil, apperr.Unauthorized("invalid credentials")
			}
			return nil, err
		}
		if !u.Active {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		if !vault.VerifyPassword(password, u.Salt, u.PasswordHash) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return u, nil
	})
}

// FindByUsername looks a user up by username.
func (s *UserService) FindByUsername(ctx context.Context, username string) *async.Future[*domain.User] {
	return async.Run(s.pool, ctx, func(ctx context.Context) (*domain.User, error) {
		return s.store.GetUserByUsername(ctx, username)
	})
}

// ListAll returns every user.
func (s *UserService) ListAll(ctx context.Context) *async.Future[[]domain.User] {
	return async.Run(s.pool, ctx, func(ctx context.Context) ([]domain.User, error) {
		return s.store.ListUsers(ctx)
	})
}

// EnsureRoot seeds the first ROOT user when the store holds no users at
// all. The bootstrap mutation is attributed to the root user itself so
// the audit invariant holds from the very first row.
func (s *UserService) EnsureRoot(ctx context.Context, username, password string) error {
	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	root, err := buildUser(username, password, domain.RoleRoot)
	if err != nil {
		return err
	}
	ctx = session.WithActor(ctx, root)
	err = s.inTx(ctx, func(tx storage.Tx) error {
		if err := tx.InsertUser(ctx, root); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, "user.bootstrap", "User", root.ID,
			"username="+root.Username)
	})
	if err != nil {
		return err
	}
	s.log.Infow("root user bootstrapped", "username", root.Username)
	return nil
}
