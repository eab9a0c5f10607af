package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/session"
)

func TestWithActor(t *testing.T) {
	_, ok := session.Actor(context.Background())
	assert.False(t, ok)

	u := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin}
	ctx := session.WithActor(context.Background(), u)

	got, ok := session.Actor(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
}

func TestWithActor_NilLeavesContextUnbound(t *testing.T) {
	ctx := session.WithActor(context.Background(), nil)
	_, ok := session.Actor(ctx)
	assert.False(t, ok)
}

func TestUserSession_SingleSlot(t *testing.T) {
	var s session.UserSession

	_, ok := s.CurrentUser()
	assert.False(t, ok)

	alice := &domain.User{ID: "u1", Username: "alice"}
	s.SetCurrentUser(alice)
	got, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	// Replacing and logging out.
	bob := &domain.User{ID: "u2", Username: "bob"}
	s.SetCurrentUser(bob)
	got, _ = s.CurrentUser()
	assert.Equal(t, "bob", got.Username)

	s.SetCurrentUser(nil)
	_, ok = s.CurrentUser()
	assert.False(t, ok)
}

func TestUserSession_Context(t *testing.T) {
	var s session.UserSession

	ctx := s.Context(context.Background())
	_, ok := session.Actor(ctx)
	assert.False(t, ok)

	s.SetCurrentUser(&domain.User{ID: "u1", Username: "alice"})
	ctx = s.Context(context.Background())
	got, ok := session.Actor(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", got.ID)
}
