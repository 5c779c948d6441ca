package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInNotifiesSynchronously(t *testing.T) {
	p := NewProvider(0)
	var seen []*User
	unsubscribe := p.Subscribe(func(u *User) { seen = append(seen, u) })

	u, err := p.SignIn(t.Context(), "  Eco@Example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "eco@example.com", u.Email)
	assert.Equal(t, "eco", u.Name)
	assert.NotEmpty(t, u.ID)
	require.Len(t, seen, 1)
	assert.Equal(t, u.ID, seen[0].ID)
	assert.Equal(t, u.ID, p.Current().ID)

	require.NoError(t, p.SignOut(t.Context()))
	require.Len(t, seen, 2)
	assert.Nil(t, seen[1])
	assert.Nil(t, p.Current())

	unsubscribe()
	_, err = p.SignIn(t.Context(), "eco@example.com", "secret")
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestSignInReusesAccount(t *testing.T) {
	p := NewProvider(0)
	up, err := p.SignUp(t.Context(), "Green Grace", "grace@example.com", "pw")
	require.NoError(t, err)
	in, err := p.SignIn(t.Context(), "GRACE@example.com", "other")
	require.NoError(t, err)
	assert.Equal(t, up.ID, in.ID)
	assert.Equal(t, "Green Grace", in.Name)
}

func TestMissingCredentials(t *testing.T) {
	p := NewProvider(time.Hour)
	_, err := p.SignIn(t.Context(), "", "pw")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = p.SignUp(t.Context(), "n", "a@b.c", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Nil(t, p.Current())
}

func TestDelayHonoursContext(t *testing.T) {
	p := NewProvider(time.Hour)
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	_, err := p.SignIn(ctx, "a@b.c", "pw")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, p.Current())
}

func TestDelayApplies(t *testing.T) {
	p := NewProvider(20 * time.Millisecond)
	start := time.Now()
	_, err := p.SignIn(t.Context(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestCurrentIsACopy(t *testing.T) {
	p := NewProvider(0)
	_, err := p.SignIn(t.Context(), "a@b.c", "pw")
	require.NoError(t, err)
	p.Current().Name = "mutated"
	assert.Equal(t, "a", p.Current().Name)
}
