package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"orderdesk/internal/backend"
	"orderdesk/internal/storage"
	"orderdesk/internal/validation"
)

func TestRegistryExpiresIdleWorkspaces(t *testing.T) {
	store := storage.NewMemory()
	client, err := backend.New("http://backend.test", time.Second, nil)
	require.NoError(t, err)
	v := validation.New()

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(30*time.Minute, func(id string) *Workspace {
		return NewWorkspace(id, store, client, v, testOpts)
	})
	r.now = func() time.Time { return now }

	a := r.Open("a")
	assert.Same(t, a, r.Open("a"))
	r.Open("b")
	assert.Equal(t, 2, r.Len())

	now = now.Add(20 * time.Minute)
	_, ok := r.Get("a")
	require.True(t, ok)

	now = now.Add(20 * time.Minute)
	_, ok = r.Get("b")
	assert.False(t, ok, "b has been idle for 40 minutes")
	_, ok = r.Get("a")
	assert.True(t, ok)

	r.Drop("a")
	assert.Equal(t, 0, r.Len())
}

func TestWorkspacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	client, err := backend.New("http://backend.test", time.Second, nil)
	require.NoError(t, err)

	a := NewWorkspace("a", store, client, validation.New(), testOpts)
	b := NewWorkspace("b", store, client, validation.New(), testOpts)
	require.NoError(t, a.Session.SignIn(ctx, "token-a", "manager"))

	tok, err := a.Session.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-a", tok)

	_, err = b.Session.Token(ctx)
	assert.Error(t, err)

	v, ok, err := store.Get(ctx, "session:a:authToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-a", v)
}
