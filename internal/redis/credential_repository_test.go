package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
)

func newTestRepo(t *testing.T) (*CredentialRepo, *clockwork.FakeClock) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := clockwork.NewFakeClock()
	return NewCredentialRepo(client, clock), clock
}

func TestCredentialRepo_UpsertAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Upsert(ctx, "teststreamer", "42", "at-1", "rt-1")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := repo.GetByChannelID(ctx, "teststreamer")
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "teststreamer", got.ChannelID)
	assert.Equal(t, "42", got.BroadcasterID)
	assert.Equal(t, "at-1", got.AccessToken)
	assert.Equal(t, "rt-1", got.RefreshToken)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestCredentialRepo_UpsertKeepsIdentity(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, "teststreamer", "42", "at-1", "rt-1")
	require.NoError(t, err)

	clock.Advance(1 * time.Hour)

	second, err := repo.Upsert(ctx, "teststreamer", "42", "at-2", "rt-2")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(second.CreatedAt))
	assert.Equal(t, "at-2", second.AccessToken)

	got, err := repo.GetByChannelID(ctx, "teststreamer")
	require.NoError(t, err)
	assert.Equal(t, "at-2", got.AccessToken)
	assert.Equal(t, "rt-2", got.RefreshToken)
}

func TestCredentialRepo_GetNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.GetByChannelID(context.Background(), "neverauthorized")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestCredentialRepo_All(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "alpha", "1", "at-a", "rt-a")
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, "beta", "2", "at-b", "rt-b")
	require.NoError(t, err)

	creds, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 2)

	byChannel := make(map[string]domain.Credential, len(creds))
	for _, cred := range creds {
		byChannel[cred.ChannelID] = cred
	}
	assert.Equal(t, "at-a", byChannel["alpha"].AccessToken)
	assert.Equal(t, "at-b", byChannel["beta"].AccessToken)
}

func TestCredentialRepo_All_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)

	creds, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestCredentialRepo_All_IgnoresForeignKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewCredentialRepo(client, clockwork.NewFakeClock())
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "alpha", "1", "at-a", "rt-a")
	require.NoError(t, err)

	// Unrelated keys must not show up in the scan.
	require.NoError(t, mr.Set("session:123", "whatever"))

	creds, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, creds, 1)
}

func TestCredentialRepo_Ping(t *testing.T) {
	repo, _ := newTestRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
