package subgoal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
)

func TestMemoryCredentialRepo_GetMissing(t *testing.T) {
	repo := NewMemoryCredentialRepo(clockwork.NewFakeClock())

	cred, err := repo.GetByChannelID(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
	assert.Nil(t, cred)
}

func TestMemoryCredentialRepo_UpsertInsert(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := NewMemoryCredentialRepo(clock)

	cred, err := repo.Upsert(context.Background(), "teststreamer", "12345", "access", "refresh")
	require.NoError(t, err)
	require.NotNil(t, cred)

	assert.NotEqual(t, uuid.Nil, cred.ID)
	assert.Equal(t, "teststreamer", cred.ChannelID)
	assert.Equal(t, "12345", cred.BroadcasterID)
	assert.Equal(t, "access", cred.AccessToken)
	assert.Equal(t, "refresh", cred.RefreshToken)
	assert.Equal(t, clock.Now(), cred.CreatedAt)
	assert.Equal(t, clock.Now(), cred.UpdatedAt)

	fetched, err := repo.GetByChannelID(context.Background(), "teststreamer")
	require.NoError(t, err)
	assert.Equal(t, cred.ID, fetched.ID)
}

func TestMemoryCredentialRepo_UpsertUpdatePreservesIdentity(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := NewMemoryCredentialRepo(clock)

	first, err := repo.Upsert(context.Background(), "teststreamer", "12345", "old-access", "old-refresh")
	require.NoError(t, err)

	clock.Advance(1 * time.Hour)

	second, err := repo.Upsert(context.Background(), "teststreamer", "12345", "new-access", "new-refresh")
	require.NoError(t, err)

	// Same row: ID and CreatedAt survive, tokens and UpdatedAt change
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "new-access", second.AccessToken)
	assert.Equal(t, "new-refresh", second.RefreshToken)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	all, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1, "Upsert on existing channel should not add a row")
}

func TestMemoryCredentialRepo_UpsertReturnsCopy(t *testing.T) {
	repo := NewMemoryCredentialRepo(clockwork.NewFakeClock())

	cred, err := repo.Upsert(context.Background(), "teststreamer", "12345", "access", "refresh")
	require.NoError(t, err)

	cred.AccessToken = "mutated"

	fetched, err := repo.GetByChannelID(context.Background(), "teststreamer")
	require.NoError(t, err)
	assert.Equal(t, "access", fetched.AccessToken)
}

func TestMemoryCredentialRepo_All(t *testing.T) {
	repo := NewMemoryCredentialRepo(clockwork.NewFakeClock())

	_, err := repo.Upsert(context.Background(), "channel-a", "1", "a1", "a2")
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), "channel-b", "2", "b1", "b2")
	require.NoError(t, err)

	all, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	channels := make(map[string]bool)
	for _, cred := range all {
		channels[cred.ChannelID] = true
	}
	assert.True(t, channels["channel-a"])
	assert.True(t, channels["channel-b"])
}

func TestMemoryCredentialRepo_AllEmpty(t *testing.T) {
	repo := NewMemoryCredentialRepo(clockwork.NewFakeClock())

	all, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryCredentialRepo_Ping(t *testing.T) {
	repo := NewMemoryCredentialRepo(clockwork.NewFakeClock())
	assert.NoError(t, repo.Ping(context.Background()))
}
