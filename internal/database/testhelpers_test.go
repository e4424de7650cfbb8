package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/notpogix/twitch-subgoal-overlay/internal/crypto"
	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
)

// CreateTestCredential inserts a credential with default token values.
func CreateTestCredential(t *testing.T, repo *CredentialRepo, channelID string) *domain.Credential {
	t.Helper()

	cred, err := repo.Upsert(context.Background(), channelID, "bid_"+channelID, "access_token", "refresh_token")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, cred.ID)

	return cred
}

// cleanCredentials removes all rows so tests start from an empty table.
func cleanCredentials(t *testing.T) {
	t.Helper()

	_, err := testPool.Exec(context.Background(), `DELETE FROM credentials`)
	require.NoError(t, err)
}

func newTestRepo(t *testing.T, cryptoSvc crypto.Service) *CredentialRepo {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cleanCredentials(t)
	return NewCredentialRepo(testPool, cryptoSvc)
}
