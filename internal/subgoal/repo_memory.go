package subgoal

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
)

// MemoryCredentialRepo is the credential store used when no STORE_URL is
// configured. Credentials live only in process memory and are lost on
// restart; channels must reauthorize after every deploy.
type MemoryCredentialRepo struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
	clock clockwork.Clock
}

var _ domain.CredentialRepository = (*MemoryCredentialRepo)(nil)

func NewMemoryCredentialRepo(clock clockwork.Clock) *MemoryCredentialRepo {
	return &MemoryCredentialRepo{
		creds: make(map[string]domain.Credential),
		clock: clock,
	}
}

func (r *MemoryCredentialRepo) GetByChannelID(_ context.Context, channelID string) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred, ok := r.creds[channelID]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &cred, nil
}

func (r *MemoryCredentialRepo) Upsert(_ context.Context, channelID, broadcasterID, accessToken, refreshToken string) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()

	cred, exists := r.creds[channelID]
	if !exists {
		cred = domain.Credential{
			ID:        uuid.New(),
			ChannelID: channelID,
			CreatedAt: now,
		}
	}

	cred.BroadcasterID = broadcasterID
	cred.AccessToken = accessToken
	cred.RefreshToken = refreshToken
	cred.UpdatedAt = now

	r.creds[channelID] = cred
	return &cred, nil
}

func (r *MemoryCredentialRepo) All(_ context.Context) ([]domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	creds := make([]domain.Credential, 0, len(r.creds))
	for _, cred := range r.creds {
		creds = append(creds, cred)
	}
	return creds, nil
}

func (r *MemoryCredentialRepo) Ping(_ context.Context) error {
	return nil
}
