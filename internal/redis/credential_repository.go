package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
)

const (
	credentialKeyPrefix = "credential:"
	scanBatchSize       = 100

	// Hash field names
	fieldID            = "id"
	fieldBroadcasterID = "broadcaster_id"
	fieldAccessToken   = "access_token"
	fieldRefreshToken  = "refresh_token"
	fieldCreatedAt     = "created_at"
	fieldUpdatedAt     = "updated_at"
)

// CredentialRepo implements domain.CredentialRepository backed by Redis,
// one hash per channel under credential:<channel>.
type CredentialRepo struct {
	rdb   *goredis.Client
	clock clockwork.Clock
}

var _ domain.CredentialRepository = (*CredentialRepo)(nil)

func NewCredentialRepo(rdb *goredis.Client, clock clockwork.Clock) *CredentialRepo {
	return &CredentialRepo{rdb: rdb, clock: clock}
}

func credentialKey(channelID string) string {
	return credentialKeyPrefix + channelID
}

func (r *CredentialRepo) GetByChannelID(ctx context.Context, channelID string) (*domain.Credential, error) {
	fields, err := r.rdb.HGetAll(ctx, credentialKey(channelID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrCredentialNotFound
	}

	return parseCredential(channelID, fields)
}

func (r *CredentialRepo) Upsert(ctx context.Context, channelID, broadcasterID, accessToken, refreshToken string) (*domain.Credential, error) {
	key := credentialKey(channelID)
	now := r.clock.Now().UTC()

	cred := domain.Credential{
		ChannelID:     channelID,
		BroadcasterID: broadcasterID,
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Keep id and created_at stable across re-authorizations.
	existing, err := r.rdb.HMGet(ctx, key, fieldID, fieldCreatedAt).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read existing credential: %w", err)
	}

	if raw, ok := existing[0].(string); ok && raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("stored credential id is corrupt: %w", err)
		}
		cred.ID = id
	} else {
		cred.ID = uuid.New()
	}

	if raw, ok := existing[1].(string); ok && raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("stored created_at is corrupt: %w", err)
		}
		cred.CreatedAt = createdAt
	}

	err = r.rdb.HSet(ctx, key, map[string]any{
		fieldID:            cred.ID.String(),
		fieldBroadcasterID: cred.BroadcasterID,
		fieldAccessToken:   cred.AccessToken,
		fieldRefreshToken:  cred.RefreshToken,
		fieldCreatedAt:     cred.CreatedAt.Format(time.RFC3339Nano),
		fieldUpdatedAt:     cred.UpdatedAt.Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to upsert credential: %w", err)
	}

	return &cred, nil
}

func (r *CredentialRepo) All(ctx context.Context) ([]domain.Credential, error) {
	var creds []domain.Credential
	var cursor uint64

	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, credentialKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan credentials: %w", err)
		}

		for _, key := range keys {
			channelID := strings.TrimPrefix(key, credentialKeyPrefix)

			fields, err := r.rdb.HGetAll(ctx, key).Result()
			if err != nil {
				return nil, fmt.Errorf("failed to read credential %s: %w", key, err)
			}
			if len(fields) == 0 {
				// Deleted between SCAN and HGETALL
				continue
			}

			cred, err := parseCredential(channelID, fields)
			if err != nil {
				return nil, err
			}
			creds = append(creds, *cred)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return creds, nil
}

func (r *CredentialRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func parseCredential(channelID string, fields map[string]string) (*domain.Credential, error) {
	id, err := uuid.Parse(fields[fieldID])
	if err != nil {
		return nil, fmt.Errorf("credential %s has corrupt id: %w", channelID, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("credential %s has corrupt created_at: %w", channelID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt])
	if err != nil {
		return nil, fmt.Errorf("credential %s has corrupt updated_at: %w", channelID, err)
	}

	return &domain.Credential{
		ID:            id,
		ChannelID:     channelID,
		BroadcasterID: fields[fieldBroadcasterID],
		AccessToken:   fields[fieldAccessToken],
		RefreshToken:  fields[fieldRefreshToken],
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
