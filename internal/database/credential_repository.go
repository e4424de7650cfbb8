package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notpogix/twitch-subgoal-overlay/internal/crypto"
	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
)

// credentialColumns must match the Scan order in scanCredential.
const credentialColumns = `id, channel_id, broadcaster_id, access_token, refresh_token, created_at, updated_at`

// CredentialRepo implements domain.CredentialRepository backed by
// PostgreSQL. Tokens pass through the crypto service on their way to and
// from disk; with the noop service they are stored in plaintext.
type CredentialRepo struct {
	pool   *pgxpool.Pool
	crypto crypto.Service
}

var _ domain.CredentialRepository = (*CredentialRepo)(nil)

func NewCredentialRepo(pool *pgxpool.Pool, cryptoSvc crypto.Service) *CredentialRepo {
	return &CredentialRepo{pool: pool, crypto: cryptoSvc}
}

func (r *CredentialRepo) scanCredential(row pgx.Row) (*domain.Credential, error) {
	var cred domain.Credential
	err := row.Scan(
		&cred.ID, &cred.ChannelID, &cred.BroadcasterID,
		&cred.AccessToken, &cred.RefreshToken,
		&cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := r.decryptTokens(&cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *CredentialRepo) decryptTokens(cred *domain.Credential) error {
	var err error
	cred.AccessToken, err = r.crypto.Decrypt(cred.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to decrypt access token: %w", err)
	}
	cred.RefreshToken, err = r.crypto.Decrypt(cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	return nil
}

func (r *CredentialRepo) GetByChannelID(ctx context.Context, channelID string) (*domain.Credential, error) {
	cred, err := r.scanCredential(r.pool.QueryRow(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE channel_id = $1`, channelID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return cred, nil
}

func (r *CredentialRepo) Upsert(ctx context.Context, channelID, broadcasterID, accessToken, refreshToken string) (*domain.Credential, error) {
	encAccessToken, err := r.crypto.Encrypt(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefreshToken, err := r.crypto.Encrypt(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	cred, err := r.scanCredential(r.pool.QueryRow(ctx, `
		INSERT INTO credentials (channel_id, broadcaster_id, access_token, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (channel_id) DO UPDATE SET
			broadcaster_id = EXCLUDED.broadcaster_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			updated_at = NOW()
		RETURNING `+credentialColumns+`
	`, channelID, broadcasterID, encAccessToken, encRefreshToken))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert credential: %w", err)
	}

	return cred, nil
}

func (r *CredentialRepo) All(ctx context.Context) ([]domain.Credential, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+credentialColumns+` FROM credentials ORDER BY channel_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []domain.Credential
	for rows.Next() {
		var cred domain.Credential
		err := rows.Scan(
			&cred.ID, &cred.ChannelID, &cred.BroadcasterID,
			&cred.AccessToken, &cred.RefreshToken,
			&cred.CreatedAt, &cred.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		if err := r.decryptTokens(&cred); err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	return creds, nil
}

func (r *CredentialRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
