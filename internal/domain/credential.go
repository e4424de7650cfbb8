package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Credential is one channel's OAuth grant.
type Credential struct {
	ID        uuid.UUID
	ChannelID string // lowercase Twitch login, the unique key
	// BroadcasterID is Twitch's numeric account id for the channel. Stored
	// alongside the tokens because every subscriber query needs it and the
	// two always change together (a re-authorization replaces the whole row).
	BroadcasterID string
	AccessToken   string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CredentialRepository is the durable credential store. Implementations exist
// for PostgreSQL, Redis, and plain memory; the process picks one at startup
// based on the configured store URL.
type CredentialRepository interface {
	// GetByChannelID returns the credential for a channel, or
	// ErrCredentialNotFound.
	GetByChannelID(ctx context.Context, channelID string) (*Credential, error)
	// Upsert inserts or replaces the credential for a channel and returns the
	// canonical stored record (ids and timestamps filled in).
	Upsert(ctx context.Context, channelID, broadcasterID, accessToken, refreshToken string) (*Credential, error)
	// All returns every stored credential. Used once at startup to hydrate
	// the in-process cache.
	All(ctx context.Context) ([]Credential, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
