package twitch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/nicklaw5/helix/v2"
)

// ErrUnauthorized signals that Twitch rejected the access token. The caller
// is expected to refresh the token and retry once.
var ErrUnauthorized = errors.New("twitch rejected the access token")

// Broadcaster is the identity of the account behind an access token.
type Broadcaster struct {
	ID          string
	Login       string
	DisplayName string
}

// Client wraps the Helix API for the two calls this service needs:
// resolving the broadcaster behind a token and reading the subscriber
// count. The mutex serializes token swaps on the shared helix client.
type Client struct {
	mu     sync.Mutex
	client *helix.Client
}

// ClientOption customizes a Client.
type ClientOption func(*helix.Options)

// WithAPIBaseURL points the Helix client at a different API base, used by
// tests to substitute an httptest server.
func WithAPIBaseURL(baseURL string) ClientOption {
	return func(o *helix.Options) { o.APIBaseURL = baseURL }
}

func NewClient(clientID string, opts ...ClientOption) (*Client, error) {
	options := &helix.Options{ClientID: clientID}
	for _, opt := range opts {
		opt(options)
	}

	client, err := helix.NewClient(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create helix client: %w", err)
	}

	return &Client{client: client}, nil
}

// BroadcasterForToken resolves the broadcaster identity of the account the
// access token belongs to. Called once per authorization, right after the
// code exchange.
func (c *Client) BroadcasterForToken(_ context.Context, accessToken string) (*Broadcaster, error) {
	c.mu.Lock()
	c.client.SetUserAccessToken(accessToken)
	resp, err := c.client.GetUsers(&helix.UsersParams{})
	c.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to fetch broadcaster identity: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user lookup returned status %d: %s %s", resp.StatusCode, resp.Error, resp.ErrorMessage)
	}

	if len(resp.Data.Users) == 0 {
		return nil, fmt.Errorf("user lookup returned no data")
	}

	user := resp.Data.Users[0]
	return &Broadcaster{
		ID:          user.ID,
		Login:       user.Login,
		DisplayName: user.DisplayName,
	}, nil
}

// SubscriberCount fetches the broadcaster's current subscriber count.
// Twitch reports an explicit total alongside the subscription page; when
// the total is absent the returned items are counted instead.
func (c *Client) SubscriberCount(_ context.Context, accessToken, broadcasterID string) (int, error) {
	c.mu.Lock()
	c.client.SetUserAccessToken(accessToken)
	resp, err := c.client.GetSubscriptions(&helix.SubscriptionsParams{
		BroadcasterID: broadcasterID,
		First:         100,
	})
	c.mu.Unlock()

	if err != nil {
		return 0, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return 0, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("subscriptions lookup returned status %d: %s %s", resp.StatusCode, resp.Error, resp.ErrorMessage)
	}

	if resp.Data.Total > 0 {
		return resp.Data.Total, nil
	}
	return len(resp.Data.Subscriptions), nil
}
