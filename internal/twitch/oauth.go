package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthURL  = "https://id.twitch.tv/oauth2/authorize"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"

	// ScopeReadSubscriptions is the only scope this service requests.
	ScopeReadSubscriptions = "channel:read:subscriptions"

	httpCallTimeout = 10 * time.Second
)

// TokenPair is the result of a code exchange or token refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// TokenRefreshError reports a failed refresh-token exchange. Rejected is
// true when Twitch refused the refresh token itself (revoked or expired);
// false means a transport-level fault worth surfacing to the caller.
type TokenRefreshError struct {
	Rejected bool
	Err      error
}

func (e *TokenRefreshError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("refresh token rejected: %v", e.Err)
	}
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *TokenRefreshError) Unwrap() error {
	return e.Err
}

// OAuthClient drives the two token exchanges against the Twitch OAuth
// endpoints. Endpoint URLs are injectable so tests can stand up an
// httptest server in place of id.twitch.tv.
type OAuthClient struct {
	clientID     string
	clientSecret string
	redirectURI  string
	authURL      string
	tokenURL     string
	httpClient   *http.Client
}

// OAuthOption customizes an OAuthClient.
type OAuthOption func(*OAuthClient)

// WithAuthURL overrides the authorization endpoint.
func WithAuthURL(authURL string) OAuthOption {
	return func(c *OAuthClient) { c.authURL = authURL }
}

// WithTokenURL overrides the token endpoint.
func WithTokenURL(tokenURL string) OAuthOption {
	return func(c *OAuthClient) { c.tokenURL = tokenURL }
}

// WithHTTPClient overrides the HTTP client used for token calls.
func WithHTTPClient(client *http.Client) OAuthOption {
	return func(c *OAuthClient) { c.httpClient = client }
}

func NewOAuthClient(clientID, clientSecret, redirectURI string, opts ...OAuthOption) *OAuthClient {
	c := &OAuthClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authURL:      defaultAuthURL,
		tokenURL:     defaultTokenURL,
		httpClient:   &http.Client{Timeout: httpCallTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizationURL builds the URL the broadcaster's browser is redirected
// to, carrying the encoded state and the fixed subscription-read scope.
func (c *OAuthClient) AuthorizationURL(state string) string {
	return fmt.Sprintf(
		"%s?client_id=%s&redirect_uri=%s&response_type=code&scope=%s&state=%s",
		c.authURL,
		url.QueryEscape(c.clientID),
		url.QueryEscape(c.redirectURI),
		url.QueryEscape(ScopeReadSubscriptions),
		url.QueryEscape(state),
	)
}

// ExchangeCode trades an authorization code for a token pair.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (*TokenPair, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", c.redirectURI)

	pair, status, body, err := c.postTokenForm(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status %d: %s", status, providerMessage(body))
	}
	return pair, nil
}

// Refresh trades a refresh token for a new token pair. A 400 or 401 from
// Twitch means the refresh token is no longer usable and yields a
// TokenRefreshError with Rejected set; any other failure is a transport
// fault.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	pair, status, body, err := c.postTokenForm(ctx, data)
	if err != nil {
		return nil, &TokenRefreshError{Err: err}
	}
	if status != http.StatusOK {
		rejected := status == http.StatusBadRequest || status == http.StatusUnauthorized
		return nil, &TokenRefreshError{
			Rejected: rejected,
			Err:      fmt.Errorf("refresh failed with status %d: %s", status, providerMessage(body)),
		}
	}
	return pair, nil
}

func (c *OAuthClient) postTokenForm(ctx context.Context, data url.Values) (*TokenPair, int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, body, nil
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, 0, nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	pair := &TokenPair{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	}
	return pair, resp.StatusCode, body, nil
}

// providerMessage extracts the human-readable error from a Twitch error
// payload, falling back to the raw body. Goes into logs only, never into
// client responses.
func providerMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return string(body)
}
