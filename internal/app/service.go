package app

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
	apperrors "github.com/notpogix/twitch-subgoal-overlay/internal/errors"
	"github.com/notpogix/twitch-subgoal-overlay/internal/metrics"
	"github.com/notpogix/twitch-subgoal-overlay/internal/subgoal"
	"github.com/notpogix/twitch-subgoal-overlay/internal/twitch"
)

const (
	countCacheTTL    = 10 * time.Second
	evictionInterval = 1 * time.Minute
)

// OAuthExchanger drives the authorization-code and refresh-token exchanges
// against the identity provider.
type OAuthExchanger interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*twitch.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*twitch.TokenPair, error)
}

// SubscriberAPI reads broadcaster identity and subscriber counts from Helix.
type SubscriberAPI interface {
	BroadcasterForToken(ctx context.Context, accessToken string) (*twitch.Broadcaster, error)
	SubscriberCount(ctx context.Context, accessToken, broadcasterID string) (int, error)
}

// Service is the application layer — the only component that references
// multiple domain components. It orchestrates all use cases.
type Service struct {
	repo   domain.CredentialRepository
	oauth  OAuthExchanger
	twitch SubscriberAPI

	creds  *subgoal.CredentialCache
	goals  *subgoal.GoalTracker
	counts *subgoal.CountCache

	fetchGroup singleflight.Group
	clock      clockwork.Clock

	stopEviction func()
	stopOnce     sync.Once
}

// NewService creates the application layer service and starts the count
// cache eviction timer.
func NewService(repo domain.CredentialRepository, oauth OAuthExchanger, twitchAPI SubscriberAPI, clock clockwork.Clock) *Service {
	counts := subgoal.NewCountCache(countCacheTTL, clock)
	return &Service{
		repo:         repo,
		oauth:        oauth,
		twitch:       twitchAPI,
		creds:        subgoal.NewCredentialCache(),
		goals:        subgoal.NewGoalTracker(),
		counts:       counts,
		clock:        clock,
		stopEviction: counts.StartEvictionTimer(evictionInterval),
	}
}

// LoadCredentials hydrates the in-memory credential cache from the
// repository. Called once at startup.
func (s *Service) LoadCredentials(ctx context.Context) error {
	creds, err := s.repo.All(ctx)
	if err != nil {
		return err
	}

	s.creds.LoadAll(creds)
	slog.Info("Credential cache hydrated", "count", len(creds))
	return nil
}

// StartAuthorization builds the provider authorization URL for a channel.
func (s *Service) StartAuthorization(channel string) (string, error) {
	if channel == "" {
		return "", apperrors.InvalidRequestError("channel is required")
	}
	return s.oauth.AuthorizationURL(twitch.EncodeState(channel)), nil
}

// CompleteAuthorization finishes the OAuth callback: it exchanges the code
// for tokens, resolves the broadcaster behind the token, and commits the
// assembled credential store-first, then cache.
func (s *Service) CompleteAuthorization(ctx context.Context, code, state string) (*domain.Credential, error) {
	channel, err := twitch.DecodeState(state)
	if err != nil {
		return nil, apperrors.InvalidStateError("state parameter is not valid").WithContext("error", err.Error())
	}

	pair, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		metrics.OAuthExchangesTotal.WithLabelValues("provider_error").Inc()
		return nil, apperrors.ProviderError("token exchange failed", err).WithField("channel", channel)
	}

	broadcaster, err := s.twitch.BroadcasterForToken(ctx, pair.AccessToken)
	if err != nil {
		metrics.OAuthExchangesTotal.WithLabelValues("provider_error").Inc()
		return nil, apperrors.ProviderError("broadcaster lookup failed", err).WithField("channel", channel)
	}
	metrics.OAuthExchangesTotal.WithLabelValues("success").Inc()

	cred, err := s.commitCredential(ctx, channel, broadcaster.ID, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		return nil, err
	}

	slog.Info("Channel authorized", "channel", channel, "broadcaster_id", broadcaster.ID)
	return cred, nil
}

// RefreshCredential exchanges a channel's refresh token for new tokens.
// It returns (nil, nil) when refreshing is impossible (no record, empty
// refresh token) or when the provider rejected the refresh token; only
// transport faults produce an error.
func (s *Service) RefreshCredential(ctx context.Context, channel string) (*domain.Credential, error) {
	cred, ok := s.creds.Get(channel)
	if !ok || cred.RefreshToken == "" {
		return nil, nil
	}

	pair, err := s.oauth.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		var refreshErr *twitch.TokenRefreshError
		if errors.As(err, &refreshErr) && refreshErr.Rejected {
			metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
			slog.Warn("Refresh token rejected", "channel", channel)
			return nil, nil
		}
		metrics.TokenRefreshesTotal.WithLabelValues("transport_error").Inc()
		return nil, err
	}
	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()

	return s.commitCredential(ctx, channel, cred.BroadcasterID, pair.AccessToken, pair.RefreshToken)
}

// commitCredential is the single commit point for token mutations: durable
// upsert first, then the cache mirror, then count invalidation.
func (s *Service) commitCredential(ctx context.Context, channel, broadcasterID, accessToken, refreshToken string) (*domain.Credential, error) {
	cred, err := s.repo.Upsert(ctx, channel, broadcasterID, accessToken, refreshToken)
	if err != nil {
		metrics.CredentialUpsertsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.InternalError("failed to store credential", err).WithField("channel", channel)
	}
	metrics.CredentialUpsertsTotal.WithLabelValues("success").Inc()

	s.creds.Set(*cred)
	s.counts.Invalidate(channel)
	return cred, nil
}

// CurrentSubscriberCount returns the subscriber count for a channel and
// whether it is known. Failures never surface as errors, only as unknown.
func (s *Service) CurrentSubscriberCount(ctx context.Context, channel string) (int, bool) {
	if count, ok := s.counts.Get(channel); ok {
		metrics.CountCacheHits.Inc()
		return count, true
	}
	metrics.CountCacheMisses.Inc()

	type result struct {
		count int
		known bool
	}

	v, _, _ := s.fetchGroup.Do(channel, func() (any, error) {
		count, known := s.fetchSubscriberCount(ctx, channel)
		if known {
			s.counts.Set(channel, count)
		}
		return result{count: count, known: known}, nil
	})

	res := v.(result)
	return res.count, res.known
}

// fetchSubscriberCount runs the fetch/refresh/retry state machine: at most
// two outbound subscriber requests, the original and one retry after a
// successful refresh.
func (s *Service) fetchSubscriberCount(ctx context.Context, channel string) (int, bool) {
	cred, ok := s.creds.Get(channel)
	if !ok {
		metrics.SubscriberFetchesTotal.WithLabelValues("no_credential").Inc()
		return 0, false
	}

	start := s.clock.Now()
	defer func() {
		metrics.SubscriberFetchDuration.Observe(s.clock.Since(start).Seconds())
	}()

	count, err := s.twitch.SubscriberCount(ctx, cred.AccessToken, cred.BroadcasterID)
	if err == nil {
		metrics.SubscriberFetchesTotal.WithLabelValues("success").Inc()
		return count, true
	}

	if !errors.Is(err, twitch.ErrUnauthorized) {
		metrics.SubscriberFetchesTotal.WithLabelValues("failed").Inc()
		slog.Error("Subscriber fetch failed", "channel", channel, "error", err)
		return 0, false
	}

	refreshed, err := s.RefreshCredential(ctx, channel)
	if err != nil || refreshed == nil {
		metrics.SubscriberFetchesTotal.WithLabelValues("failed").Inc()
		if err != nil {
			slog.Error("Token refresh failed", "channel", channel, "error", err)
		}
		return 0, false
	}

	count, err = s.twitch.SubscriberCount(ctx, refreshed.AccessToken, refreshed.BroadcasterID)
	if err != nil {
		metrics.SubscriberFetchesTotal.WithLabelValues("failed").Inc()
		slog.Error("Subscriber fetch failed after refresh", "channel", channel, "error", err)
		return 0, false
	}

	metrics.SubscriberFetchesTotal.WithLabelValues("retried").Inc()
	return count, true
}

// SetGoal parses and stores a channel's subscriber goal.
func (s *Service) SetGoal(channel, goal string) error {
	if channel == "" {
		return apperrors.InvalidRequestError("channel is required")
	}

	parsed, err := strconv.Atoi(goal)
	if err != nil {
		return apperrors.InvalidGoalError("goal must be a number").WithField("goal", goal)
	}

	if err := s.goals.SetGoal(channel, parsed); err != nil {
		return apperrors.InvalidGoalError("goal must be positive").WithField("goal", goal)
	}

	slog.Info("Goal updated", "channel", channel, "goal", parsed)
	return nil
}

// Goal returns the configured goal for a channel, or the default.
func (s *Service) Goal(channel string) int {
	return s.goals.GetGoal(channel)
}

// HasCredential reports whether a channel has a cached credential.
func (s *Service) HasCredential(channel string) bool {
	_, ok := s.creds.Get(channel)
	return ok
}

// Ping checks the durable store behind the service.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Stop halts the count cache eviction timer.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.stopEviction()
	})
}
