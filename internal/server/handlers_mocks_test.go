package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notpogix/twitch-subgoal-overlay/internal/config"
	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
	"github.com/notpogix/twitch-subgoal-overlay/internal/subgoal"
)

type mockAppService struct {
	startAuthorizationFn     func(channel string) (string, error)
	completeAuthorizationFn  func(ctx context.Context, code, state string) (*domain.Credential, error)
	currentSubscriberCountFn func(ctx context.Context, channel string) (int, bool)
	setGoalFn                func(channel, goal string) error
	goalFn                   func(channel string) int
	pingFn                   func(ctx context.Context) error
}

func (m *mockAppService) StartAuthorization(channel string) (string, error) {
	if m.startAuthorizationFn != nil {
		return m.startAuthorizationFn(channel)
	}
	return "https://id.example.com/authorize", nil
}

func (m *mockAppService) CompleteAuthorization(ctx context.Context, code, state string) (*domain.Credential, error) {
	if m.completeAuthorizationFn != nil {
		return m.completeAuthorizationFn(ctx, code, state)
	}
	return &domain.Credential{ChannelID: "teststreamer"}, nil
}

func (m *mockAppService) CurrentSubscriberCount(ctx context.Context, channel string) (int, bool) {
	if m.currentSubscriberCountFn != nil {
		return m.currentSubscriberCountFn(ctx, channel)
	}
	return 0, false
}

func (m *mockAppService) SetGoal(channel, goal string) error {
	if m.setGoalFn != nil {
		return m.setGoalFn(channel, goal)
	}
	return nil
}

func (m *mockAppService) Goal(channel string) int {
	if m.goalFn != nil {
		return m.goalFn(channel)
	}
	return subgoal.DefaultGoal
}

func (m *mockAppService) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "development",
		Port:               "8080",
		TwitchClientID:     "client-id",
		TwitchClientSecret: "client-secret",
		TwitchRedirectURI:  "http://localhost:8080/auth/callback",
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}
}

func newTestServer(t *testing.T, app appService) *Server {
	t.Helper()

	srv, err := NewServer(testConfig(), app)
	require.NoError(t, err)
	return srv
}

func (s *Server) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}
