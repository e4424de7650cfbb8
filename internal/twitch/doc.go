// Package twitch talks to Twitch: the OAuth endpoints for the
// authorization-code and refresh-token exchanges, and the Helix API for
// broadcaster identity and subscriber counts.
//
// The OAuth calls are plain net/http with injectable endpoint URLs so tests
// can point them at an httptest server. The Helix calls go through
// nicklaw5/helix with an injectable API base URL for the same reason.
package twitch
