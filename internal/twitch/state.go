package twitch

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// statePayload is the JSON document carried through the OAuth state
// parameter. JSON leaves room for additional fields without changing the
// encoding.
type statePayload struct {
	Channel string `json:"channel"`
}

// EncodeState packs the channel into an opaque state token for the
// authorization redirect. The token is reversible and unsigned; it only
// correlates the callback with the channel that started the flow.
func EncodeState(channel string) string {
	payload, _ := json.Marshal(statePayload{Channel: channel})
	return base64.RawURLEncoding.EncodeToString(payload)
}

// DecodeState recovers the channel from a state token produced by
// EncodeState. Returns an error for anything that is not a well-formed
// token with a non-empty channel.
func DecodeState(state string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return "", fmt.Errorf("state is not valid base64: %w", err)
	}

	var payload statePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("state is not valid JSON: %w", err)
	}

	if payload.Channel == "" {
		return "", fmt.Errorf("state carries no channel")
	}

	return payload.Channel, nil
}
