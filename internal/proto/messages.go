// Package proto defines the JSON wire envelopes exchanged between clients
// and the relay. Every message carries a type discriminator; unknown types
// are logged and ignored on both ends.
package proto

import "encoding/json"

// Client-to-relay message types.
const (
	TypeJoin      = "join-world-request"
	TypeMove      = "move"
	TypeHeartbeat = "heartbeat"
)

// Relay-to-client message types.
const (
	TypeWorldSnapshot = "world-snapshot"
	TypePlayerJoined  = "player-joined"
	TypePlayerMoved   = "player-moved"
	TypePlayerLeft    = "player-left"
)

// ClientEnvelope is every message a client sends. Fields beyond Type are
// populated per message type; the relay validates what it needs.
type ClientEnvelope struct {
	Type       string          `json:"type"`
	PlayerID   string          `json:"playerId,omitempty"`
	RoomID     string          `json:"roomId,omitempty"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Name       string          `json:"name,omitempty"`
	AvatarData json.RawMessage `json:"avatarData,omitempty"`
	SentAt     int64           `json:"sentAt,omitempty"`
}

// PlayerInfo describes one present player inside a world snapshot.
type PlayerInfo struct {
	ID         string          `json:"id"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Name       string          `json:"name,omitempty"`
	AvatarData json.RawMessage `json:"avatarData,omitempty"`
}

// ServerEnvelope is every message the relay sends. Players is set only on
// world-snapshot; PlayerID/X/Y/Name/AvatarData on the per-player events;
// the time fields on heartbeat acks.
type ServerEnvelope struct {
	Type       string          `json:"type"`
	PlayerID   string          `json:"playerId,omitempty"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Name       string          `json:"name,omitempty"`
	AvatarData json.RawMessage `json:"avatarData,omitempty"`
	Players    []PlayerInfo    `json:"players,omitempty"`
	ServerTime int64           `json:"serverTime,omitempty"`
	ClientTime int64           `json:"clientTime,omitempty"`
	RTTMillis  int64           `json:"rtt,omitempty"`
}
