// Package relay fans join/move/leave events out to the participants of a
// world room. The relay is authoritative for room membership only; player
// positions are client-computed and merely forwarded.
package relay

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/c42705/stargety-oasis-sub005/internal/proto"
)

// session is one subscriber connection. Implementations serialize their own
// writes; send returns an error when the peer is gone.
type session interface {
	send(data []byte) error
	close()
}

type playerState struct {
	proto.PlayerInfo
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

// Room owns the membership and fan-out for one shared world instance.
type Room struct {
	id  string
	log *zap.Logger

	mu       sync.Mutex
	players  map[string]*playerState
	sessions map[string]session
}

func newRoom(id string, log *zap.Logger) *Room {
	return &Room{
		id:       id,
		log:      log.With(zap.String("room", id)),
		players:  make(map[string]*playerState),
		sessions: make(map[string]session),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// Join registers a player, sends the joiner its world snapshot (everyone
// but itself), and announces it to the rest of the room. The snapshot and
// the announcement happen under the room lock so no player-moved for an
// unknown id can overtake its player-joined.
func (r *Room) Join(info proto.PlayerInfo, sess session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[info.ID]; ok {
		existing.close()
	}

	r.players[info.ID] = &playerState{PlayerInfo: info, lastHeartbeat: time.Now()}
	r.sessions[info.ID] = sess

	others := make([]proto.PlayerInfo, 0, len(r.players)-1)
	for id, state := range r.players {
		if id == info.ID {
			continue
		}
		others = append(others, state.PlayerInfo)
	}

	snapshot := r.marshal(proto.ServerEnvelope{
		Type:       proto.TypeWorldSnapshot,
		Players:    others,
		ServerTime: time.Now().UnixMilli(),
	})
	if snapshot != nil {
		if err := sess.send(snapshot); err != nil {
			r.log.Warn("failed to send world snapshot", zap.String("player", info.ID), zap.Error(err))
		}
	}

	r.broadcastLocked(proto.ServerEnvelope{
		Type:       proto.TypePlayerJoined,
		PlayerID:   info.ID,
		X:          info.X,
		Y:          info.Y,
		Name:       info.Name,
		AvatarData: info.AvatarData,
	}, info.ID)
}

// Move updates a player's relayed position and fans it out to everyone
// else. Unknown players are ignored; the sender either never joined or was
// already swept.
func (r *Room) Move(playerID string, x, y float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.players[playerID]
	if !ok {
		return false
	}
	state.X = x
	state.Y = y

	r.broadcastLocked(proto.ServerEnvelope{
		Type:     proto.TypePlayerMoved,
		PlayerID: playerID,
		X:        x,
		Y:        y,
	}, playerID)
	return true
}

// Heartbeat records liveness and round-trip time for a player.
func (r *Room) Heartbeat(playerID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.players[playerID]
	if !ok {
		return 0, false
	}

	state.lastHeartbeat = receivedAt
	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}
	return state.lastRTT, true
}

// Leave removes a player, closes its session, and announces the departure.
// When sess is non-nil the removal is guarded: a connection whose session
// was already replaced by a rejoin no longer owns the player id, and its
// teardown must not evict the replacement. A nil sess removes
// unconditionally.
func (r *Room) Leave(playerID string, sess session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess != nil {
		if current, ok := r.sessions[playerID]; !ok || current != sess {
			return false
		}
	}
	return r.removeLocked(playerID)
}

// SweepStale drops every player whose last heartbeat is older than the
// timeout and returns their ids.
func (r *Room) SweepStale(now time.Time, timeout time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []string
	for id, state := range r.players {
		if now.Sub(state.lastHeartbeat) > timeout {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		r.log.Info("disconnecting player on heartbeat timeout", zap.String("player", id))
		r.removeLocked(id)
	}
	return stale
}

// Empty reports whether the room has no members left.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0
}

// Diagnostics returns per-player liveness data.
func (r *Room) Diagnostics() []PlayerDiagnostics {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PlayerDiagnostics, 0, len(r.players))
	for id, state := range r.players {
		out = append(out, PlayerDiagnostics{
			ID:            id,
			LastHeartbeat: state.lastHeartbeat.UnixMilli(),
			RTTMillis:     state.lastRTT.Milliseconds(),
		})
	}
	return out
}

// PlayerDiagnostics is one player's liveness row in /diagnostics.
type PlayerDiagnostics struct {
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}

func (r *Room) removeLocked(playerID string) bool {
	if sess, ok := r.sessions[playerID]; ok {
		delete(r.sessions, playerID)
		sess.close()
	}
	if _, ok := r.players[playerID]; !ok {
		return false
	}
	delete(r.players, playerID)

	r.broadcastLocked(proto.ServerEnvelope{
		Type:     proto.TypePlayerLeft,
		PlayerID: playerID,
	}, playerID)
	return true
}

// broadcastLocked fans a message out to every session except the sender.
// Sessions that fail to take the write are removed; their player-left goes
// out to whoever is still reachable.
func (r *Room) broadcastLocked(msg proto.ServerEnvelope, except string) {
	data := r.marshal(msg)
	if data == nil {
		return
	}

	var failed []string
	for id, sess := range r.sessions {
		if id == except {
			continue
		}
		if err := sess.send(data); err != nil {
			r.log.Warn("failed to send update, dropping subscriber",
				zap.String("player", id), zap.Error(err))
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.removeLocked(id)
	}
}

func (r *Room) marshal(msg proto.ServerEnvelope) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		r.log.Error("failed to marshal relay message", zap.Error(err))
		return nil
	}
	return data
}
