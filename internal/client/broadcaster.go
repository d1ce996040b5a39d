package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/c42705/stargety-oasis-sub005/internal/proto"
)

const writeWait = 10 * time.Second

// ErrClosed is returned by sends after the broadcaster has shut down.
var ErrClosed = errors.New("client: broadcaster closed")

// Conn is the transport a broadcaster rides on. It is injected so rooms of
// engines can be tested without sockets.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// wsConn adapts a gorilla connection to Conn.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// Dial connects to a relay websocket endpoint.
func Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: dialing relay: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

// Broadcaster is one room's protocol endpoint: it sends the local entity's
// join and moves and routes inbound relay events into the registry.
type Broadcaster struct {
	conn     Conn
	roomID   string
	playerID string
	registry *Registry
	log      *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewBroadcaster wraps an established connection for one room.
func NewBroadcaster(conn Conn, roomID, playerID string, registry *Registry, log *zap.Logger) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{
		conn:     conn,
		roomID:   roomID,
		playerID: playerID,
		registry: registry,
		log:      log.With(zap.String("room", roomID)),
	}
}

// PlayerID returns the local entity id this broadcaster speaks for.
func (b *Broadcaster) PlayerID() string { return b.playerID }

// Join announces the local entity to the room. Send once, before any Move.
func (b *Broadcaster) Join(x, y float64, name string, avatar json.RawMessage) error {
	return b.send(proto.ClientEnvelope{
		Type:       proto.TypeJoin,
		PlayerID:   b.playerID,
		RoomID:     b.roomID,
		X:          x,
		Y:          y,
		Name:       name,
		AvatarData: avatar,
	})
}

// Move relays an accepted local movement. Failures mean the transport is
// down; the caller drops the update and keeps moving locally.
func (b *Broadcaster) Move(x, y float64) error {
	return b.send(proto.ClientEnvelope{
		Type: proto.TypeMove,
		X:    x,
		Y:    y,
	})
}

// Heartbeat reports liveness to the relay.
func (b *Broadcaster) Heartbeat() error {
	return b.send(proto.ClientEnvelope{
		Type:   proto.TypeHeartbeat,
		SentAt: time.Now().UnixMilli(),
	})
}

func (b *Broadcaster) send(msg proto.ClientEnvelope) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("client: marshaling %s: %w", msg.Type, err)
	}
	return b.conn.WriteMessage(data)
}

// Run consumes relay events until the context is canceled or the
// connection drops, keeping the registry current. On return the registry
// is cleared and the broadcaster refuses further sends.
func (b *Broadcaster) Run(ctx context.Context) error {
	defer b.teardown()

	go func() {
		<-ctx.Done()
		b.conn.Close()
	}()

	for {
		payload, err := b.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("client: relay connection lost: %w", err)
		}

		var msg proto.ServerEnvelope
		if err := json.Unmarshal(payload, &msg); err != nil {
			b.log.Warn("discarding malformed relay message", zap.Error(err))
			continue
		}
		b.handle(msg)
	}
}

func (b *Broadcaster) handle(msg proto.ServerEnvelope) {
	switch msg.Type {
	case proto.TypeWorldSnapshot:
		b.registry.ApplySnapshot(msg.Players, b.playerID)
	case proto.TypePlayerJoined:
		b.registry.ApplyJoined(proto.PlayerInfo{
			ID:         msg.PlayerID,
			X:          msg.X,
			Y:          msg.Y,
			Name:       msg.Name,
			AvatarData: msg.AvatarData,
		}, b.playerID)
	case proto.TypePlayerMoved:
		b.registry.ApplyMoved(msg.PlayerID, msg.X, msg.Y)
	case proto.TypePlayerLeft:
		b.registry.ApplyLeft(msg.PlayerID)
	case proto.TypeHeartbeat:
		// RTT ack; nothing to update client-side yet.
	default:
		b.log.Warn("unknown relay message type", zap.String("type", msg.Type))
	}
}

// RunHeartbeats sends heartbeats at the given interval until the context
// is canceled or the transport dies.
func (b *Broadcaster) RunHeartbeats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Heartbeat(); err != nil {
				b.log.Debug("heartbeat dropped", zap.Error(err))
				if errors.Is(err, ErrClosed) {
					return
				}
			}
		}
	}
}

// Close tears the broadcaster down: the connection is closed and the
// registry emptied so nothing keeps rendering ghosts.
func (b *Broadcaster) Close() error {
	b.teardown()
	return nil
}

func (b *Broadcaster) teardown() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.conn.Close()
	b.registry.Clear()
}
