package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/c42705/stargety-oasis-sub005/internal/proto"
	"github.com/c42705/stargety-oasis-sub005/internal/world"
)

const writeWait = 10 * time.Second

// wsSession wraps a websocket connection behind the session interface. The
// mutex serializes writes; gorilla connections allow one concurrent writer.
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSession) close() {
	s.conn.Close()
}

// Server exposes the relay over HTTP: the websocket endpoint, the world
// geometry, plus health and diagnostics.
type Server struct {
	manager  *Manager
	store    *world.Store
	log      *zap.Logger
	upgrader websocket.Upgrader
	tickRate int
}

// NewServer builds a relay server around the given room manager. The store
// holds the geometry clients fetch on startup; positions stay
// client-computed, the relay only serves the world they move through.
func NewServer(manager *Manager, store *world.Store, tickRate int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		manager:  manager,
		store:    store,
		log:      log,
		tickRate: tickRate,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The map editor and the client are served from other
				// origins; room access control lives upstream.
				return true
			},
		},
	}
}

// Routes returns the relay's HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/world", s.handleWorld)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleWorld(w http.ResponseWriter, _ *http.Request) {
	if s.store == nil {
		http.Error(w, "no world loaded", http.StatusNotFound)
		return
	}
	data, err := json.Marshal(s.store.Snapshot())
	if err != nil {
		s.log.Error("failed to encode world snapshot", zap.Error(err))
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	payload := struct {
		Status     string            `json:"status"`
		ServerTime int64             `json:"serverTime"`
		TickRate   int               `json:"tickRate"`
		Rooms      []RoomDiagnostics `json:"rooms"`
	}{
		Status:     "ok",
		ServerTime: time.Now().UnixMilli(),
		TickRate:   s.tickRate,
		Rooms:      s.manager.Diagnostics(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleWS upgrades the connection and runs its read loop. The first
// message must be a join-world-request; everything after that is moves and
// heartbeats until the peer goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := &wsSession{conn: conn}

	join, err := s.readJoin(conn)
	if err != nil {
		s.log.Warn("rejecting connection without join request", zap.Error(err))
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected join-world-request")
		conn.WriteMessage(websocket.CloseMessage, msg)
		conn.Close()
		return
	}

	playerID := join.PlayerID
	if playerID == "" {
		playerID = uuid.NewString()
	}

	room := s.manager.Room(join.RoomID)
	room.Join(proto.PlayerInfo{
		ID:         playerID,
		X:          join.X,
		Y:          join.Y,
		Name:       join.Name,
		AvatarData: join.AvatarData,
	}, sess)
	s.log.Info("player joined",
		zap.String("room", join.RoomID),
		zap.String("player", playerID))

	defer func() {
		room.Leave(playerID, sess)
		s.manager.DestroyRoomIfEmpty(room.ID())
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg proto.ClientEnvelope
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn("discarding malformed message",
				zap.String("player", playerID), zap.Error(err))
			continue
		}

		switch msg.Type {
		case proto.TypeMove:
			if !room.Move(playerID, msg.X, msg.Y) {
				return
			}
		case proto.TypeHeartbeat:
			now := time.Now()
			rtt, ok := room.Heartbeat(playerID, now, msg.SentAt)
			if !ok {
				return
			}
			ack := proto.ServerEnvelope{
				Type:       proto.TypeHeartbeat,
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			data, err := json.Marshal(ack)
			if err != nil {
				continue
			}
			if err := sess.send(data); err != nil {
				return
			}
		case proto.TypeJoin:
			s.log.Warn("duplicate join request ignored", zap.String("player", playerID))
		default:
			s.log.Warn("unknown message type",
				zap.String("type", msg.Type), zap.String("player", playerID))
		}
	}
}

// readJoin waits for the opening join-world-request.
func (s *Server) readJoin(conn *websocket.Conn) (*proto.ClientEnvelope, error) {
	conn.SetReadDeadline(time.Now().Add(writeWait))
	defer conn.SetReadDeadline(time.Time{})

	_, payload, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var msg proto.ClientEnvelope
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	if msg.Type != proto.TypeJoin {
		return nil, fmt.Errorf("first message is %q, not %q", msg.Type, proto.TypeJoin)
	}
	if msg.RoomID == "" {
		return nil, fmt.Errorf("join request is missing roomId")
	}
	return &msg, nil
}
