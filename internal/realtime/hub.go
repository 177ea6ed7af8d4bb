package realtime

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// AdminRoom receives pushes addressed to every connected admin session.
const AdminRoom = "role_admin"

// UserRoom names the personal room for a user.
func UserRoom(userID int64) string {
	return fmt.Sprintf("user_%d", userID)
}

// Conn is the transport-facing surface of a live session. *websocket.Conn
// satisfies it; tests substitute fakes.
type Conn interface {
	WriteJSON(v interface{}) error
}

type session struct {
	id   string
	mu   sync.Mutex // serializes writes to the connection
	conn Conn
}

type pushMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub is the process-wide room registry. Lifetime equals process lifetime;
// memberships exist only while the owning session stays connected.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	rooms    map[string]map[string]*session
	logger   *zap.Logger
}

// NewHub creates an empty registry.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		rooms:    make(map[string]map[string]*session),
		logger:   logger,
	}
}

// Register tracks a new live session and returns its identifier.
func (h *Hub) Register(conn Conn) string {
	s := &session{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	return s.id
}

// Join subscribes the session to its personal room and, for admins, the
// shared admin room.
func (h *Hub) Join(sessionID string, userID int64, role domain.UserRole) {
	h.JoinRoom(sessionID, UserRoom(userID))
	if role == domain.RoleAdmin {
		h.JoinRoom(sessionID, AdminRoom)
	}
}

// JoinRoom subscribes the session to a single room. Unknown sessions are
// ignored.
func (h *Hub) JoinRoom(sessionID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*session)
		h.rooms[room] = members
	}
	members[sessionID] = s
}

// Unregister drops the session and all of its room memberships. Called on
// transport disconnect.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
	for room, members := range h.rooms {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// EmitToRoom delivers an event to every member of a room, best-effort and
// at most once per connected member. Write failures are logged and do not
// affect delivery to other members.
func (h *Hub) EmitToRoom(room, event string, payload interface{}) {
	h.mu.RLock()
	members := make([]*session, 0, len(h.rooms[room]))
	for _, s := range h.rooms[room] {
		members = append(members, s)
	}
	h.mu.RUnlock()

	msg := pushMessage{Event: event, Data: payload}
	for _, s := range members {
		s.mu.Lock()
		err := s.conn.WriteJSON(msg)
		s.mu.Unlock()
		if err != nil {
			h.logger.Warn("live push failed",
				zap.String("room", room),
				zap.String("event", event),
				zap.String("session_id", s.id),
				zap.Error(err))
		}
	}
}

// RoomSize returns the current member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
