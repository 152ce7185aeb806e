package realtime

import (
	"sync"
	"time"

	"bus-tracker/internal/auth"
	"bus-tracker/internal/models"
	"bus-tracker/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingInterval  = 54 * time.Second
)

// Session is one live connection. Identity is fixed at connect time;
// an unverified or absent token leaves UserID nil (anonymous mode,
// valid for reading positions). The room field is owned by the
// session's read goroutine.
type Session struct {
	ID     string
	UserID *int
	Role   models.Role

	conn   *websocket.Conn
	router *Router
	room   int // 0 = not in a room

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewSession(conn *websocket.Conn, identity *auth.Identity, router *Router, buffer int) *Session {
	session := &Session{
		ID:     uuid.NewString(),
		conn:   conn,
		router: router,
		send:   make(chan []byte, buffer),
	}
	if identity != nil {
		userID := identity.UserID
		session.UserID = &userID
		session.Role = identity.Role
	}
	return session
}

func (s *Session) Authenticated() bool {
	return s.UserID != nil
}

// queue hands a frame to the write pump without blocking. A full
// buffer or closed session reports false so the caller can drop the
// session.
func (s *Session) queue(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func (s *Session) queueEvent(event string, data interface{}) {
	frame, err := Encode(event, data)
	if err != nil {
		logger.Error("Error encoding %s event: %v", event, err)
		return
	}
	s.queue(frame)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

// ReadPump drives the session: every inbound frame is dispatched to
// the router on this goroutine, so a single session's events are
// processed in receipt order.
func (s *Session) ReadPump() {
	defer func() {
		s.router.Disconnect(s)
		s.conn.Close()
	}()

	s.conn.SetReadDeadline(time.Now().Add(readDeadline))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error on session %s: %v", s.ID, err)
			}
			break
		}
		s.router.Dispatch(s, frame)
	}
}

func (s *Session) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Error("Write error on session %s: %v", s.ID, err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
