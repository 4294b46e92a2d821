package gateway

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/example/realtime-chat/domain/chat"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// SessionState is the lifecycle position of a connection session.
type SessionState int32

// Session lifecycle: Connecting -> Authenticated -> Joined -> Closed. A
// session that fails authentication goes straight to Closed and never joins
// a room. No session leaves Closed.
const (
	StateConnecting SessionState = iota
	StateAuthenticated
	StateJoined
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// wsConn is the slice of the websocket connection the session drives.
// *websocket.Conn satisfies it; tests substitute a scripted connection.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// sendBufferSize bounds each session's outbound queue. A session that falls
// further behind starts dropping payloads rather than blocking broadcasts.
const sendBufferSize = 256

// Session binds one live socket to a user and a room subscription. Its
// outbound path (buffered channel + write pump) is independent of every
// other session's.
type Session struct {
	id        string
	user      *chat.User
	roomName  string
	roomKey   string
	global    bool
	conn      wsConn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	state     atomic.Int32
	limiter   *rateLimiter
}

func newSession(conn wsConn) *Session {
	s := &Session{
		id:      uuid.New().String(),
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		limiter: newRateLimiter(burstSize, messagesPerSecond),
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// ID returns the session's unique handle.
func (s *Session) ID() string {
	return s.id
}

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Send queues a payload for the write pump without blocking. It reports
// false when the session is closed or its buffer is full.
func (s *Session) Send(payload []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

func (s *Session) authenticated(user *chat.User) {
	s.user = user
	s.state.Store(int32(StateAuthenticated))
}

func (s *Session) joined(roomName, roomKey string, global bool) {
	s.roomName = roomName
	s.roomKey = roomKey
	s.global = global
	s.state.Store(int32(StateJoined))
}

// close transitions to Closed and tears down the socket. Safe to call more
// than once; only the first call has effect.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
		_ = s.conn.Close()
	})
}

// writePump drains the outbound queue onto the socket until the session
// closes. A write error closes the session; the read loop observes the
// closed socket and runs cleanup.
func (s *Session) writePump() {
	for {
		select {
		case payload := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("[gateway] Write error on session %s: %v", s.id, err)
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}
