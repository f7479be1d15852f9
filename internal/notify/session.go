package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// Sessions are receive-only; inbound frames are control traffic at most.
	maxInbound = 512
	sendBuffer = 64
)

// Session wraps one websocket connection belonging to an authenticated
// user. Events arrive on the send buffer from Hub.Deliver; the session only
// writes, it never accepts commands over the socket.
type Session struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte

	// done is closed exactly once when the session detaches. The send
	// channel itself is never closed, so concurrent Deliver calls can race
	// detachment without panicking.
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession wraps an upgraded connection for the given user.
func NewSession(hub *Hub, conn *websocket.Conn, userID string) *Session {
	return &Session{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Run registers the session and blocks until the connection drops. The
// caller's goroutine becomes the read pump; the write pump runs alongside.
func (s *Session) Run() {
	s.hub.Register(s)
	go s.writePump()
	s.readPump()
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// readPump drains the connection to process pongs and detect disconnects.
func (s *Session) readPump() {
	defer func() {
		s.hub.Unregister(s)
		_ = s.conn.Close()
	}()
	s.conn.SetReadLimit(maxInbound)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("user_id", s.userID).Msg("notify: session read")
			}
			return
		}
	}
}

// writePump flushes queued events and keeps the connection alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
