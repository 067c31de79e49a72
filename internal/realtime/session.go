package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

var errSessionClosed = errors.New("session closed")

var timeNow = time.Now

// Session is one authenticated websocket connection. Outbound frames go
// through a buffered channel drained by a single write pump, so pushes and
// replies never interleave mid-frame.
type Session struct {
	UserID string

	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

func newSession(userID string, conn *websocket.Conn, log *zap.Logger) *Session {
	return &Session{
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		log:    log.With(zap.String("user_id", userID)),
	}
}

// Push delivers a server-initiated event to this session.
func (s *Session) Push(event string, data interface{}) error {
	return s.enqueue(Push{Event: event, Data: data})
}

// respond delivers the reply to a command.
func (s *Session) respond(resp Response) error {
	return s.enqueue(resp)
}

func (s *Session) enqueue(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case s.send <- payload:
		return nil
	case <-s.done:
		return errSessionClosed
	}
}

// Close tears the connection down. Safe to call from any goroutine and
// more than once; the registry closes evicted sessions and the read pump
// closes its own on exit.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
	return nil
}

// writePump serializes all outbound traffic for the connection and keeps
// it alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case payload := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.log.Debug("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}
