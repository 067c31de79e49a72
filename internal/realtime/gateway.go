package realtime

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// HandlerFunc handles one named command on an authenticated session.
type HandlerFunc func(sess *Session, data json.RawMessage) (interface{}, error)

// Mux routes command events to their handlers.
type Mux struct {
	handlers map[string]HandlerFunc
}

func NewMux() *Mux {
	return &Mux{handlers: make(map[string]HandlerFunc)}
}

func (m *Mux) Handle(event string, handler HandlerFunc) {
	m.handlers[event] = handler
}

// TokenVerifier validates a bearer credential and returns the user id it
// carries.
type TokenVerifier func(token string) (userID string, err error)

// Gateway is the websocket entry point: it authenticates the handshake,
// registers the session, and runs the per-connection command loop.
type Gateway struct {
	mux      *Mux
	registry Registry
	verify   TokenVerifier
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewGateway(mux *Mux, registry Registry, verify TokenVerifier, log *zap.Logger) *Gateway {
	return &Gateway{
		mux:      mux,
		registry: registry,
		verify:   verify,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP is the authentication gate. Every failure mode (missing,
// malformed, expired, bad signature) gets the same rejection, and no
// command handler is reachable on an unauthenticated connection.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := g.verify(bearerToken(r))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := newSession(userID, conn, g.log)
	g.registry.Register(userID, sess)
	g.log.Info("session connected", zap.String("user_id", userID), zap.String("remote", r.RemoteAddr))

	go sess.writePump()
	g.readPump(sess)
}

// readPump dispatches commands sequentially: no two commands from the
// same connection ever interleave. Commands from different connections
// run concurrently.
func (g *Gateway) readPump(sess *Session) {
	defer func() {
		g.registry.Unregister(sess.UserID, sess)
		sess.Close()
		g.log.Info("session disconnected", zap.String("user_id", sess.UserID))
	}()

	sess.conn.SetReadLimit(maxMessageSize)
	sess.conn.SetReadDeadline(timeNow().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		sess.conn.SetReadDeadline(timeNow().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.log.Warn("read failed", zap.Error(err))
			}
			return
		}

		var req Request
		if err := json.Unmarshal(payload, &req); err != nil {
			sess.log.Warn("malformed frame", zap.Error(err))
			continue
		}

		g.dispatch(sess, req)
	}
}

// dispatch runs one command and resolves it with a structured result.
// Handler failures never terminate the connection.
func (g *Gateway) dispatch(sess *Session, req Request) {
	handler, ok := g.mux.handlers[req.Event]
	if !ok {
		g.reply(sess, Response{ID: req.ID, Success: false, Error: "unknown event"})
		return
	}

	data, err := handler(sess, req.Data)
	if err != nil {
		g.reply(sess, Response{ID: req.ID, Success: false, Error: err.Error()})
		return
	}
	g.reply(sess, Response{ID: req.ID, Success: true, Data: data})
}

func (g *Gateway) reply(sess *Session, resp Response) {
	if resp.ID == "" {
		// fire-and-forget command
		return
	}
	if err := sess.respond(resp); err != nil {
		sess.log.Debug("reply dropped", zap.Error(err))
	}
}

// bearerToken pulls the credential from the Authorization header, falling
// back to the token query parameter for browser websocket clients that
// cannot set headers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
