package realtime

import (
	"errors"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"go.uber.org/zap"
)

const namespace = "/"

// Authenticator resolves the token a socket.io client connects with
type Authenticator func(r *http.Request, token string) (Identity, error)

// SocketIO publishes to socket.io clients using the same rooms as the Hub
type SocketIO struct {
	server *socketio.Server

	// CanJoin decides whether a connection may enter a room it asked for.
	// The default admits any event room.
	CanJoin func(id Identity, room string) bool
}

type roomRequest struct {
	Room string `json:"room"`
}

// NewSocketIO builds the socket.io server. Connections are authenticated with the
// token query parameter and placed in their user and department rooms.
func NewSocketIO(authenticate Authenticator, allowedOrigins []string) *SocketIO {
	check := originChecker(allowedOrigins)
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{CheckOrigin: check},
			&websocket.Transport{CheckOrigin: check},
		},
	})

	server.OnConnect(namespace, func(s socketio.Conn) error {
		u := s.URL()
		header := s.RemoteHeader()
		r := &http.Request{URL: &u, Header: header}
		token := u.Query().Get("token")
		if token == "" {
			return errors.New("missing token")
		}
		id, err := authenticate(r, token)
		if err != nil {
			zap.S().Debugw("socket.io authentication failed", "error", err)
			return err
		}
		s.SetContext(id)
		for _, room := range id.Rooms() {
			s.Join(room)
		}
		return nil
	})

	sio := &SocketIO{
		server:  server,
		CanJoin: func(_ Identity, room string) bool { return IsEventRoom(room) },
	}

	server.OnEvent(namespace, "join", func(s socketio.Conn, msg roomRequest) {
		id, ok := s.Context().(Identity)
		if ok && sio.CanJoin(id, msg.Room) {
			s.Join(msg.Room)
		}
	})

	server.OnEvent(namespace, "leave", func(s socketio.Conn, msg roomRequest) {
		s.Leave(msg.Room)
	})

	server.OnError(namespace, func(s socketio.Conn, e error) {
		zap.S().Warnw("socket.io error", "error", e)
	})

	server.OnDisconnect(namespace, func(s socketio.Conn, reason string) {
		if id, ok := s.Context().(Identity); ok {
			zap.S().Debugw("socket.io client disconnected", "userId", id.UserID, "reason", reason)
		}
	})

	return sio
}

// Serve runs the socket.io event loop until Close
func (s *SocketIO) Serve() {
	go func() {
		if err := s.server.Serve(); err != nil {
			zap.S().Errorw("socket.io server stopped", "error", err)
		}
	}()
}

// ServeHTTP implements http.Handler
func (s *SocketIO) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.ServeHTTP(w, r)
}

// Close shuts the socket.io server down
func (s *SocketIO) Close() error {
	return s.server.Close()
}

// ToUser implements Publisher
func (s *SocketIO) ToUser(userID, event string, payload interface{}) {
	s.server.BroadcastToRoom(namespace, UserRoom(userID), event, payload)
}

// ToRoom implements Publisher
func (s *SocketIO) ToRoom(room, event string, payload interface{}) {
	s.server.BroadcastToRoom(namespace, room, event, payload)
}

// Broadcast implements Publisher
func (s *SocketIO) Broadcast(event string, payload interface{}) {
	s.server.BroadcastToNamespace(namespace, event, payload)
}
