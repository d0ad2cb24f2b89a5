package realtime_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/realtime"
)

func newHubServer(t *testing.T) (*realtime.Hub, *httptest.Server) {
	hub := realtime.NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, realtime.Identity{
			UserID:     r.URL.Query().Get("user"),
			Department: r.URL.Query().Get("department"),
		})
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Frame {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f realtime.Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestHubDeliversToUserAndDepartmentRooms(t *testing.T) {
	hub, srv := newHubServer(t)
	requestor := dial(t, srv, "user=u1")
	member := dial(t, srv, "user=u2&department=PGSO")

	require.Eventually(t, func() bool {
		return hub.RoomSize("u1") == 1 && hub.RoomSize(realtime.DepartmentRoom("PGSO")) == 1
	}, time.Second, 10*time.Millisecond)

	hub.ToUser("u1", realtime.EventStatusUpdate, map[string]string{"status": "approved"})
	f := readFrame(t, requestor)
	assert.Equal(t, realtime.EventStatusUpdate, f.Event)
	assert.Equal(t, map[string]interface{}{"status": "approved"}, f.Data)

	hub.ToRoom(realtime.DepartmentRoom("PGSO"), realtime.EventUpdated, "e1")
	f = readFrame(t, member)
	assert.Equal(t, realtime.EventUpdated, f.Event)
	assert.Equal(t, "e1", f.Data)
}

func TestHubJoinAndLeaveEventRooms(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dial(t, srv, "user=u1")
	room := realtime.EventRoom("abc")

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "join", "room": "department:PGSO"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "join", "room": room}))
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.RoomSize(realtime.DepartmentRoom("PGSO")), "department rooms are assigned, not joined")

	hub.ToRoom(room, realtime.EventNewMessage, "hello")
	assert.Equal(t, "hello", readFrame(t, conn).Data)

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "leave", "room": room}))
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubForgetsClosedConnections(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dial(t, srv, "user=u9")
	require.Eventually(t, func() bool { return hub.RoomSize("u9") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.RoomSize("u9") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.NotPanics(t, func() { hub.ToUser("u9", realtime.EventStatusUpdate, nil) })
}

type recorder struct {
	calls []string
}

func (r *recorder) ToUser(userID, event string, _ interface{}) {
	r.calls = append(r.calls, "user:"+userID+":"+event)
}
func (r *recorder) ToRoom(room, event string, _ interface{}) {
	r.calls = append(r.calls, "room:"+room+":"+event)
}
func (r *recorder) Broadcast(event string, _ interface{}) { r.calls = append(r.calls, "all:"+event) }

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := realtime.Fanout{a, b, realtime.Discard{}}

	f.ToUser("u1", "x", nil)
	f.ToRoom(realtime.EventRoom("e1"), "y", nil)
	f.Broadcast("z", nil)

	want := []string{"user:u1:x", "room:event:e1:y", "all:z"}
	assert.Equal(t, want, a.calls)
	assert.Equal(t, want, b.calls)
}

func TestRooms(t *testing.T) {
	assert.Equal(t, []string{"u1"}, realtime.Identity{UserID: "u1"}.Rooms())
	assert.Equal(t, []string{"u1", "department:PHO"}, realtime.Identity{UserID: "u1", Department: "PHO"}.Rooms())
	assert.True(t, realtime.IsEventRoom("event:1"))
	assert.False(t, realtime.IsEventRoom("event:"))
	assert.False(t, realtime.IsEventRoom("u1"))
}
