package realtime

import (
	"strings"
)

// Event names pushed to clients
const (
	EventStatusUpdate     = "status-update"
	EventNewNotification  = "new-notification"
	EventUpdated          = "event-updated"
	EventReplyUpdate      = "reply-update"
	EventNotificationRead = "notification-read"
	EventNewMessage       = "new-message"
)

const (
	departmentPrefix = "department:"
	eventPrefix      = "event:"
)

// Publisher pushes named events to connected clients
type Publisher interface {
	ToUser(userID, event string, payload interface{})
	ToRoom(room, event string, payload interface{})
	Broadcast(event string, payload interface{})
}

// Identity is who a connection belongs to. It decides the rooms a connection
// joins on connect.
type Identity struct {
	UserID     string
	Department string
	Elevated   bool
}

// Rooms is every room a connection for id is placed in automatically
func (id Identity) Rooms() []string {
	rooms := []string{UserRoom(id.UserID)}
	if id.Department != "" {
		rooms = append(rooms, DepartmentRoom(id.Department))
	}
	return rooms
}

// UserRoom is the private room of a user
func UserRoom(userID string) string { return userID }

// DepartmentRoom is shared by every member of a department
func DepartmentRoom(name string) string { return departmentPrefix + name }

// EventRoom is joined by clients viewing an event
func EventRoom(eventID string) string { return eventPrefix + eventID }

// IsEventRoom reports whether room names an event room
func IsEventRoom(room string) bool {
	return strings.HasPrefix(room, eventPrefix) && len(room) > len(eventPrefix)
}

// Fanout publishes to every wrapped publisher
type Fanout []Publisher

// ToUser implements Publisher
func (f Fanout) ToUser(userID, event string, payload interface{}) {
	for _, p := range f {
		p.ToUser(userID, event, payload)
	}
}

// ToRoom implements Publisher
func (f Fanout) ToRoom(room, event string, payload interface{}) {
	for _, p := range f {
		p.ToRoom(room, event, payload)
	}
}

// Broadcast implements Publisher
func (f Fanout) Broadcast(event string, payload interface{}) {
	for _, p := range f {
		p.Broadcast(event, payload)
	}
}

// Discard drops everything published to it
type Discard struct{}

// ToUser implements Publisher
func (Discard) ToUser(string, string, interface{}) {}

// ToRoom implements Publisher
func (Discard) ToRoom(string, string, interface{}) {}

// Broadcast implements Publisher
func (Discard) Broadcast(string, interface{}) {}
