package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/realtime"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/storage"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// Message exists for event conversation handlers
type Message struct {
	DB    databases.MessageDatabase
	EDB   databases.EventDatabase
	Files *storage.Local
	Pub   realtime.Publisher
}

// conversationRole is the side of a conversation u speaks for, or "" when u may
// not take part in the department's conversation on ev
func conversationRole(ev models.Event, department string, u models.User) string {
	switch {
	case ev.CreatedBy == u.ID && ev.IsTagged(department):
		return models.ReplyRoleRequestor
	case u.Role == models.RoleDepartment && u.Department == department && ev.IsTagged(department):
		return models.ReplyRoleDepartment
	case u.IsElevated():
		return u.Role
	}
	return ""
}

func (m Message) event(w http.ResponseWriter, r *http.Request) *models.Event {
	id, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, "invalid event id", err)
		return nil
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	ev, err := m.EDB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, "failed to get event", err)
		return nil
	}
	return ev
}

// MessagesHandler returns one conversation of an event oldest first. Department
// members always read their own department's conversation.
func (m Message) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	ev := m.event(w, r)
	if ev == nil {
		return
	}
	department := r.URL.Query().Get("department")
	if u.Role == models.RoleDepartment && ev.CreatedBy != u.ID {
		department = u.Department
	}
	if department == "" && !u.IsElevated() && ev.CreatedBy != u.ID {
		writeError(w, "department is required", badRequest("missing department"))
		return
	}
	if department != "" && conversationRole(*ev, department, u) == "" {
		writeError(w, "not allowed to read this conversation", workflow.ErrForbidden)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	msgs, err := m.DB.FindConversation(ctx, ev.ID, department)
	if err != nil {
		writeError(w, "failed to get messages", err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: msgs})
}

// SendMessageHandler appends to a conversation and pushes it to the event room
// and the other party
func (m Message) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)

	var req models.SendMessageRequest
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, "invalid message", badRequest("failed to parse multipart form"))
			return
		}
		req.Department = r.FormValue("department")
		req.Content = r.FormValue("content")
		req.HasAttachment = len(formFiles(r, "attachment")) > 0
		if err := validateStruct(&req); err != nil {
			writeError(w, "invalid message", err)
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid message", err)
		return
	}

	ev := m.event(w, r)
	if ev == nil {
		return
	}
	role := conversationRole(*ev, req.Department, u)
	if role == "" {
		writeError(w, "not allowed to post in this conversation", workflow.ErrForbidden)
		return
	}

	msg := &models.Message{
		ID:         primitive.NewObjectID(),
		EventID:    ev.ID,
		Department: req.Department,
		SenderID:   u.ID,
		SenderName: u.DisplayName(),
		SenderRole: role,
		Content:    strings.TrimSpace(req.Content),
		CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}
	if files := formFiles(r, "attachment"); len(files) > 0 {
		a, err := m.Files.Save(models.FileCategoryMessages, files[0])
		if err != nil {
			writeError(w, "failed to store attachment", err)
			return
		}
		msg.Attachment = &a
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := m.DB.InsertOne(ctx, msg); err != nil {
		if msg.Attachment != nil {
			m.Files.RemoveAll(*msg.Attachment)
		}
		writeError(w, "failed to send message", err)
		return
	}

	if m.Pub != nil {
		m.Pub.ToRoom(realtime.EventRoom(ev.ID.Hex()), realtime.EventNewMessage, msg)
		if role == models.ReplyRoleRequestor {
			m.Pub.ToRoom(realtime.DepartmentRoom(req.Department), realtime.EventNewMessage, msg)
		} else {
			m.Pub.ToUser(ev.CreatedBy.Hex(), realtime.EventNewMessage, msg)
		}
	}
	writeJSON(w, http.StatusCreated, models.SuccessResponse{Success: true, Message: "Message sent", Data: msg})
}
