package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/notify"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/realtime"
)

const defaultNotificationLimit = 50

// Notification exists for the notification feed handlers
type Notification struct {
	DB  databases.NotificationDatabase
	Pub realtime.Publisher
}

// NotificationsHandler returns the caller's feed, newest first, with the unread count
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	limit := queryInt(r, "limit", defaultNotificationLimit)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	notes, err := n.DB.FindForUser(ctx, u.ID, int64(limit))
	if err != nil {
		writeError(w, "failed to get notifications", err)
		return
	}
	unread, err := n.DB.CountUnread(ctx, u.ID)
	if err != nil {
		writeError(w, "failed to count notifications", err)
		return
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, models.NotificationsResponse{Success: true, Notifications: notes, UnreadCount: int(unread)})
}

// MarkReadHandler marks one of the caller's notifications as read
func (n Notification) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	id, err := pathID(r, "notification_id")
	if err != nil {
		writeError(w, "invalid notification id", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := n.DB.MarkRead(ctx, u.ID, id); err != nil {
		writeError(w, "failed to mark notification as read", err)
		return
	}
	unread := n.publishRead(r, u, notify.NotificationRead{NotificationID: id.Hex()})
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Notification marked as read", Data: map[string]int64{"unreadCount": unread}})
}

// MarkAllReadHandler marks every notification of the caller as read
func (n Notification) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := n.DB.MarkAllRead(ctx, u.ID)
	if err != nil {
		writeError(w, "failed to mark notifications as read", err)
		return
	}
	n.publishRead(r, u, notify.NotificationRead{All: true})
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Notifications marked as read", Data: map[string]int64{"updated": updated}})
}

// publishRead tells the caller's other sessions about the new unread count
func (n Notification) publishRead(r *http.Request, u models.User, p notify.NotificationRead) int64 {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	unread, err := n.DB.CountUnread(ctx, u.ID)
	if err != nil {
		zap.S().Warnw("failed to count unread notifications", "userId", u.ID.Hex(), "error", err)
		return 0
	}
	p.UnreadCount = unread
	if n.Pub != nil {
		n.Pub.ToUser(u.ID.Hex(), realtime.EventNotificationRead, p)
	}
	return unread
}
