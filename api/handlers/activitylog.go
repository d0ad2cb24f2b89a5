package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const defaultLogPageSize = 20

// ActivityLog exists for the audit trail handlers
type ActivityLog struct {
	DB databases.ActivityLogDatabase
}

// ActivityLogsHandler returns a page of the audit trail, newest first
func (l ActivityLog) ActivityLogsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := bson.M{}
	if action := q.Get("action"); action != "" {
		filter["action"] = action
	}
	if dept := q.Get("department"); dept != "" {
		filter["department"] = dept
	}
	for param, field := range map[string]string{"userId": "userId", "eventId": "eventId"} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			writeError(w, "invalid filter", badRequest("invalid %s", param))
			return
		}
		filter[field] = id
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", defaultLogPageSize)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	logs, err := l.DB.Find(ctx, filter, limit, page)
	if err != nil {
		writeError(w, "failed to get activity logs", err)
		return
	}
	total, err := l.DB.Count(ctx, filter)
	if err != nil {
		writeError(w, "failed to count activity logs", err)
		return
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	writeJSON(w, http.StatusOK, models.PaginatedActivityLogs{
		Success: true,
		Logs:    logs,
		Pagination: models.PaginationInfo{
			CurrentPage: page,
			TotalPages:  pages,
			Total:       total,
			HasNextPage: page < pages,
			HasPrevPage: page > 1,
		},
	})
}
