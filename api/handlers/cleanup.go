package handlers

import (
	"net/http"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api/scheduler"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

// Cleanup exposes the scheduled jobs for manual runs
type Cleanup struct {
	Scheduler *scheduler.Scheduler
}

// CleanupResponse reports a manual cleanup run
type CleanupResponse struct {
	models.CleanupResult
	EventsCompleted int `json:"eventsCompleted"`
}

// CleanupHandler removes past availability overrides and completes ended events
func (c Cleanup) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := c.Scheduler.CleanupPastAvailability(ctx)
	if err != nil {
		writeError(w, "failed to clean up availability", err)
		return
	}
	completed, err := c.Scheduler.AutoCompleteEvents(ctx)
	if err != nil {
		writeError(w, "failed to complete ended events", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Cleanup finished",
		Data:    CleanupResponse{CleanupResult: res, EventsCompleted: completed},
	})
}
