package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// UpdateStatusHandler applies an admin status transition
func (e Event) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	var req models.UpdateEventStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid status update", err)
		return
	}

	stored := e.update(w, r, "failed to update event status", func(ev *models.Event) (workflow.Change, error) {
		return workflow.SetStatus(ev, req.Status, req.Reason, &u, e.now())
	})
	if stored == nil {
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Event status updated", Data: stored})
}

// UpdateRequirementStatusHandler records a department decision on one allocation.
// Department members act on their own list once it is released; elevated users
// may act on any list.
func (e Event) UpdateRequirementStatusHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	department := u.Department
	if u.IsElevated() {
		department = ""
	} else if department == "" {
		writeError(w, "user has no department", workflow.ErrForbidden)
		return
	}

	var req models.UpdateRequirementStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid requirement status", err)
		return
	}
	requirementID := mux.Vars(r)["requirement_id"]

	stored := e.update(w, r, "failed to update requirement status", func(ev *models.Event) (workflow.Change, error) {
		return workflow.SetRequirementStatus(ev, department, requirementID, req, &u, e.now())
	})
	if stored == nil {
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Requirement status updated", Data: stored})
}

// RetagRequirementHandler moves an allocation to other departments. A department
// member may only move allocations out of their own list.
func (e Event) RetagRequirementHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	var req models.RetagRequirementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid retag request", err)
		return
	}
	from := req.FromDepartment
	if !u.IsElevated() {
		if u.Department == "" {
			writeError(w, "user has no department", workflow.ErrForbidden)
			return
		}
		from = u.Department
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	depts, err := e.DDB.Find(ctx, bson.M{})
	if err != nil {
		writeError(w, "failed to load departments", err)
		return
	}
	snap := workflow.NewCatalogSnapshot(depts, nil)
	requirementID := mux.Vars(r)["requirement_id"]

	stored := e.update(w, r, "failed to retag requirement", func(ev *models.Event) (workflow.Change, error) {
		if !u.IsElevated() && !ev.IsTagged(from) {
			return workflow.Change{}, workflow.ErrForbidden
		}
		return workflow.Retag(ev, requirementID, from, req.Departments, snap.HasDepartment, &u, e.now())
	})
	if stored == nil {
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Requirement retagged", Data: stored})
}

// ReplyHandler appends a reply to an allocation thread
func (e Event) ReplyHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	var req models.ReplyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid reply", err)
		return
	}
	requirementID := mux.Vars(r)["requirement_id"]

	stored := e.update(w, r, "failed to add reply", func(ev *models.Event) (workflow.Change, error) {
		return workflow.AddReply(ev, req.Department, requirementID, req.Message, u, e.now())
	})
	if stored == nil {
		return
	}
	writeJSON(w, http.StatusCreated, models.SuccessResponse{Success: true, Message: "Reply added", Data: stored})
}
