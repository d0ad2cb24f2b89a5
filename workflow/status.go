package workflow

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

// transitions lists the admin-driven moves out of each status. rejected, cancelled
// and completed have no entry and are terminal.
var transitions = map[models.EventStatus][]models.EventStatus{
	models.EventStatusDraft:     {models.EventStatusSubmitted, models.EventStatusCancelled},
	models.EventStatusSubmitted: {models.EventStatusApproved, models.EventStatusRejected, models.EventStatusCancelled},
	models.EventStatusApproved:  {models.EventStatusCompleted, models.EventStatusRejected, models.EventStatusCancelled},
}

// CanTransition reports whether an event in status from may move to status to
func CanTransition(from, to models.EventStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no admin transition leaves status s
func IsTerminal(s models.EventStatus) bool {
	return len(transitions[s]) == 0
}

// SetStatus applies an admin status transition to ev. Approval releases every
// allocation, cancellation undoes every department decision, rejection and
// cancellation store the reason verbatim.
func SetStatus(ev *models.Event, to models.EventStatus, reason string, actor *models.User, now time.Time) (Change, error) {
	if !to.Valid() {
		return Change{}, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	from := ev.Status
	if !CanTransition(from, to) {
		return Change{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	switch to {
	case models.EventStatusSubmitted:
		ts := primitive.NewDateTimeFromTime(now)
		ev.SubmittedAt = &ts
	case models.EventStatusApproved:
		ReleaseRequirements(ev)
	case models.EventStatusRejected:
		ev.Reason = reason
	case models.EventStatusCancelled:
		ev.Reason = reason
		ResetAllocations(ev)
	case models.EventStatusCompleted:
		ts := primitive.NewDateTimeFromTime(now)
		ev.CompletedAt = &ts
	}
	ev.Status = to
	ev.UpdatedAt = primitive.NewDateTimeFromTime(now)

	return Change{
		Kind:           statusChangeKind(to),
		PreviousStatus: from,
		Actor:          actor,
		Reason:         reason,
		OccurredAt:     now,
	}, nil
}

// Submit moves a draft owned by actor to submitted
func Submit(ev *models.Event, actor models.User, now time.Time) (Change, error) {
	if ev.CreatedBy != actor.ID {
		return Change{}, ErrForbidden
	}
	if ev.Status != models.EventStatusDraft {
		return Change{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ev.Status, models.EventStatusSubmitted)
	}
	return SetStatus(ev, models.EventStatusSubmitted, "", &actor, now)
}

// AutoComplete completes ev when its effective end is at or before now. Events that
// are already completed or cancelled are never touched.
func AutoComplete(ev *models.Event, now time.Time, loc *time.Location) (Change, bool) {
	if ev.Status == models.EventStatusCompleted || ev.Status == models.EventStatusCancelled {
		return Change{}, false
	}
	end, ok := EffectiveEnd(*ev, loc)
	if !ok || end.After(now) {
		return Change{}, false
	}

	from := ev.Status
	ts := primitive.NewDateTimeFromTime(now)
	ev.Status = models.EventStatusCompleted
	ev.CompletedAt = &ts
	ev.UpdatedAt = ts

	return Change{
		Kind:           ChangeCompleted,
		PreviousStatus: from,
		Automatic:      true,
		OccurredAt:     now,
	}, true
}

// ReleaseRequirements marks every allocation as actionable by its department.
// Allocation statuses are left alone.
func ReleaseRequirements(ev *models.Event) {
	for i := range ev.DepartmentRequirements {
		reqs := ev.DepartmentRequirements[i].Requirements
		for j := range reqs {
			reqs[j].RequirementsStatus = models.RequirementsReleased
		}
	}
}

// ResetAllocations returns every allocation to pending and clears department notes
func ResetAllocations(ev *models.Event) {
	for i := range ev.DepartmentRequirements {
		reqs := ev.DepartmentRequirements[i].Requirements
		for j := range reqs {
			reqs[j].Status = models.AllocationPending
			reqs[j].DeclineReason = nil
			reqs[j].Notes = ""
		}
	}
}

// UpdateDetails applies a requestor edit. Only the owner may edit and only while
// the event is still submitted. New attachments are appended.
func UpdateDetails(ev *models.Event, actor models.User, req models.UpdateEventDetailsRequest, attachments []models.FileAttachment, now time.Time) (Change, error) {
	if ev.CreatedBy != actor.ID {
		return Change{}, ErrForbidden
	}
	if ev.Status != models.EventStatusSubmitted {
		return Change{}, ErrNotEditable
	}

	if req.EventTitle != nil {
		ev.EventTitle = *req.EventTitle
	}
	if req.RequestorName != nil {
		ev.RequestorName = *req.RequestorName
	}
	if req.ContactNumber != nil {
		ev.ContactNumber = *req.ContactNumber
	}
	if req.ContactEmail != nil {
		ev.ContactEmail = *req.ContactEmail
	}
	if req.Participants != nil {
		ev.Participants = *req.Participants
	}
	if req.VIP != nil {
		ev.VIP = *req.VIP
	}
	if req.VVIP != nil {
		ev.VVIP = *req.VVIP
	}
	if req.Description != nil {
		ev.Description = *req.Description
	}
	ev.Attachments = append(ev.Attachments, attachments...)
	ev.UpdatedAt = primitive.NewDateTimeFromTime(now)

	return Change{
		Kind:           ChangeDetailsUpdated,
		PreviousStatus: ev.Status,
		Actor:          &actor,
		OccurredAt:     now,
	}, nil
}

// AttachReport fills one post-event report slot and recomputes the aggregate
func AttachReport(ev *models.Event, slot string, file models.FileAttachment, actor models.User, now time.Time) (Change, error) {
	known := false
	for _, s := range models.ReportSlots {
		if s == slot {
			known = true
			break
		}
	}
	if !known {
		return Change{}, fmt.Errorf("%w: %q", ErrUnknownReportSlot, slot)
	}
	if ev.CreatedBy != actor.ID && !actor.IsElevated() {
		return Change{}, ErrForbidden
	}
	if ev.Status != models.EventStatusApproved && ev.Status != models.EventStatusCompleted {
		return Change{}, ErrNotEditable
	}

	if ev.EventReports == nil {
		ev.EventReports = map[string]*models.FileAttachment{}
	}
	f := file
	ev.EventReports[slot] = &f
	ev.ReportsStatus = ReportsStatusOf(*ev)
	ev.UpdatedAt = primitive.NewDateTimeFromTime(now)

	return Change{
		Kind:           ChangeReportUploaded,
		PreviousStatus: ev.Status,
		Actor:          &actor,
		ReportSlot:     slot,
		OccurredAt:     now,
	}, nil
}

// ReportsStatusOf is completed iff every report slot holds a file
func ReportsStatusOf(ev models.Event) models.ReportsStatus {
	for _, s := range models.ReportSlots {
		if ev.EventReports[s] == nil {
			return models.ReportsPending
		}
	}
	return models.ReportsCompleted
}
