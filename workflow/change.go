package workflow

import (
	"time"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

// ChangeKind names what happened to an event in a committed write
type ChangeKind string

// Change kinds
const (
	ChangeSubmitted         ChangeKind = "submitted"
	ChangeDetailsUpdated    ChangeKind = "details-updated"
	ChangeApproved          ChangeKind = "approved"
	ChangeRejected          ChangeKind = "rejected"
	ChangeCancelled         ChangeKind = "cancelled"
	ChangeCompleted         ChangeKind = "completed"
	ChangeRequirementStatus ChangeKind = "requirement-status"
	ChangeRetagged          ChangeKind = "retagged"
	ChangeReply             ChangeKind = "reply"
	ChangeReportUploaded    ChangeKind = "report-uploaded"
	ChangeDeleted           ChangeKind = "deleted"
)

// Change describes one committed mutation of an event. Post-commit hooks receive
// it with Event set to the stored state.
type Change struct {
	Kind           ChangeKind
	Event          models.Event
	PreviousStatus models.EventStatus
	Actor          *models.User
	Reason         string
	Automatic      bool

	Department                string
	Requirement               *models.RequirementAllocation
	PreviousRequirementStatus models.AllocationStatus
	Reply                     *models.RequirementReply
	FromDepartment            string
	ToDepartments             []string
	ReportSlot                string

	OccurredAt time.Time
}

// StatusChanged reports whether a requirement status change actually moved the status
func (c Change) StatusChanged() bool {
	return c.Requirement != nil && c.Requirement.Status != c.PreviousRequirementStatus
}

func statusChangeKind(to models.EventStatus) ChangeKind {
	switch to {
	case models.EventStatusSubmitted:
		return ChangeSubmitted
	case models.EventStatusApproved:
		return ChangeApproved
	case models.EventStatusRejected:
		return ChangeRejected
	case models.EventStatusCancelled:
		return ChangeCancelled
	case models.EventStatusCompleted:
		return ChangeCompleted
	}
	return ChangeDetailsUpdated
}
