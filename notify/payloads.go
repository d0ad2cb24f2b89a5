package notify

import (
	"time"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// StatusUpdate is pushed when a department changes one allocation
type StatusUpdate struct {
	EventID         string                  `json:"eventId"`
	EventTitle      string                  `json:"eventTitle"`
	RequirementID   string                  `json:"requirementId"`
	RequirementName string                  `json:"requirementName"`
	Department      string                  `json:"department"`
	Status          models.AllocationStatus `json:"status"`
	PreviousStatus  models.AllocationStatus `json:"previousStatus"`
	DeclineReason   *string                 `json:"declineReason,omitempty"`
	Notes           string                  `json:"notes,omitempty"`
	UpdatedBy       string                  `json:"updatedBy,omitempty"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// EventUpdate is pushed for lifecycle changes of an event
type EventUpdate struct {
	EventID              string              `json:"eventId"`
	EventTitle           string              `json:"eventTitle"`
	Kind                 workflow.ChangeKind `json:"type"`
	Status               models.EventStatus  `json:"status"`
	PreviousStatus       models.EventStatus  `json:"previousStatus,omitempty"`
	Reason               string              `json:"reason,omitempty"`
	Automatic            bool                `json:"automatic,omitempty"`
	Department           string              `json:"department,omitempty"`
	Departments          []string            `json:"departments,omitempty"`
	ReleasedRequirements int                 `json:"releasedRequirements,omitempty"`
	UpdatedBy            string              `json:"updatedBy,omitempty"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// ReplyUpdate is pushed when a reply is appended to an allocation thread
type ReplyUpdate struct {
	EventID       string                  `json:"eventId"`
	EventTitle    string                  `json:"eventTitle"`
	RequirementID string                  `json:"requirementId"`
	Department    string                  `json:"department"`
	Reply         models.RequirementReply `json:"reply"`
}

// NotificationRead tells a user's other sessions that notifications were read
type NotificationRead struct {
	NotificationID string `json:"notificationId,omitempty"`
	All            bool   `json:"all,omitempty"`
	UnreadCount    int64  `json:"unreadCount"`
}

func actorName(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.DisplayName()
}

// NewStatusUpdate builds the payload for a requirement status change
func NewStatusUpdate(c workflow.Change) StatusUpdate {
	p := StatusUpdate{
		EventID:        c.Event.ID.Hex(),
		EventTitle:     c.Event.EventTitle,
		Department:     c.Department,
		PreviousStatus: c.PreviousRequirementStatus,
		UpdatedBy:      actorName(c.Actor),
		UpdatedAt:      c.OccurredAt,
	}
	if r := c.Requirement; r != nil {
		p.RequirementID = r.ID
		p.RequirementName = r.Name
		p.Status = r.Status
		p.DeclineReason = r.DeclineReason
		p.Notes = r.Notes
	}
	return p
}

// NewEventUpdate builds the payload for any other change
func NewEventUpdate(c workflow.Change) EventUpdate {
	p := EventUpdate{
		EventID:        c.Event.ID.Hex(),
		EventTitle:     c.Event.EventTitle,
		Kind:           c.Kind,
		Status:         c.Event.Status,
		PreviousStatus: c.PreviousStatus,
		Reason:         c.Reason,
		Automatic:      c.Automatic,
		Department:     c.Department,
		Departments:    c.ToDepartments,
		UpdatedBy:      actorName(c.Actor),
		UpdatedAt:      c.OccurredAt,
	}
	if c.Kind == workflow.ChangeApproved {
		for _, d := range c.Event.DepartmentRequirements {
			p.ReleasedRequirements += len(d.Requirements)
		}
	}
	return p
}

// NewReplyUpdate builds the payload for a reply
func NewReplyUpdate(c workflow.Change) ReplyUpdate {
	p := ReplyUpdate{
		EventID:    c.Event.ID.Hex(),
		EventTitle: c.Event.EventTitle,
		Department: c.Department,
	}
	if c.Requirement != nil {
		p.RequirementID = c.Requirement.ID
	}
	if c.Reply != nil {
		p.Reply = *c.Reply
	}
	return p
}
