package notify

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// Activity action names
const (
	ActionLogin = "login"
)

// ActivityLog appends an audit entry for every committed change
type ActivityLog struct {
	DB databases.ActivityLogDatabase
}

// Hook implements workflow.Hook
func (a ActivityLog) Hook(ctx context.Context, c workflow.Change) error {
	entry := NewActivityEntry(c)
	return a.DB.InsertOne(ctx, &entry)
}

// NewActivityEntry describes c for the audit trail
func NewActivityEntry(c workflow.Change) models.ActivityLog {
	id := c.Event.ID
	entry := models.ActivityLog{
		ID:          primitive.NewObjectID(),
		Action:      string(c.Kind),
		Description: describe(c),
		EventID:     &id,
		EventTitle:  c.Event.EventTitle,
		Department:  c.Department,
		CreatedAt:   primitive.NewDateTimeFromTime(c.OccurredAt),
	}
	if c.Actor != nil {
		uid := c.Actor.ID
		entry.UserID = &uid
		entry.Username = c.Actor.DisplayName()
		entry.Role = c.Actor.Role
		if entry.Department == "" {
			entry.Department = c.Actor.Department
		}
	} else {
		entry.Username = "system"
		entry.Role = "system"
	}
	return entry
}

func describe(c workflow.Change) string {
	title := c.Event.EventTitle
	switch c.Kind {
	case workflow.ChangeRequirementStatus:
		if c.Requirement != nil {
			return fmt.Sprintf("%s set %q on %q to %s", c.Department, c.Requirement.Name, title, c.Requirement.Status)
		}
	case workflow.ChangeRetagged:
		if c.Requirement != nil {
			return fmt.Sprintf("moved %q on %q from %s to %v", c.Requirement.Name, title, c.FromDepartment, c.ToDepartments)
		}
	case workflow.ChangeReply:
		return fmt.Sprintf("replied on %q for %s", title, c.Department)
	case workflow.ChangeReportUploaded:
		return fmt.Sprintf("uploaded %s for %q", c.ReportSlot, title)
	case workflow.ChangeCompleted:
		if c.Automatic {
			return fmt.Sprintf("%q completed after its schedule ended", title)
		}
	}
	if c.Reason != "" {
		return fmt.Sprintf("%s %q: %s", c.Kind, title, c.Reason)
	}
	return fmt.Sprintf("%s %q", c.Kind, title)
}

// NewLoginEntry is the audit entry written when a user signs in
func NewLoginEntry(u models.User, ip string, at time.Time) models.ActivityLog {
	uid := u.ID
	return models.ActivityLog{
		ID:          primitive.NewObjectID(),
		UserID:      &uid,
		Username:    u.DisplayName(),
		Role:        u.Role,
		Department:  u.Department,
		Action:      ActionLogin,
		Description: u.DisplayName() + " signed in",
		IPAddress:   ip,
		CreatedAt:   primitive.NewDateTimeFromTime(at),
	}
}
