package notify

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/realtime"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// Notifications persists a notification for the requestor whenever a department
// actually changes an allocation status, then pushes it to them.
type Notifications struct {
	DB  databases.NotificationDatabase
	Pub realtime.Publisher
}

// Hook implements workflow.Hook
func (n Notifications) Hook(ctx context.Context, c workflow.Change) error {
	if c.Kind != workflow.ChangeRequirementStatus || !c.StatusChanged() {
		return nil
	}
	note := NewStatusNotification(c)
	if err := n.DB.InsertOne(ctx, &note); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	if n.Pub != nil {
		n.Pub.ToUser(note.UserID.Hex(), realtime.EventNewNotification, note)
	}
	return nil
}

// NewStatusNotification is the feed entry for a requirement status change
func NewStatusNotification(c workflow.Change) models.Notification {
	r := c.Requirement
	msg := fmt.Sprintf("%s updated %q to %s", c.Department, r.Name, r.Status)
	if r.Status == models.AllocationDeclined && r.DeclineReason != nil && *r.DeclineReason != "" {
		msg += ": " + *r.DeclineReason
	}
	return models.Notification{
		ID:              primitive.NewObjectID(),
		UserID:          c.Event.CreatedBy,
		Type:            models.NotificationStatus,
		Title:           "Requirement status updated",
		Message:         msg,
		EventID:         c.Event.ID,
		EventTitle:      c.Event.EventTitle,
		RequirementID:   r.ID,
		RequirementName: r.Name,
		Department:      c.Department,
		Status:          string(r.Status),
		CreatedAt:       primitive.NewDateTimeFromTime(c.OccurredAt),
	}
}
