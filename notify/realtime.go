package notify

import (
	"context"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/realtime"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// Realtime turns committed changes into pushes to connected clients
type Realtime struct {
	Pub realtime.Publisher
}

// Hook implements workflow.Hook
func (n Realtime) Hook(_ context.Context, c workflow.Change) error {
	if n.Pub == nil {
		return nil
	}
	ev := c.Event
	requestor := ev.CreatedBy.Hex()
	eventRoom := realtime.EventRoom(ev.ID.Hex())

	switch c.Kind {
	case workflow.ChangeRequirementStatus:
		if !c.StatusChanged() {
			return nil
		}
		p := NewStatusUpdate(c)
		n.Pub.ToUser(requestor, realtime.EventStatusUpdate, p)
		if c.Actor != nil && c.Actor.ID != ev.CreatedBy {
			n.Pub.ToUser(c.Actor.ID.Hex(), realtime.EventStatusUpdate, p)
		}
		n.Pub.ToRoom(eventRoom, realtime.EventStatusUpdate, p)

	case workflow.ChangeApproved:
		p := NewEventUpdate(c)
		n.Pub.ToUser(requestor, realtime.EventUpdated, p)
		n.Pub.Broadcast(realtime.EventUpdated, p)
		for _, d := range ev.TaggedDepartments {
			n.Pub.ToRoom(realtime.DepartmentRoom(d), realtime.EventUpdated, p)
		}

	case workflow.ChangeCancelled:
		p := NewEventUpdate(c)
		n.Pub.ToUser(requestor, realtime.EventUpdated, p)
		for _, d := range ev.TaggedDepartments {
			n.Pub.ToRoom(realtime.DepartmentRoom(d), realtime.EventUpdated, p)
		}

	case workflow.ChangeRejected:
		n.Pub.ToUser(requestor, realtime.EventUpdated, NewEventUpdate(c))

	case workflow.ChangeCompleted, workflow.ChangeSubmitted:
		p := NewEventUpdate(c)
		n.Pub.ToUser(requestor, realtime.EventUpdated, p)
		n.Pub.Broadcast(realtime.EventUpdated, p)

	case workflow.ChangeRetagged:
		p := NewEventUpdate(c)
		n.Pub.ToRoom(eventRoom, realtime.EventUpdated, p)
		n.Pub.ToRoom(realtime.DepartmentRoom(c.FromDepartment), realtime.EventUpdated, p)
		for _, d := range c.ToDepartments {
			n.Pub.ToRoom(realtime.DepartmentRoom(d), realtime.EventUpdated, p)
		}

	case workflow.ChangeReply:
		p := NewReplyUpdate(c)
		n.Pub.ToRoom(eventRoom, realtime.EventReplyUpdate, p)
		n.Pub.ToUser(requestor, realtime.EventReplyUpdate, p)
		n.Pub.ToRoom(realtime.DepartmentRoom(c.Department), realtime.EventReplyUpdate, p)

	default:
		n.Pub.ToRoom(eventRoom, realtime.EventUpdated, NewEventUpdate(c))
	}
	return nil
}
