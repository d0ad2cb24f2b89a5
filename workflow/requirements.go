package workflow

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

// BuildAllocations turns a submission's requested requirements into allocation
// lists. Department names and requirement references are checked against the
// catalog, and quantities are snapshotted for date.
func BuildAllocations(in []models.DepartmentRequirementsIn, c Catalog, date string) ([]models.DepartmentAllocation, error) {
	var out []models.DepartmentAllocation
	index := map[string]int{}

	for _, dr := range in {
		dept, ok := c.Department(dr.Department)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDepartment, dr.Department)
		}
		pos, seen := index[dept.Name]
		if !seen {
			out = append(out, models.DepartmentAllocation{Department: dept.Name})
			pos = len(out) - 1
			index[dept.Name] = pos
		}

		for _, r := range dr.Requirements {
			def, ok := lookupDefinition(dept, r)
			if !ok {
				return nil, fmt.Errorf("%w: %q in %s", ErrUnknownRequirement, r.Name, dept.Name)
			}
			if containsAllocation(out[pos].Requirements, def.ID.Hex()) {
				continue
			}
			alloc := models.RequirementAllocation{
				ID:                 def.ID.Hex(),
				Name:               def.Text,
				Type:               def.Type,
				Quantity:           r.Quantity,
				IsAvailable:        def.IsAvailable,
				ResponsiblePerson:  def.ResponsiblePerson,
				Status:             models.AllocationPending,
				Notes:              r.Notes,
				RequirementsStatus: models.RequirementsOnHold,
			}
			refreshAllocation(&alloc, dept, c, date)
			out[pos].Requirements = append(out[pos].Requirements, alloc)
		}
	}

	ev := models.Event{DepartmentRequirements: out}
	ev.SyncTaggedDepartments()
	return ev.DepartmentRequirements, nil
}

func lookupDefinition(dept models.Department, r models.RequirementIn) (models.RequirementDefinition, bool) {
	for _, def := range dept.Requirements {
		if def.ID.Hex() == r.ID {
			return def, true
		}
	}
	return dept.FindRequirement(r.Name)
}

func containsAllocation(list []models.RequirementAllocation, id string) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}

// locate returns the owning department and a pointer to the allocation with id.
// An empty department scans every list in order.
func locate(ev *models.Event, department, id string) (string, *models.RequirementAllocation) {
	for i := range ev.DepartmentRequirements {
		d := &ev.DepartmentRequirements[i]
		if department != "" && d.Department != department {
			continue
		}
		for j := range d.Requirements {
			if d.Requirements[j].ID == id {
				return d.Department, &d.Requirements[j]
			}
		}
	}
	return "", nil
}

// SetRequirementStatus records a department decision on one allocation. department
// is the caller's department and must be tagged; an empty department is an
// elevated caller and may act on any list. The decline reason is replaced on every
// decision; it is only set when the new status is declined with a reason.
func SetRequirementStatus(ev *models.Event, department, id string, req models.UpdateRequirementStatusRequest, actor *models.User, now time.Time) (Change, error) {
	if !req.Status.Valid() {
		return Change{}, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}
	if department != "" && !ev.IsTagged(department) {
		return Change{}, ErrForbidden
	}

	owner, alloc := locate(ev, department, id)
	if alloc == nil {
		return Change{}, ErrNotFound
	}
	if department != "" && alloc.RequirementsStatus != models.RequirementsReleased {
		return Change{}, ErrNotReleased
	}

	prev := alloc.Status
	alloc.Status = req.Status
	alloc.DeclineReason = nil
	if req.Status == models.AllocationDeclined && req.DeclineReason != nil {
		reason := *req.DeclineReason
		alloc.DeclineReason = &reason
	}
	if req.Notes != nil {
		alloc.Notes = *req.Notes
	}
	ts := primitive.NewDateTimeFromTime(now)
	alloc.LastUpdated = &ts
	ev.UpdatedAt = ts

	snapshot := *alloc
	return Change{
		Kind:                      ChangeRequirementStatus,
		PreviousStatus:            ev.Status,
		Actor:                     actor,
		Department:                owner,
		Requirement:               &snapshot,
		PreviousRequirementStatus: prev,
		OccurredAt:                now,
	}, nil
}

// Retag moves an allocation out of its current department list and appends a copy
// to each target department. Lists left empty are dropped and TaggedDepartments is
// rebuilt from the remaining lists. known validates department names.
func Retag(ev *models.Event, id, from string, targets []string, known func(string) bool, actor *models.User, now time.Time) (Change, error) {
	var clean []string
	seen := map[string]bool{}
	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		if !known(t) {
			return Change{}, fmt.Errorf("%w: %q", ErrUnknownDepartment, t)
		}
		seen[t] = true
		clean = append(clean, t)
	}
	if len(clean) == 0 {
		return Change{}, fmt.Errorf("%w: no target department", ErrUnknownDepartment)
	}

	owner, alloc := locate(ev, from, id)
	if alloc == nil {
		return Change{}, ErrNotFound
	}
	moved := copyAllocation(*alloc)
	removeAllocation(ev, owner, id)

	for _, t := range clean {
		appendAllocation(ev, t, copyAllocation(moved))
	}
	ev.SyncTaggedDepartments()
	ev.UpdatedAt = primitive.NewDateTimeFromTime(now)

	return Change{
		Kind:           ChangeRetagged,
		PreviousStatus: ev.Status,
		Actor:          actor,
		Department:     owner,
		Requirement:    &moved,
		FromDepartment: owner,
		ToDepartments:  clean,
		OccurredAt:     now,
	}, nil
}

func copyAllocation(a models.RequirementAllocation) models.RequirementAllocation {
	c := a
	if a.TotalQuantity != nil {
		q := *a.TotalQuantity
		c.TotalQuantity = &q
	}
	if a.DeclineReason != nil {
		r := *a.DeclineReason
		c.DeclineReason = &r
	}
	if a.Replies != nil {
		c.Replies = append([]models.RequirementReply(nil), a.Replies...)
	}
	return c
}

func removeAllocation(ev *models.Event, department, id string) {
	for i := range ev.DepartmentRequirements {
		d := &ev.DepartmentRequirements[i]
		if d.Department != department {
			continue
		}
		kept := d.Requirements[:0]
		for _, a := range d.Requirements {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		d.Requirements = kept
	}
}

func appendAllocation(ev *models.Event, department string, a models.RequirementAllocation) {
	for i := range ev.DepartmentRequirements {
		d := &ev.DepartmentRequirements[i]
		if d.Department == department {
			if !containsAllocation(d.Requirements, a.ID) {
				d.Requirements = append(d.Requirements, a)
			}
			return
		}
	}
	ev.DepartmentRequirements = append(ev.DepartmentRequirements, models.DepartmentAllocation{
		Department:   department,
		Requirements: []models.RequirementAllocation{a},
	})
}

// ReplyRole works out which side of the thread actor is on. The event creator is
// the requestor; a department member qualifies only for their own tagged department.
func ReplyRole(ev models.Event, department string, actor models.User) (string, error) {
	if ev.CreatedBy == actor.ID {
		return models.ReplyRoleRequestor, nil
	}
	if actor.Role == models.RoleDepartment && actor.Department == department && ev.IsTagged(department) {
		return models.ReplyRoleDepartment, nil
	}
	return "", ErrForbidden
}

// AddReply appends a note to an allocation's thread. Replies are never edited.
func AddReply(ev *models.Event, department, id, message string, actor models.User, now time.Time) (Change, error) {
	role, err := ReplyRole(*ev, department, actor)
	if err != nil {
		return Change{}, err
	}
	_, alloc := locate(ev, department, id)
	if alloc == nil {
		return Change{}, ErrNotFound
	}

	reply := models.RequirementReply{
		UserID:    actor.ID,
		UserName:  actor.DisplayName(),
		Role:      role,
		Message:   message,
		CreatedAt: primitive.NewDateTimeFromTime(now),
	}
	alloc.Replies = append(alloc.Replies, reply)
	ev.UpdatedAt = reply.CreatedAt

	snapshot := copyAllocation(*alloc)
	return Change{
		Kind:           ChangeReply,
		PreviousStatus: ev.Status,
		Actor:          &actor,
		Department:     department,
		Requirement:    &snapshot,
		Reply:          &reply,
		OccurredAt:     now,
	}, nil
}
