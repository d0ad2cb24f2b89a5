package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

func released(ev *models.Event) {
	workflow.ReleaseRequirements(ev)
}

func TestSetRequirementStatusByDepartment(t *testing.T) {
	ev := sampleEvent(models.EventStatusApproved)
	released(&ev)
	member := &models.User{ID: primitive.NewObjectID(), Role: models.RoleDepartment, Department: "PGSO"}
	notes := "delivered at 7am"

	c, err := workflow.SetRequirementStatus(&ev, "PGSO", "r2", models.UpdateRequirementStatusRequest{
		Status: models.AllocationConfirmed,
		Notes:  &notes,
	}, member, time.Now())
	require.NoError(t, err)

	a := ev.DepartmentRequirements[0].Requirements[1]
	assert.Equal(t, models.AllocationConfirmed, a.Status)
	assert.Equal(t, notes, a.Notes)
	assert.Nil(t, a.DeclineReason)
	assert.NotNil(t, a.LastUpdated)

	assert.Equal(t, workflow.ChangeRequirementStatus, c.Kind)
	assert.Equal(t, "PGSO", c.Department)
	assert.Equal(t, models.AllocationPending, c.PreviousRequirementStatus)
	assert.True(t, c.StatusChanged())
}

func TestSetRequirementStatusDeclineReason(t *testing.T) {
	ev := sampleEvent(models.EventStatusApproved)
	released(&ev)

	_, err := workflow.SetRequirementStatus(&ev, "PGSO", "r2", models.UpdateRequirementStatusRequest{
		Status: models.AllocationDeclined,
	}, nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, ev.DepartmentRequirements[0].Requirements[1].DeclineReason, "no reason is invented")

	_, err = workflow.SetRequirementStatus(&ev, "PGSO", "r1", models.UpdateRequirementStatusRequest{
		Status:        models.AllocationConfirmed,
		DeclineReason: strPtr("ignored"),
	}, nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, ev.DepartmentRequirements[0].Requirements[0].DeclineReason)

	_, err = workflow.SetRequirementStatus(&ev, "PGSO", "r1", models.UpdateRequirementStatusRequest{
		Status:        models.AllocationDeclined,
		DeclineReason: strPtr("out of stock"),
	}, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "out of stock", *ev.DepartmentRequirements[0].Requirements[0].DeclineReason)

	_, err = workflow.SetRequirementStatus(&ev, "PGSO", "r1", models.UpdateRequirementStatusRequest{
		Status: models.AllocationConfirmed,
	}, nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, ev.DepartmentRequirements[0].Requirements[0].DeclineReason, "confirming clears the old reason")

	change, err := workflow.SetRequirementStatus(&ev, "PGSO", "r1", models.UpdateRequirementStatusRequest{
		Status: models.AllocationDeclined,
	}, nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, ev.DepartmentRequirements[0].Requirements[0].DeclineReason, "a reasonless decline does not revive the old reason")
	assert.Nil(t, change.Requirement.DeclineReason)
}

func TestSetRequirementStatusGuards(t *testing.T) {
	ev := sampleEvent(models.EventStatusSubmitted)
	req := models.UpdateRequirementStatusRequest{Status: models.AllocationConfirmed}

	_, err := workflow.SetRequirementStatus(&ev, "PGSO", "r2", req, nil, time.Now())
	assert.ErrorIs(t, err, workflow.ErrNotReleased)

	_, err = workflow.SetRequirementStatus(&ev, "PHO", "r2", req, nil, time.Now())
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	_, err = workflow.SetRequirementStatus(&ev, "PGSO", "r3", req, nil, time.Now())
	assert.ErrorIs(t, err, workflow.ErrNotFound, "r3 belongs to another department")

	_, err = workflow.SetRequirementStatus(&ev, "PGSO", "r2", models.UpdateRequirementStatusRequest{Status: "approved"}, nil, time.Now())
	assert.ErrorIs(t, err, workflow.ErrInvalidStatus)

	// elevated callers scan every list and skip the release gate
	c, err := workflow.SetRequirementStatus(&ev, "", "r3", req, admin(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "PDRRMO", c.Department)
}

func TestRetagMovesAllocation(t *testing.T) {
	ev := sampleEvent(models.EventStatusSubmitted)
	known := func(name string) bool { return name == "PGSO" || name == "PDRRMO" || name == "PHO" }

	c, err := workflow.Retag(&ev, "r3", "PDRRMO", []string{"PHO", "PGSO", "PHO"}, known, admin(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, []string{"PGSO", "PHO"}, ev.TaggedDepartments, "PDRRMO is left empty and dropped")
	assert.Len(t, ev.RequirementsFor("PGSO"), 3)
	assert.Len(t, ev.RequirementsFor("PHO"), 1)
	assert.Nil(t, ev.RequirementsFor("PDRRMO"))
	assert.Equal(t, "PDRRMO", c.FromDepartment)
	assert.Equal(t, []string{"PHO", "PGSO"}, c.ToDepartments)

	// the copies are independent
	*ev.RequirementsFor("PHO")[0].DeclineReason = "changed"
	assert.Equal(t, "unit out", *ev.RequirementsFor("PGSO")[2].DeclineReason)

	_, err = workflow.Retag(&ev, "r1", "PGSO", []string{"Unknown"}, known, admin(), time.Now())
	assert.True(t, errors.Is(err, workflow.ErrUnknownDepartment))

	_, err = workflow.Retag(&ev, "missing", "", []string{"PHO"}, known, admin(), time.Now())
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestTaggedDepartmentsTrackAllocations(t *testing.T) {
	ev := sampleEvent(models.EventStatusSubmitted)
	ev.DepartmentRequirements = append(ev.DepartmentRequirements, models.DepartmentAllocation{Department: "Empty"})
	ev.TaggedDepartments = []string{"stale"}

	ev.SyncTaggedDepartments()
	assert.Equal(t, []string{"PGSO", "PDRRMO"}, ev.TaggedDepartments)
}

func TestAddReply(t *testing.T) {
	ev := sampleEvent(models.EventStatusApproved)
	requestor := models.User{ID: ev.CreatedBy, Name: "Juan Dela Cruz", Role: models.RoleRequestor}
	member := models.User{ID: primitive.NewObjectID(), Username: "pgso1", Role: models.RoleDepartment, Department: "PGSO"}
	outsider := models.User{ID: primitive.NewObjectID(), Role: models.RoleDepartment, Department: "PHO"}

	_, err := workflow.AddReply(&ev, "PGSO", "r1", "Any update?", requestor, time.Now())
	require.NoError(t, err)
	c, err := workflow.AddReply(&ev, "PGSO", "r1", "On the way", member, time.Now())
	require.NoError(t, err)

	replies := ev.DepartmentRequirements[0].Requirements[0].Replies
	require.Len(t, replies, 2)
	assert.Equal(t, models.ReplyRoleRequestor, replies[0].Role)
	assert.Equal(t, "Juan Dela Cruz", replies[0].UserName)
	assert.Equal(t, models.ReplyRoleDepartment, replies[1].Role)
	assert.Equal(t, "On the way", c.Reply.Message)

	_, err = workflow.AddReply(&ev, "PGSO", "r1", "me too", outsider, time.Now())
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	_, err = workflow.AddReply(&ev, "PDRRMO", "r3", "not mine", member, time.Now())
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestBuildAllocations(t *testing.T) {
	qty := 50
	chairs := models.RequirementDefinition{ID: primitive.NewObjectID(), Text: "Chairs", Type: models.RequirementPhysical, TotalQuantity: &qty, IsAvailable: true}
	sound := models.RequirementDefinition{ID: primitive.NewObjectID(), Text: "Sound System", Type: models.RequirementService, ResponsiblePerson: "Mr. Santos", IsAvailable: true}
	pgso := models.Department{ID: primitive.NewObjectID(), Name: "PGSO", Requirements: []models.RequirementDefinition{chairs, sound}}
	catalog := workflow.NewCatalogSnapshot([]models.Department{pgso}, nil)

	out, err := workflow.BuildAllocations([]models.DepartmentRequirementsIn{
		{Department: "PGSO", Requirements: []models.RequirementIn{
			{ID: chairs.ID.Hex(), Name: "Chairs", Quantity: 20},
			{ID: "custom", Name: "Sound System", Quantity: 1},
		}},
		{Department: "PGSO", Requirements: []models.RequirementIn{{ID: chairs.ID.Hex(), Name: "Chairs", Quantity: 5}}},
	}, catalog, "2026-03-10")
	require.NoError(t, err)

	require.Len(t, out, 1)
	reqs := out[0].Requirements
	require.Len(t, reqs, 2)
	assert.Equal(t, chairs.ID.Hex(), reqs[0].ID)
	assert.Equal(t, 20, reqs[0].Quantity)
	assert.Equal(t, 50, *reqs[0].TotalQuantity)
	assert.Equal(t, models.AllocationPending, reqs[0].Status)
	assert.Equal(t, models.RequirementsOnHold, reqs[0].RequirementsStatus)
	assert.Equal(t, "Mr. Santos", reqs[1].ResponsiblePerson)

	_, err = workflow.BuildAllocations([]models.DepartmentRequirementsIn{{Department: "Nowhere"}}, catalog, "2026-03-10")
	assert.ErrorIs(t, err, workflow.ErrUnknownDepartment)

	_, err = workflow.BuildAllocations([]models.DepartmentRequirementsIn{
		{Department: "PGSO", Requirements: []models.RequirementIn{{ID: "x", Name: "Stage"}}},
	}, catalog, "2026-03-10")
	assert.ErrorIs(t, err, workflow.ErrUnknownRequirement)
}

func TestRefreshQuantitiesOverrideWins(t *testing.T) {
	qty := 10
	def := models.RequirementDefinition{ID: primitive.NewObjectID(), Text: "Chairs", TotalQuantity: &qty, IsAvailable: true}
	dept := models.Department{ID: primitive.NewObjectID(), Name: "PGSO", Requirements: []models.RequirementDefinition{def}}
	override := models.ResourceAvailability{DepartmentID: dept.ID, RequirementID: def.ID, Date: "2026-03-10", Quantity: 4, IsAvailable: false}
	catalog := workflow.NewCatalogSnapshot([]models.Department{dept}, []models.ResourceAvailability{override})

	stale := 99
	build := func(date string) models.Event {
		return models.Event{
			StartDate: date,
			DepartmentRequirements: []models.DepartmentAllocation{{Department: "PGSO", Requirements: []models.RequirementAllocation{
				{ID: def.ID.Hex(), Name: "Chairs", TotalQuantity: &stale, IsAvailable: true},
				{ID: "gone", Name: "Retired item", TotalQuantity: &stale},
			}}},
		}
	}

	onDate := build("2026-03-10")
	workflow.RefreshQuantities(&onDate, catalog)
	assert.Equal(t, 4, *onDate.DepartmentRequirements[0].Requirements[0].TotalQuantity)
	assert.False(t, onDate.DepartmentRequirements[0].Requirements[0].IsAvailable)
	assert.Equal(t, 99, *onDate.DepartmentRequirements[0].Requirements[1].TotalQuantity)

	otherDate := build("2026-03-11")
	workflow.RefreshQuantities(&otherDate, catalog)
	assert.Equal(t, 10, *otherDate.DepartmentRequirements[0].Requirements[0].TotalQuantity)
	assert.True(t, otherDate.DepartmentRequirements[0].Requirements[0].IsAvailable)
}

func TestEffectiveEnd(t *testing.T) {
	ev := models.Event{EndDate: "2026-03-10", EndTime: ""}
	end, ok := workflow.EffectiveEnd(ev, manila)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 0, 0, manila), end)

	ev = models.Event{EndDate: "2026-03-10T00:00:00.000Z", EndTime: "09:30:15"}
	end, ok = workflow.EffectiveEnd(ev, manila)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 30, 15, 0, manila), end)

	_, ok = workflow.EffectiveEnd(models.Event{}, manila)
	assert.False(t, ok)

	assert.Equal(t, "2026-03-11", workflow.Today(time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC), manila))
}

func TestHooksRunInOrderAndSurviveFailures(t *testing.T) {
	var calls []string
	var h workflow.Hooks
	h.Register("first", func(ctx context.Context, c workflow.Change) error {
		calls = append(calls, "first:"+string(c.Kind))
		return errors.New("boom")
	})
	h.Register("panics", func(ctx context.Context, c workflow.Change) error {
		panic("bad hook")
	})
	h.Register("last", func(ctx context.Context, c workflow.Change) error {
		calls = append(calls, "last:"+string(c.Kind))
		return nil
	})

	h.Run(context.Background(), workflow.Change{Kind: workflow.ChangeApproved}, workflow.Change{Kind: workflow.ChangeCompleted})
	assert.Equal(t, []string{"first:approved", "last:approved", "first:completed", "last:completed"}, calls)

	var nilHooks *workflow.Hooks
	assert.NotPanics(t, func() { nilHooks.Run(context.Background(), workflow.Change{}) })
}
