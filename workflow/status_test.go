package workflow_test

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

var manila, _ = time.LoadLocation("Asia/Manila")

func sampleEvent(status models.EventStatus) models.Event {
	owner := primitive.NewObjectID()
	ev := models.Event{
		ID:         primitive.NewObjectID(),
		EventTitle: "Provincial Sports Fest",
		Status:     status,
		CreatedBy:  owner,
		StartDate:  "2026-03-10",
		StartTime:  "08:00",
		EndDate:    "2026-03-10",
		EndTime:    "17:00",
		DepartmentRequirements: []models.DepartmentAllocation{
			{Department: "PGSO", Requirements: []models.RequirementAllocation{
				{ID: "r1", Name: "Chairs", Status: models.AllocationConfirmed, Notes: "ready", RequirementsStatus: models.RequirementsOnHold},
				{ID: "r2", Name: "Tables", Status: models.AllocationPending, RequirementsStatus: models.RequirementsOnHold},
			}},
			{Department: "PDRRMO", Requirements: []models.RequirementAllocation{
				{ID: "r3", Name: "Ambulance", Status: models.AllocationDeclined, DeclineReason: strPtr("unit out"), RequirementsStatus: models.RequirementsOnHold},
			}},
		},
	}
	ev.SyncTaggedDepartments()
	return ev
}

func strPtr(s string) *string { return &s }

func admin() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "admin", Role: models.RoleAdmin}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.EventStatus
		want     bool
	}{
		{models.EventStatusDraft, models.EventStatusSubmitted, true},
		{models.EventStatusSubmitted, models.EventStatusApproved, true},
		{models.EventStatusSubmitted, models.EventStatusRejected, true},
		{models.EventStatusApproved, models.EventStatusRejected, true},
		{models.EventStatusApproved, models.EventStatusCompleted, true},
		{models.EventStatusSubmitted, models.EventStatusCompleted, false},
		{models.EventStatusCancelled, models.EventStatusApproved, false},
		{models.EventStatusCompleted, models.EventStatusCancelled, false},
		{models.EventStatusRejected, models.EventStatusApproved, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, workflow.CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
	assert.True(t, workflow.IsTerminal(models.EventStatusCancelled))
	assert.False(t, workflow.IsTerminal(models.EventStatusApproved))
}

func TestSetStatusApproveReleasesEveryAllocation(t *testing.T) {
	ev := sampleEvent(models.EventStatusSubmitted)
	now := time.Now()

	c, err := workflow.SetStatus(&ev, models.EventStatusApproved, "", admin(), now)
	require.NoError(t, err)

	assert.Equal(t, workflow.ChangeApproved, c.Kind)
	assert.Equal(t, models.EventStatusSubmitted, c.PreviousStatus)
	assert.Equal(t, models.EventStatusApproved, ev.Status)
	for _, d := range ev.DepartmentRequirements {
		for _, a := range d.Requirements {
			assert.Equal(t, models.RequirementsReleased, a.RequirementsStatus)
		}
	}
	// decisions survive approval
	assert.Equal(t, models.AllocationConfirmed, ev.DepartmentRequirements[0].Requirements[0].Status)
}

func TestSetStatusCancelResetsAllocations(t *testing.T) {
	ev := sampleEvent(models.EventStatusApproved)

	_, err := workflow.SetStatus(&ev, models.EventStatusCancelled, "venue conflict", admin(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, models.EventStatusCancelled, ev.Status)
	assert.Equal(t, "venue conflict", ev.Reason)
	for _, d := range ev.DepartmentRequirements {
		for _, a := range d.Requirements {
			assert.Equal(t, models.AllocationPending, a.Status)
			assert.Nil(t, a.DeclineReason)
			assert.Empty(t, a.Notes)
		}
	}
}

func TestSetStatusRejectStoresReasonVerbatim(t *testing.T) {
	ev := sampleEvent(models.EventStatusSubmitted)

	_, err := workflow.SetStatus(&ev, models.EventStatusRejected, "  Incomplete forms ", admin(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "  Incomplete forms ", ev.Reason)
	assert.Equal(t, models.AllocationConfirmed, ev.DepartmentRequirements[0].Requirements[0].Status)
}

func TestSetStatusRejectsIllegalMoves(t *testing.T) {
	ev := sampleEvent(models.EventStatusCompleted)

	_, err := workflow.SetStatus(&ev, models.EventStatusApproved, "", admin(), time.Now())
	assert.True(t, errors.Is(err, workflow.ErrInvalidTransition))
	assert.Equal(t, models.EventStatusCompleted, ev.Status)

	_, err = workflow.SetStatus(&ev, "on-hold", "", admin(), time.Now())
	assert.True(t, errors.Is(err, workflow.ErrInvalidStatus))
}

func TestSubmitRequiresOwnerAndDraft(t *testing.T) {
	ev := sampleEvent(models.EventStatusDraft)
	stranger := models.User{ID: primitive.NewObjectID()}

	_, err := workflow.Submit(&ev, stranger, time.Now())
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	owner := models.User{ID: ev.CreatedBy}
	c, err := workflow.Submit(&ev, owner, time.Now())
	require.NoError(t, err)
	assert.Equal(t, workflow.ChangeSubmitted, c.Kind)
	assert.NotNil(t, ev.SubmittedAt)

	_, err = workflow.Submit(&ev, owner, time.Now())
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestAutoComplete(t *testing.T) {
	end := time.Date(2026, 3, 10, 17, 0, 0, 0, manila)

	for _, status := range []models.EventStatus{models.EventStatusSubmitted, models.EventStatusApproved, models.EventStatusRejected} {
		ev := sampleEvent(status)
		c, ok := workflow.AutoComplete(&ev, end.Add(time.Minute), manila)
		assert.True(t, ok, status)
		assert.True(t, c.Automatic)
		assert.Equal(t, status, c.PreviousStatus)
		assert.Equal(t, models.EventStatusCompleted, ev.Status)
	}

	ev := sampleEvent(models.EventStatusApproved)
	_, ok := workflow.AutoComplete(&ev, end.Add(-time.Minute), manila)
	assert.False(t, ok)
	assert.Equal(t, models.EventStatusApproved, ev.Status)

	_, ok = workflow.AutoComplete(&ev, end, manila)
	assert.True(t, ok, "an end equal to now is due")

	for _, status := range []models.EventStatus{models.EventStatusCompleted, models.EventStatusCancelled} {
		ev := sampleEvent(status)
		_, ok := workflow.AutoComplete(&ev, end.Add(24*time.Hour), manila)
		assert.False(t, ok)
		assert.Equal(t, status, ev.Status)
	}
}

func TestAutoCompleteUsesLatestSlot(t *testing.T) {
	ev := sampleEvent(models.EventStatusApproved)
	ev.DateTimeSlots = []models.DateTimeSlot{
		{StartDate: "2026-03-11", StartTime: "08:00", EndDate: "2026-03-11", EndTime: "12:00"},
	}
	_, ok := workflow.AutoComplete(&ev, time.Date(2026, 3, 11, 11, 0, 0, 0, manila), manila)
	assert.False(t, ok)

	_, ok = workflow.AutoComplete(&ev, time.Date(2026, 3, 11, 12, 30, 0, 0, manila), manila)
	assert.True(t, ok)
}

func TestUpdateDetails(t *testing.T) {
	ev := sampleEvent(models.EventStatusSubmitted)
	owner := models.User{ID: ev.CreatedBy}
	title := "Renamed"

	_, err := workflow.UpdateDetails(&ev, models.User{ID: primitive.NewObjectID()}, models.UpdateEventDetailsRequest{EventTitle: &title}, nil, time.Now())
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	files := []models.FileAttachment{{Filename: "a.pdf"}}
	c, err := workflow.UpdateDetails(&ev, owner, models.UpdateEventDetailsRequest{EventTitle: &title}, files, time.Now())
	require.NoError(t, err)
	assert.Equal(t, workflow.ChangeDetailsUpdated, c.Kind)
	assert.Equal(t, "Renamed", ev.EventTitle)
	assert.Len(t, ev.Attachments, 1)

	ev.Status = models.EventStatusApproved
	_, err = workflow.UpdateDetails(&ev, owner, models.UpdateEventDetailsRequest{EventTitle: &title}, nil, time.Now())
	assert.ErrorIs(t, err, workflow.ErrNotEditable)
}

func TestAttachReport(t *testing.T) {
	ev := sampleEvent(models.EventStatusCompleted)
	owner := models.User{ID: ev.CreatedBy}

	_, err := workflow.AttachReport(&ev, "photos", models.FileAttachment{}, owner, time.Now())
	assert.ErrorIs(t, err, workflow.ErrUnknownReportSlot)

	for i, slot := range models.ReportSlots {
		_, err := workflow.AttachReport(&ev, slot, models.FileAttachment{Filename: slot + ".pdf"}, owner, time.Now())
		require.NoError(t, err)
		if i < len(models.ReportSlots)-1 {
			assert.Equal(t, models.ReportsPending, ev.ReportsStatus)
		}
	}
	assert.Equal(t, models.ReportsCompleted, ev.ReportsStatus)

	draft := sampleEvent(models.EventStatusSubmitted)
	_, err = workflow.AttachReport(&draft, models.ReportCompletion, models.FileAttachment{}, models.User{ID: draft.CreatedBy}, time.Now())
	assert.ErrorIs(t, err, workflow.ErrNotEditable)
}
