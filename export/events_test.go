package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/export"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

func TestEventsWorkbook(t *testing.T) {
	qty := 40
	reason := "no driver"
	ev := models.Event{
		ID:            primitive.NewObjectID(),
		EventTitle:    "Bataan Day",
		RequestorName: "Ana",
		Location:      "Capitol Quadrangle",
		StartDate:     "2026-04-09",
		StartTime:     "07:00",
		EndDate:       "2026-04-09",
		EndTime:       "12:00",
		Status:        models.EventStatusApproved,
		CreatedAt:     primitive.NewDateTimeFromTime(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		DepartmentRequirements: []models.DepartmentAllocation{
			{Department: "PGSO", Requirements: []models.RequirementAllocation{
				{ID: "r1", Name: "Chairs", Quantity: 30, TotalQuantity: &qty, Status: models.AllocationConfirmed},
			}},
			{Department: "PDRRMO", Requirements: []models.RequirementAllocation{
				{ID: "r2", Name: "Ambulance", Quantity: 1, Status: models.AllocationDeclined, DeclineReason: &reason},
			}},
		},
		TaggedDepartments: []string{"PGSO", "PDRRMO"},
	}

	var buf bytes.Buffer
	require.NoError(t, export.EventsWorkbook(&buf, []models.Event{ev}, time.UTC))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Events", "Requirements"}, f.GetSheetList())

	rows, err := f.GetRows("Events")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Title", rows[0][1])
	assert.Equal(t, "Bataan Day", rows[1][1])
	assert.Equal(t, "2026-04-09 07:00", rows[1][5])
	assert.Equal(t, "PGSO, PDRRMO", rows[1][12])

	reqs, err := f.GetRows("Requirements")
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, "40", reqs[1][6])
	assert.Equal(t, "no driver", reqs[2][10])
}
