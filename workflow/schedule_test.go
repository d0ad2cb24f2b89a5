package workflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

func TestParseDate(t *testing.T) {
	d, err := workflow.ParseDate("2026-11-02", manila)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, manila), d)

	_, err = workflow.ParseDate("02-11-2026", manila)
	assert.Error(t, err)
}

func TestCheckSchedule(t *testing.T) {
	slot := models.DateTimeSlot{StartDate: "2026-11-03", StartTime: "08:00", EndDate: "2026-11-03", EndTime: "12:00"}

	tests := []struct {
		name  string
		start string
		end   string
		slots []models.DateTimeSlot
		err   string
	}{
		{"same day", "2026-11-02", "2026-11-02", nil, ""},
		{"with slot", "2026-11-02", "2026-11-02", []models.DateTimeSlot{slot}, ""},
		{"main ends first", "2026-11-02", "2026-11-01", nil, "event: endDate is before startDate"},
		{"slot ends first", "2026-11-02", "2026-11-02", []models.DateTimeSlot{slot, {StartDate: "2026-11-05", EndDate: "2026-11-04"}}, "dateTimeSlots[1]: endDate is before startDate"},
		{"unreadable slot", "2026-11-02", "2026-11-02", []models.DateTimeSlot{{StartDate: "2026-11-05", EndDate: "soon"}}, `dateTimeSlots[0]: invalid endDate "soon"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := workflow.CheckSchedule(tt.start, tt.end, tt.slots)
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.err)
		})
	}
}
