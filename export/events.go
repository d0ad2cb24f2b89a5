package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const (
	eventsSheet       = "Events"
	requirementsSheet = "Requirements"
)

var eventHeader = []interface{}{
	"Event ID", "Title", "Requestor", "Requestor Department", "Location", "Start", "End",
	"Participants", "VIP", "VVIP", "Status", "Reason", "Tagged Departments", "Reports", "Created At",
}

var requirementHeader = []interface{}{
	"Event ID", "Event Title", "Department", "Requirement", "Type", "Quantity",
	"Available Quantity", "Status", "Release", "Notes", "Decline Reason",
}

// EventsWorkbook writes events as an xlsx workbook with one sheet of events and
// one sheet of their requirement allocations.
func EventsWorkbook(w io.Writer, events []models.Event, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", eventsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(requirementsSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeRow(f, eventsSheet, 1, eventHeader); err != nil {
		return err
	}
	if err := writeRow(f, requirementsSheet, 1, requirementHeader); err != nil {
		return err
	}
	for _, sheet := range []string{eventsSheet, requirementsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return err
		}
	}

	reqRow := 2
	for i, ev := range events {
		row := []interface{}{
			ev.ID.Hex(),
			ev.EventTitle,
			ev.RequestorName,
			ev.RequestorDepartment,
			strings.Join(ev.AllLocations(), ", "),
			strings.TrimSpace(ev.StartDate + " " + ev.StartTime),
			strings.TrimSpace(ev.EndDate + " " + ev.EndTime),
			ev.Participants,
			ev.VIP,
			ev.VVIP,
			string(ev.Status),
			ev.Reason,
			strings.Join(ev.TaggedDepartments, ", "),
			string(ev.ReportsStatus),
			ev.CreatedAt.Time().In(loc).Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, eventsSheet, i+2, row); err != nil {
			return err
		}

		for _, d := range ev.DepartmentRequirements {
			for _, a := range d.Requirements {
				if err := writeRow(f, requirementsSheet, reqRow, allocationRow(ev, d.Department, a)); err != nil {
					return err
				}
				reqRow++
			}
		}
	}

	if err := f.SetColWidth(eventsSheet, "A", "O", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(requirementsSheet, "A", "K", 20); err != nil {
		return err
	}
	return f.Write(w)
}

func allocationRow(ev models.Event, department string, a models.RequirementAllocation) []interface{} {
	available := ""
	if a.TotalQuantity != nil {
		available = fmt.Sprint(*a.TotalQuantity)
	}
	decline := ""
	if a.DeclineReason != nil {
		decline = *a.DeclineReason
	}
	return []interface{}{
		ev.ID.Hex(),
		ev.EventTitle,
		department,
		a.Name,
		string(a.Type),
		a.Quantity,
		available,
		string(a.Status),
		string(a.RequirementsStatus),
		a.Notes,
		decline,
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
