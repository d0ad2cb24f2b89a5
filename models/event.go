package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventStatus is the top level lifecycle state of an event request
type EventStatus string

// Event statuses. The set is the union of every vocabulary the clients send.
const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusSubmitted EventStatus = "submitted"
	EventStatusApproved  EventStatus = "approved"
	EventStatusRejected  EventStatus = "rejected"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

// Valid reports whether s is a known event status
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusSubmitted, EventStatusApproved,
		EventStatusRejected, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// ReportsStatus is the aggregate state of the post-event report slots
type ReportsStatus string

// Report aggregate states
const (
	ReportsPending   ReportsStatus = "pending"
	ReportsCompleted ReportsStatus = "completed"
)

// Report slot names
const (
	ReportCompletion   = "completionReport"
	ReportPostActivity = "postActivityReport"
	ReportAssessment   = "assessmentReport"
	ReportFeedback     = "feedbackForm"
)

// ReportSlots lists every report slot in display order
var ReportSlots = []string{ReportCompletion, ReportPostActivity, ReportAssessment, ReportFeedback}

// PredefinedLocations are the venues managed through the location availability ledger.
// Any other location submitted with an event is treated as a custom venue.
var PredefinedLocations = []string{
	"Bataan People's Center",
	"Capitol Quadrangle",
	"Provincial Training Center",
	"Bunker Conference Room",
	"Diwa ng Bataan Hall",
	"Governor's Lounge",
	"Bataan Tourism Center",
	"Mini Theater",
}

// IsPredefinedLocation reports whether name is one of the managed venues
func IsPredefinedLocation(name string) bool {
	for _, l := range PredefinedLocations {
		if l == name {
			return true
		}
	}
	return false
}

// Event holds the structure for the events collection in mongo
type Event struct {
	ID                     primitive.ObjectID         `json:"_id" bson:"_id"`
	Version                int64                      `json:"version" bson:"version"`
	EventTitle             string                     `json:"eventTitle" bson:"eventTitle"`
	RequestorName          string                     `json:"requestor" bson:"requestor"`
	RequestorDepartment    string                     `json:"requestorDepartment" bson:"requestorDepartment"`
	Location               string                     `json:"location" bson:"location"`
	Locations              []string                   `json:"locations,omitempty" bson:"locations,omitempty"`
	Participants           int                        `json:"participants" bson:"participants"`
	VIP                    int                        `json:"vip" bson:"vip"`
	VVIP                   int                        `json:"vvip" bson:"vvip"`
	WithoutGov             bool                       `json:"withoutGov" bson:"withoutGov"`
	MultipleLocations      bool                       `json:"multipleLocations" bson:"multipleLocations"`
	Description            string                     `json:"description" bson:"description"`
	StartDate              string                     `json:"startDate" bson:"startDate"`
	StartTime              string                     `json:"startTime" bson:"startTime"`
	EndDate                string                     `json:"endDate" bson:"endDate"`
	EndTime                string                     `json:"endTime" bson:"endTime"`
	DateTimeSlots          []DateTimeSlot             `json:"dateTimeSlots,omitempty" bson:"dateTimeSlots,omitempty"`
	ContactNumber          string                     `json:"contactNumber" bson:"contactNumber"`
	ContactEmail           string                     `json:"contactEmail" bson:"contactEmail"`
	Attachments            []FileAttachment           `json:"attachments" bson:"attachments"`
	GovernmentForms        []FileAttachment           `json:"governmentForms,omitempty" bson:"governmentForms,omitempty"`
	TaggedDepartments      []string                   `json:"taggedDepartments" bson:"taggedDepartments"`
	DepartmentRequirements []DepartmentAllocation     `json:"departmentRequirements" bson:"departmentRequirements"`
	Status                 EventStatus                `json:"status" bson:"status"`
	Reason                 string                     `json:"reason,omitempty" bson:"reason,omitempty"`
	EventReports           map[string]*FileAttachment `json:"eventReports,omitempty" bson:"eventReports,omitempty"`
	ReportsStatus          ReportsStatus              `json:"reportsStatus,omitempty" bson:"reportsStatus,omitempty"`
	CreatedBy              primitive.ObjectID         `json:"createdBy" bson:"createdBy"`
	SubmittedAt            *primitive.DateTime        `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
	CompletedAt            *primitive.DateTime        `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	CreatedAt              primitive.DateTime         `json:"createdAt" bson:"createdAt"`
	UpdatedAt              primitive.DateTime         `json:"updatedAt" bson:"updatedAt"`
}

// DateTimeSlot is one day of a multi-day event
type DateTimeSlot struct {
	StartDate string `json:"startDate" bson:"startDate" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" bson:"startTime" validate:"required,datetime=15:04"`
	EndDate   string `json:"endDate" bson:"endDate" validate:"required,datetime=2006-01-02"`
	EndTime   string `json:"endTime" bson:"endTime" validate:"required,datetime=15:04"`
}

// DepartmentAllocation is one department's ordered list of requirement allocations
type DepartmentAllocation struct {
	Department   string                  `json:"department" bson:"department"`
	Requirements []RequirementAllocation `json:"requirements" bson:"requirements"`
}

// AllLocations returns the event locations, falling back to the single location field
func (e Event) AllLocations() []string {
	if len(e.Locations) > 0 {
		return e.Locations
	}
	if e.Location == "" {
		return nil
	}
	return []string{e.Location}
}

// EventDates returns every start date the event occupies, main schedule first
func (e Event) EventDates() []string {
	seen := map[string]bool{}
	var dates []string
	add := func(d string) {
		if d != "" && !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	add(e.StartDate)
	for _, s := range e.DateTimeSlots {
		add(s.StartDate)
	}
	return dates
}

// RequirementsFor returns the allocation list for a department, or nil
func (e *Event) RequirementsFor(department string) []RequirementAllocation {
	for _, d := range e.DepartmentRequirements {
		if d.Department == department {
			return d.Requirements
		}
	}
	return nil
}

// IsTagged reports whether the department currently holds an allocation on the event
func (e *Event) IsTagged(department string) bool {
	for _, d := range e.TaggedDepartments {
		if d == department {
			return true
		}
	}
	return false
}

// SyncTaggedDepartments drops empty allocation lists and rebuilds TaggedDepartments
// from what remains. Every write of an event goes through it.
func (e *Event) SyncTaggedDepartments() {
	kept := e.DepartmentRequirements[:0]
	tagged := make([]string, 0, len(e.DepartmentRequirements))
	for _, d := range e.DepartmentRequirements {
		if len(d.Requirements) == 0 {
			continue
		}
		kept = append(kept, d)
		tagged = append(tagged, d.Department)
	}
	e.DepartmentRequirements = kept
	e.TaggedDepartments = tagged
}

// CreateEventRequest holds the structure for submitting a new event
type CreateEventRequest struct {
	EventTitle             string                     `json:"eventTitle" validate:"required,max=300"`
	RequestorName          string                     `json:"requestor" validate:"required"`
	RequestorDepartment    string                     `json:"requestorDepartment"`
	Location               string                     `json:"location" validate:"required_without=Locations"`
	Locations              []string                   `json:"locations"`
	Participants           int                        `json:"participants" validate:"gte=0"`
	VIP                    int                        `json:"vip" validate:"gte=0"`
	VVIP                   int                        `json:"vvip" validate:"gte=0"`
	WithoutGov             bool                       `json:"withoutGov"`
	MultipleLocations      bool                       `json:"multipleLocations"`
	Description            string                     `json:"description"`
	StartDate              string                     `json:"startDate" validate:"required,datetime=2006-01-02"`
	StartTime              string                     `json:"startTime" validate:"required,datetime=15:04"`
	EndDate                string                     `json:"endDate" validate:"required,datetime=2006-01-02"`
	EndTime                string                     `json:"endTime" validate:"required,datetime=15:04"`
	DateTimeSlots          []DateTimeSlot             `json:"dateTimeSlots" validate:"dive"`
	ContactNumber          string                     `json:"contactNumber" validate:"required"`
	ContactEmail           string                     `json:"contactEmail" validate:"required,email"`
	DepartmentRequirements []DepartmentRequirementsIn `json:"departmentRequirements" validate:"dive"`
	Draft                  bool                       `json:"draft"`
}

// DepartmentRequirementsIn is the requested allocation list for one department
type DepartmentRequirementsIn struct {
	Department   string          `json:"department" validate:"required"`
	Requirements []RequirementIn `json:"requirements" validate:"dive"`
}

// RequirementIn is one requested requirement against a department's catalog
type RequirementIn struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Notes    string `json:"notes"`
}

// UpdateEventDetailsRequest holds the editable fields of a submitted event
type UpdateEventDetailsRequest struct {
	EventTitle    *string `json:"eventTitle,omitempty" validate:"omitempty,min=1,max=300"`
	RequestorName *string `json:"requestor,omitempty" validate:"omitempty,min=1"`
	ContactNumber *string `json:"contactNumber,omitempty" validate:"omitempty,min=1"`
	ContactEmail  *string `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Participants  *int    `json:"participants,omitempty" validate:"omitempty,gte=0"`
	VIP           *int    `json:"vip,omitempty" validate:"omitempty,gte=0"`
	VVIP          *int    `json:"vvip,omitempty" validate:"omitempty,gte=0"`
	Description   *string `json:"description,omitempty"`
}

// UpdateEventStatusRequest holds an admin status transition
type UpdateEventStatusRequest struct {
	Status EventStatus `json:"status" validate:"required"`
	Reason string      `json:"reason"`
}
