package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/storage"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

const (
	maxMultipartMemory = 32 << 20
	updateAttempts     = 3
)

// Event exists for event handlers
type Event struct {
	DB    databases.EventDatabase
	DDB   databases.DepartmentDatabase
	ADB   databases.AvailabilityDatabase
	MDB   databases.MessageDatabase
	Files *storage.Local
	Hooks *workflow.Hooks
	Loc   *time.Location

	now func() time.Time
}

func caller(r *http.Request) models.User {
	u, _ := api.UserFromContext(r.Context())
	if u == nil {
		return models.User{}
	}
	return *u
}

// hookContext outlives the request so hooks finish after the client goes away
func hookContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func canView(ev models.Event, u models.User) bool {
	return u.IsElevated() || ev.CreatedBy == u.ID || (u.Department != "" && ev.IsTagged(u.Department))
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// decodeEventBody reads either a JSON body or a multipart form whose `data` field
// holds the JSON document
func decodeEventBody(r *http.Request, v interface{}) error {
	if !isMultipart(r) {
		return decodeJSON(r, v)
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return badRequest("failed to parse multipart form")
	}
	data := r.FormValue("data")
	if data == "" {
		return badRequest("missing data field")
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return badRequest("failed to decode data field: %v", err)
	}
	return validateStruct(v)
}

func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// saveFiles stores every part of field under category, removing what was already
// written when one part fails
func (e Event) saveFiles(r *http.Request, field, category string) ([]models.FileAttachment, error) {
	var saved []models.FileAttachment
	for _, fh := range formFiles(r, field) {
		a, err := e.Files.Save(category, fh)
		if err != nil {
			e.Files.RemoveAll(saved...)
			return nil, err
		}
		saved = append(saved, a)
	}
	return saved, nil
}

// catalog reads every department and the overrides for dates in one pass
func (e Event) catalog(ctx context.Context, dates []string) (*workflow.CatalogSnapshot, error) {
	depts, err := e.DDB.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var overrides []models.ResourceAvailability
	if len(dates) > 0 {
		overrides, err = e.ADB.FindResources(ctx, bson.M{"date": bson.M{"$in": dates}})
		if err != nil {
			return nil, err
		}
	}
	return workflow.NewCatalogSnapshot(depts, overrides), nil
}

// refresh re-derives allocation quantities against the current catalog
func (e Event) refresh(ctx context.Context, events []models.Event) error {
	seen := map[string]bool{}
	var dates []string
	for _, ev := range events {
		if ev.StartDate != "" && !seen[ev.StartDate] {
			seen[ev.StartDate] = true
			dates = append(dates, ev.StartDate)
		}
	}
	snap, err := e.catalog(ctx, dates)
	if err != nil {
		return err
	}
	for i := range events {
		workflow.RefreshQuantities(&events[i], snap)
	}
	return nil
}

// ensureCustomLocations records every venue outside the predefined list in the
// location ledger for each event date. Existing rows are left untouched.
func (e Event) ensureCustomLocations(ctx context.Context, ev models.Event) {
	owner := ev.CreatedBy
	for _, loc := range ev.AllLocations() {
		if models.IsPredefinedLocation(loc) {
			continue
		}
		for _, date := range ev.EventDates() {
			created, err := e.ADB.EnsureLocation(ctx, &models.LocationAvailability{
				LocationName: loc,
				Date:         date,
				Capacity:     1,
				Status:       models.LocationAvailable,
				Description:  "Custom location added for " + ev.EventTitle,
				SetBy:        &owner,
			})
			if err != nil {
				zap.S().Warnw("failed to record custom location", "eventId", ev.ID.Hex(), "location", loc, "date", date, "error", err)
				continue
			}
			if created {
				zap.S().Infow("custom location recorded", "eventId", ev.ID.Hex(), "location", loc, "date", date)
			}
		}
	}
}

// update runs a versioned read-modify-write on the event and then the hooks for
// the committed change. It writes the error response itself and returns nil on failure.
func (e Event) update(w http.ResponseWriter, r *http.Request, message string, fn func(ev *models.Event) (workflow.Change, error)) *models.Event {
	id, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, "invalid event id", err)
		return nil
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var change workflow.Change
	stored, err := databases.UpdateWithRetry(ctx, e.DB, id, updateAttempts, func(ev *models.Event) error {
		c, err := fn(ev)
		if err != nil {
			return err
		}
		change = c
		return nil
	})
	if err != nil {
		writeError(w, message, err)
		return nil
	}

	change.Event = *stored
	e.Hooks.Run(hookContext(r), change)
	return stored
}

func (e Event) findVisible(w http.ResponseWriter, r *http.Request) *models.Event {
	id, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, "invalid event id", err)
		return nil
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ev, err := e.DB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, "failed to get event", err)
		return nil
	}
	if !canView(*ev, caller(r)) {
		writeError(w, "not allowed to view this event", workflow.ErrForbidden)
		return nil
	}
	return ev
}

// CreateEventHandler stores a new event request with its allocations and uploads
func (e Event) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)

	var req models.CreateEventRequest
	if err := decodeEventBody(r, &req); err != nil {
		writeError(w, "invalid event", err)
		return
	}
	if err := workflow.CheckSchedule(req.StartDate, req.EndDate, req.DateTimeSlots); err != nil {
		writeError(w, "invalid event", badRequest("%v", err))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	snap, err := e.catalog(ctx, []string{req.StartDate})
	if err != nil {
		writeError(w, "failed to load department catalog", err)
		return
	}
	allocations, err := workflow.BuildAllocations(req.DepartmentRequirements, snap, req.StartDate)
	if err != nil {
		writeError(w, "invalid department requirements", err)
		return
	}

	attachments, err := e.saveFiles(r, "attachments", models.FileCategoryEvents)
	if err != nil {
		writeError(w, "failed to store attachments", err)
		return
	}
	forms, err := e.saveFiles(r, "governmentForms", models.FileCategoryGovernmentForms)
	if err != nil {
		e.Files.RemoveAll(attachments...)
		writeError(w, "failed to store government forms", err)
		return
	}

	now := e.now()
	ts := primitive.NewDateTimeFromTime(now)
	ev := &models.Event{
		EventTitle:             strings.TrimSpace(req.EventTitle),
		RequestorName:          req.RequestorName,
		RequestorDepartment:    req.RequestorDepartment,
		Location:               req.Location,
		Locations:              req.Locations,
		Participants:           req.Participants,
		VIP:                    req.VIP,
		VVIP:                   req.VVIP,
		WithoutGov:             req.WithoutGov,
		MultipleLocations:      req.MultipleLocations,
		Description:            req.Description,
		StartDate:              req.StartDate,
		StartTime:              req.StartTime,
		EndDate:                req.EndDate,
		EndTime:                req.EndTime,
		DateTimeSlots:          req.DateTimeSlots,
		ContactNumber:          req.ContactNumber,
		ContactEmail:           req.ContactEmail,
		Attachments:            attachments,
		GovernmentForms:        forms,
		DepartmentRequirements: allocations,
		Status:                 models.EventStatusSubmitted,
		CreatedBy:              u.ID,
		CreatedAt:              ts,
		UpdatedAt:              ts,
	}
	if ev.RequestorDepartment == "" {
		ev.RequestorDepartment = u.Department
	}
	if ev.Location == "" && len(ev.Locations) > 0 {
		ev.Location = ev.Locations[0]
	}
	if ev.Attachments == nil {
		ev.Attachments = []models.FileAttachment{}
	}
	if req.Draft {
		ev.Status = models.EventStatusDraft
	} else {
		ev.SubmittedAt = &ts
	}

	if err := e.DB.InsertOne(ctx, ev); err != nil {
		e.Files.RemoveAll(append(attachments, forms...)...)
		writeError(w, "failed to create event", err)
		return
	}

	if ev.Status == models.EventStatusSubmitted {
		e.ensureCustomLocations(ctx, *ev)
		e.Hooks.Run(hookContext(r), workflow.Change{
			Kind:           workflow.ChangeSubmitted,
			Event:          *ev,
			PreviousStatus: models.EventStatusDraft,
			Actor:          &u,
			OccurredAt:     now,
		})
	}

	zap.S().Infow("event created", "eventId", ev.ID.Hex(), "userId", u.ID.Hex(), "status", ev.Status)
	writeJSON(w, http.StatusCreated, models.SuccessResponse{Success: true, Message: "Event created", Data: ev})
}

// SubmitEventHandler moves the caller's draft to submitted
func (e Event) SubmitEventHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	stored := e.update(w, r, "failed to submit event", func(ev *models.Event) (workflow.Change, error) {
		return workflow.Submit(ev, u, e.now())
	})
	if stored == nil {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	e.ensureCustomLocations(ctx, *stored)
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Event submitted", Data: stored})
}

func (e Event) list(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	events, err := e.DB.Find(ctx, filter)
	if err != nil {
		writeError(w, "failed to get events", err)
		return
	}
	if err := e.refresh(ctx, events); err != nil {
		writeError(w, "failed to refresh requirement quantities", err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: events})
}

// MyEventsHandler lists the events the caller created
func (e Event) MyEventsHandler(w http.ResponseWriter, r *http.Request) {
	e.list(w, r, bson.M{"createdBy": caller(r).ID})
}

// TaggedEventsHandler lists the submitted events that hold an allocation for the
// caller's department
func (e Event) TaggedEventsHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	if u.Department == "" {
		writeError(w, "user has no department", workflow.ErrForbidden)
		return
	}
	e.list(w, r, bson.M{
		"taggedDepartments": u.Department,
		"status":            bson.M{"$ne": models.EventStatusDraft},
	})
}

// AllEventsHandler lists every event, optionally filtered by status
func (e Event) AllEventsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.EventStatus(s)
		if !status.Valid() {
			writeError(w, "invalid status", badRequest("unknown status %q", s))
			return
		}
		filter["status"] = status
	}
	e.list(w, r, filter)
}

// EventByIDHandler returns one event the caller may view
func (e Event) EventByIDHandler(w http.ResponseWriter, r *http.Request) {
	ev := e.findVisible(w, r)
	if ev == nil {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	events := []models.Event{*ev}
	if err := e.refresh(ctx, events); err != nil {
		writeError(w, "failed to refresh requirement quantities", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: events[0]})
}

// UpdateEventHandler edits a submitted event and appends new attachments
func (e Event) UpdateEventHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)

	var req models.UpdateEventDetailsRequest
	if err := decodeEventBody(r, &req); err != nil {
		writeError(w, "invalid event update", err)
		return
	}
	attachments, err := e.saveFiles(r, "attachments", models.FileCategoryEvents)
	if err != nil {
		writeError(w, "failed to store attachments", err)
		return
	}

	stored := e.update(w, r, "failed to update event", func(ev *models.Event) (workflow.Change, error) {
		return workflow.UpdateDetails(ev, u, req, attachments, e.now())
	})
	if stored == nil {
		e.Files.RemoveAll(attachments...)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Event updated", Data: stored})
}

// DeleteEventHandler removes an event, its conversations and its files
func (e Event) DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	id, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, "invalid event id", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ev, err := e.DB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, "failed to get event", err)
		return
	}
	if ev.CreatedBy != u.ID && !u.IsElevated() {
		writeError(w, "not allowed to delete this event", workflow.ErrForbidden)
		return
	}
	if err := e.DB.DeleteOne(ctx, id); err != nil {
		writeError(w, "failed to delete event", err)
		return
	}
	files := append(append([]models.FileAttachment{}, ev.Attachments...), ev.GovernmentForms...)
	for _, f := range ev.EventReports {
		if f != nil {
			files = append(files, *f)
		}
	}
	msgs, err := e.MDB.FindConversation(ctx, id, "")
	if err != nil {
		zap.S().Warnw("failed to load event messages", "eventId", id.Hex(), "error", err)
	}
	for _, m := range msgs {
		if m.Attachment != nil {
			files = append(files, *m.Attachment)
		}
	}
	if _, err := e.MDB.DeleteForEvent(ctx, id); err != nil {
		zap.S().Warnw("failed to delete event messages", "eventId", id.Hex(), "error", err)
	}
	e.Files.RemoveAll(files...)

	e.Hooks.Run(hookContext(r), workflow.Change{
		Kind:           workflow.ChangeDeleted,
		Event:          *ev,
		PreviousStatus: ev.Status,
		Actor:          &u,
		OccurredAt:     e.now(),
	})
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Event deleted"})
}
