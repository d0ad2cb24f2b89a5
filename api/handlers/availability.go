package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// Availability exists for the resource and location availability ledgers
type Availability struct {
	DB  databases.AvailabilityDatabase
	DDB databases.DepartmentDatabase
}

func availabilityFilter(r *http.Request, keys map[string]string) (bson.M, error) {
	filter := bson.M{}
	q := r.URL.Query()
	for param, field := range keys {
		v := q.Get(param)
		if v == "" {
			continue
		}
		if field == "departmentId" {
			id, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				return nil, badRequest("invalid %s", param)
			}
			filter[field] = id
			continue
		}
		filter[field] = v
	}
	return filter, nil
}

// ResourcesHandler lists resource overrides filtered by ?departmentId=, ?department= and ?date=
func (a Availability) ResourcesHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := availabilityFilter(r, map[string]string{
		"departmentId": "departmentId",
		"department":   "departmentName",
		"date":         "date",
	})
	if err != nil {
		writeError(w, "invalid filter", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rows, err := a.DB.FindResources(ctx, filter)
	if err != nil {
		writeError(w, "failed to get resource availability", err)
		return
	}
	if rows == nil {
		rows = []models.ResourceAvailability{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: rows})
}

// UpsertResourceHandler sets the quantity of one catalog entry for one date
func (a Availability) UpsertResourceHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ResourceAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid resource availability", err)
		return
	}
	deptID, _ := primitive.ObjectIDFromHex(req.DepartmentID)
	reqID, _ := primitive.ObjectIDFromHex(req.RequirementID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dept, err := a.DDB.FindOne(ctx, bson.M{"_id": deptID})
	if err != nil {
		writeError(w, "failed to get department", err)
		return
	}
	if !canManage(caller(r), *dept) {
		writeError(w, "not allowed to manage this department", workflow.ErrForbidden)
		return
	}
	known := false
	for _, def := range dept.Requirements {
		if def.ID == reqID {
			known = true
			break
		}
	}
	if !known {
		writeError(w, "invalid resource availability", workflow.ErrUnknownRequirement)
		return
	}

	stored, err := a.DB.UpsertResource(ctx, &models.ResourceAvailability{
		DepartmentID:    deptID,
		DepartmentName:  dept.Name,
		RequirementID:   reqID,
		RequirementText: req.RequirementText,
		Date:            req.Date,
		IsAvailable:     req.IsAvailable,
		Quantity:        req.Quantity,
		MaxCapacity:     req.MaxCapacity,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(w, "failed to save resource availability", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Resource availability saved", Data: stored})
}

// DeleteResourceHandler removes one resource override
func (a Availability) DeleteResourceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "availability_id")
	if err != nil {
		writeError(w, "invalid availability id", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rows, err := a.DB.FindResources(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, "failed to get resource availability", err)
		return
	}
	if len(rows) == 0 {
		writeError(w, "resource availability not found", databases.ErrNotFound)
		return
	}
	u := caller(r)
	if !canManage(u, models.Department{Name: rows[0].DepartmentName}) {
		writeError(w, "not allowed to manage this department", workflow.ErrForbidden)
		return
	}
	if err := a.DB.DeleteResource(ctx, id); err != nil {
		writeError(w, "failed to delete resource availability", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Resource availability deleted"})
}

// LocationsHandler lists location overrides filtered by ?location= and ?date=
func (a Availability) LocationsHandler(w http.ResponseWriter, r *http.Request) {
	filter, _ := availabilityFilter(r, map[string]string{
		"location": "locationName",
		"date":     "date",
	})
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rows, err := a.DB.FindLocations(ctx, filter)
	if err != nil {
		writeError(w, "failed to get location availability", err)
		return
	}
	if rows == nil {
		rows = []models.LocationAvailability{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: rows})
}

// UpsertLocationHandler sets the capacity and status of a venue for one date
func (a Availability) UpsertLocationHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LocationAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid location availability", err)
		return
	}
	u := caller(r)
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stored, err := a.DB.UpsertLocation(ctx, &models.LocationAvailability{
		LocationName: req.LocationName,
		Date:         req.Date,
		Capacity:     req.Capacity,
		Status:       req.Status,
		Description:  req.Description,
		SetBy:        &u.ID,
	})
	if err != nil {
		writeError(w, "failed to save location availability", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Location availability saved", Data: stored})
}

// DeleteLocationHandler removes one location override
func (a Availability) DeleteLocationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "availability_id")
	if err != nil {
		writeError(w, "invalid availability id", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := a.DB.DeleteLocation(ctx, id); err != nil {
		writeError(w, "failed to delete location availability", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Location availability deleted"})
}
