package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/api"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// Department exists for department catalog handlers
type Department struct {
	DB databases.DepartmentDatabase
}

// DepartmentsHandler lists departments sorted by name. ?visible=true keeps only
// the departments shown to requestors.
func (d Department) DepartmentsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if r.URL.Query().Get("visible") == "true" {
		filter["isVisible"] = true
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	depts, err := d.DB.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		writeError(w, "failed to get departments", err)
		return
	}
	if depts == nil {
		depts = []models.Department{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: depts})
}

func (d Department) find(w http.ResponseWriter, r *http.Request) *models.Department {
	id, err := pathID(r, "department_id")
	if err != nil {
		writeError(w, "invalid department id", err)
		return nil
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	dept, err := d.DB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, "failed to get department", err)
		return nil
	}
	return dept
}

// DepartmentByIDHandler returns one department with its catalog
func (d Department) DepartmentByIDHandler(w http.ResponseWriter, r *http.Request) {
	dept := d.find(w, r)
	if dept == nil {
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Data: dept})
}

// CreateDepartmentHandler adds a department with an empty catalog
func (d Department) CreateDepartmentHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid department", err)
		return
	}
	now := primitive.NewDateTimeFromTime(time.Now())
	dept := &models.Department{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Email:       req.Email,
		IsVisible:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsVisible != nil {
		dept.IsVisible = *req.IsVisible
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := d.DB.InsertOne(ctx, dept); err != nil {
		writeError(w, "department with this name already exists", err)
		return
	}
	zap.S().Infow("department created", "department", dept.Name)
	writeJSON(w, http.StatusCreated, models.SuccessResponse{Success: true, Message: "Department created", Data: dept})
}

// UpdateDepartmentHandler edits the description, email and visibility of a department
func (d Department) UpdateDepartmentHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid department update", err)
		return
	}
	id, err := pathID(r, "department_id")
	if err != nil {
		writeError(w, "invalid department id", err)
		return
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.IsVisible != nil {
		set["isVisible"] = *req.IsVisible
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := d.DB.UpdateOne(ctx, id, bson.M{"$set": set}); err != nil {
		writeError(w, "failed to update department", err)
		return
	}
	dept, err := d.DB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeError(w, "failed to get department", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Department updated", Data: dept})
}

// DeleteDepartmentHandler removes a department. Events keep the allocations they
// already hold.
func (d Department) DeleteDepartmentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "department_id")
	if err != nil {
		writeError(w, "invalid department id", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := d.DB.DeleteOne(ctx, id); err != nil {
		writeError(w, "failed to delete department", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Department deleted"})
}

// canManage allows elevated users and members of the department itself
func canManage(u models.User, dept models.Department) bool {
	return u.IsElevated() || (u.Role == models.RoleDepartment && u.Department == dept.Name)
}

// editCatalog loads the department, lets fn change its requirement list and
// writes the list back
func (d Department) editCatalog(w http.ResponseWriter, r *http.Request, fn func(reqs []models.RequirementDefinition) ([]models.RequirementDefinition, error)) *models.Department {
	dept := d.find(w, r)
	if dept == nil {
		return nil
	}
	if !canManage(caller(r), *dept) {
		writeError(w, "not allowed to manage this department", workflow.ErrForbidden)
		return nil
	}
	reqs, err := fn(append([]models.RequirementDefinition(nil), dept.Requirements...))
	if err != nil {
		writeError(w, "failed to update requirements", err)
		return nil
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := d.DB.UpdateOne(ctx, dept.ID, bson.M{"$set": bson.M{"requirements": reqs, "updatedAt": now}}); err != nil {
		writeError(w, "failed to update requirements", err)
		return nil
	}
	dept.Requirements = reqs
	dept.UpdatedAt = now
	return dept
}

func applyDefinition(def *models.RequirementDefinition, req models.RequirementDefinitionRequest) {
	def.Text = strings.TrimSpace(req.Text)
	def.Type = req.Type
	def.ResponsiblePerson = req.ResponsiblePerson
	def.TotalQuantity = nil
	if req.Type == models.RequirementPhysical && req.TotalQuantity != nil {
		q := *req.TotalQuantity
		def.TotalQuantity = &q
	}
	if req.IsActive != nil {
		def.IsActive = *req.IsActive
	}
	if req.IsAvailable != nil {
		def.IsAvailable = *req.IsAvailable
	}
}

func duplicateText(reqs []models.RequirementDefinition, text string, except primitive.ObjectID) bool {
	for _, r := range reqs {
		if r.ID != except && strings.EqualFold(r.Text, text) {
			return true
		}
	}
	return false
}

// AddRequirementHandler appends a catalog entry
func (d Department) AddRequirementHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RequirementDefinitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid requirement", err)
		return
	}
	dept := d.editCatalog(w, r, func(reqs []models.RequirementDefinition) ([]models.RequirementDefinition, error) {
		if duplicateText(reqs, strings.TrimSpace(req.Text), primitive.NilObjectID) {
			return nil, badRequest("requirement %q already exists", req.Text)
		}
		def := models.RequirementDefinition{
			ID:          primitive.NewObjectID(),
			IsActive:    true,
			IsAvailable: true,
			CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
		}
		applyDefinition(&def, req)
		return append(reqs, def), nil
	})
	if dept == nil {
		return
	}
	writeJSON(w, http.StatusCreated, models.SuccessResponse{Success: true, Message: "Requirement added", Data: dept})
}

// UpdateRequirementHandler replaces one catalog entry
func (d Department) UpdateRequirementHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RequirementDefinitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "invalid requirement", err)
		return
	}
	rid, err := pathID(r, "requirement_id")
	if err != nil {
		writeError(w, "invalid requirement id", err)
		return
	}
	dept := d.editCatalog(w, r, func(reqs []models.RequirementDefinition) ([]models.RequirementDefinition, error) {
		if duplicateText(reqs, strings.TrimSpace(req.Text), rid) {
			return nil, badRequest("requirement %q already exists", req.Text)
		}
		for i := range reqs {
			if reqs[i].ID == rid {
				applyDefinition(&reqs[i], req)
				return reqs, nil
			}
		}
		return nil, databases.ErrNotFound
	})
	if dept == nil {
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Requirement updated", Data: dept})
}

// DeleteRequirementHandler removes one catalog entry
func (d Department) DeleteRequirementHandler(w http.ResponseWriter, r *http.Request) {
	rid, err := pathID(r, "requirement_id")
	if err != nil {
		writeError(w, "invalid requirement id", err)
		return
	}
	dept := d.editCatalog(w, r, func(reqs []models.RequirementDefinition) ([]models.RequirementDefinition, error) {
		for i := range reqs {
			if reqs[i].ID == rid {
				return append(reqs[:i], reqs[i+1:]...), nil
			}
		}
		return nil, databases.ErrNotFound
	})
	if dept == nil {
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Requirement deleted", Data: dept})
}
