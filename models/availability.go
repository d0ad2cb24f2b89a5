package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location availability states
const (
	LocationAvailable   = "available"
	LocationUnavailable = "unavailable"
)

// ResourceAvailability overrides a catalog entry's quantity for one date
type ResourceAvailability struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id"`
	DepartmentID    primitive.ObjectID `json:"departmentId" bson:"departmentId"`
	DepartmentName  string             `json:"departmentName" bson:"departmentName"`
	RequirementID   primitive.ObjectID `json:"requirementId" bson:"requirementId"`
	RequirementText string             `json:"requirementText" bson:"requirementText"`
	Date            string             `json:"date" bson:"date"`
	IsAvailable     bool               `json:"isAvailable" bson:"isAvailable"`
	Quantity        int                `json:"quantity" bson:"quantity"`
	MaxCapacity     int                `json:"maxCapacity" bson:"maxCapacity"`
	Notes           string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt       primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// LocationAvailability overrides a venue's capacity and status for one date
type LocationAvailability struct {
	ID           primitive.ObjectID  `json:"_id" bson:"_id"`
	LocationName string              `json:"locationName" bson:"locationName"`
	Date         string              `json:"date" bson:"date"`
	Capacity     int                 `json:"capacity" bson:"capacity"`
	Status       string              `json:"status" bson:"status"`
	Description  string              `json:"description,omitempty" bson:"description,omitempty"`
	SetBy        *primitive.ObjectID `json:"setBy,omitempty" bson:"setBy,omitempty"`
	CreatedAt    primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}

// ResourceAvailabilityRequest upserts a resource override
type ResourceAvailabilityRequest struct {
	DepartmentID    string `json:"departmentId" validate:"required,len=24,hexadecimal"`
	RequirementID   string `json:"requirementId" validate:"required,len=24,hexadecimal"`
	RequirementText string `json:"requirementText" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	IsAvailable     bool   `json:"isAvailable"`
	Quantity        int    `json:"quantity" validate:"gte=0"`
	MaxCapacity     int    `json:"maxCapacity" validate:"gte=0"`
	Notes           string `json:"notes"`
}

// LocationAvailabilityRequest upserts a location override
type LocationAvailabilityRequest struct {
	LocationName string `json:"locationName" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Capacity     int    `json:"capacity" validate:"gte=0"`
	Status       string `json:"status" validate:"required,oneof=available unavailable"`
	Description  string `json:"description"`
}

// CleanupResult reports how many override rows a cleanup pass removed
type CleanupResult struct {
	ResourceDeleted int64  `json:"resourceDeleted"`
	LocationDeleted int64  `json:"locationDeleted"`
	Before          string `json:"before"`
}
