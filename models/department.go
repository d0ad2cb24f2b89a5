package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Department holds the structure for the departments collection in mongo
type Department struct {
	ID           primitive.ObjectID      `json:"_id" bson:"_id"`
	Name         string                  `json:"name" bson:"name"`
	Description  string                  `json:"description" bson:"description"`
	Email        string                  `json:"email,omitempty" bson:"email,omitempty"`
	IsVisible    bool                    `json:"isVisible" bson:"isVisible"`
	Requirements []RequirementDefinition `json:"requirements" bson:"requirements"`
	CreatedAt    primitive.DateTime      `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime      `json:"updatedAt" bson:"updatedAt"`
}

// RequirementDefinition is a catalog entry a department offers to events
type RequirementDefinition struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id"`
	Text              string             `json:"text" bson:"text"`
	Type              RequirementType    `json:"type" bson:"type"`
	TotalQuantity     *int               `json:"totalQuantity,omitempty" bson:"totalQuantity,omitempty"`
	IsActive          bool               `json:"isActive" bson:"isActive"`
	IsAvailable       bool               `json:"isAvailable" bson:"isAvailable"`
	ResponsiblePerson string             `json:"responsiblePerson,omitempty" bson:"responsiblePerson,omitempty"`
	CreatedAt         primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// FindRequirement looks a catalog entry up by its text, which is how allocations reference it
func (d Department) FindRequirement(text string) (RequirementDefinition, bool) {
	for _, r := range d.Requirements {
		if r.Text == text {
			return r, true
		}
	}
	return RequirementDefinition{}, false
}

// CreateDepartmentRequest holds the structure for creating a department
type CreateDepartmentRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description"`
	Email       string `json:"email" validate:"omitempty,email"`
	IsVisible   *bool  `json:"isVisible,omitempty"`
}

// UpdateDepartmentRequest holds the editable department fields
type UpdateDepartmentRequest struct {
	Description *string `json:"description,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	IsVisible   *bool   `json:"isVisible,omitempty"`
}

// RequirementDefinitionRequest creates or replaces a catalog entry
type RequirementDefinitionRequest struct {
	Text              string          `json:"text" validate:"required,max=200"`
	Type              RequirementType `json:"type" validate:"required,oneof=physical service"`
	TotalQuantity     *int            `json:"totalQuantity,omitempty" validate:"omitempty,gte=0"`
	IsActive          *bool           `json:"isActive,omitempty"`
	IsAvailable       *bool           `json:"isAvailable,omitempty"`
	ResponsiblePerson string          `json:"responsiblePerson"`
}
