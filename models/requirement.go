package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequirementType separates countable resources from services
type RequirementType string

// Requirement types
const (
	RequirementPhysical RequirementType = "physical"
	RequirementService  RequirementType = "service"
)

// AllocationStatus is a department's decision on a single allocation
type AllocationStatus string

// Allocation statuses
const (
	AllocationPending          AllocationStatus = "pending"
	AllocationConfirmed        AllocationStatus = "confirmed"
	AllocationDeclined         AllocationStatus = "declined"
	AllocationPartiallyFulfill AllocationStatus = "partially_fulfill"
	AllocationInPreparation    AllocationStatus = "in_preparation"
)

// Valid reports whether s is a known allocation status
func (s AllocationStatus) Valid() bool {
	switch s {
	case AllocationPending, AllocationConfirmed, AllocationDeclined,
		AllocationPartiallyFulfill, AllocationInPreparation:
		return true
	}
	return false
}

// ReleaseState gates whether a tagged department may act on an allocation
type ReleaseState string

// Release states
const (
	RequirementsOnHold   ReleaseState = "on-hold"
	RequirementsReleased ReleaseState = "released"
)

// Reply author roles
const (
	ReplyRoleRequestor  = "requestor"
	ReplyRoleDepartment = "department"
)

// RequirementAllocation is one department's claim on one requirement for one event
type RequirementAllocation struct {
	ID                 string              `json:"id" bson:"id"`
	Name               string              `json:"name" bson:"name"`
	Type               RequirementType     `json:"type" bson:"type"`
	Quantity           int                 `json:"quantity" bson:"quantity"`
	TotalQuantity      *int                `json:"totalQuantity,omitempty" bson:"totalQuantity,omitempty"`
	IsAvailable        bool                `json:"isAvailable" bson:"isAvailable"`
	ResponsiblePerson  string              `json:"responsiblePerson,omitempty" bson:"responsiblePerson,omitempty"`
	Status             AllocationStatus    `json:"status" bson:"status"`
	Notes              string              `json:"notes,omitempty" bson:"notes,omitempty"`
	DeclineReason      *string             `json:"declineReason,omitempty" bson:"declineReason,omitempty"`
	RequirementsStatus ReleaseState        `json:"requirementsStatus,omitempty" bson:"requirementsStatus,omitempty"`
	Replies            []RequirementReply  `json:"replies,omitempty" bson:"replies,omitempty"`
	LastUpdated        *primitive.DateTime `json:"lastUpdated,omitempty" bson:"lastUpdated,omitempty"`
}

// RequirementReply is one message in the thread attached to an allocation
type RequirementReply struct {
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	UserName  string             `json:"userName" bson:"userName"`
	Role      string             `json:"role" bson:"role"`
	Message   string             `json:"message" bson:"message"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// UpdateRequirementStatusRequest holds a department's decision on an allocation
type UpdateRequirementStatusRequest struct {
	Status        AllocationStatus `json:"status" validate:"required"`
	Notes         *string          `json:"notes,omitempty"`
	DeclineReason *string          `json:"declineReason,omitempty"`
}

// RetagRequirementRequest moves an allocation to one or more departments
type RetagRequirementRequest struct {
	FromDepartment string   `json:"fromDepartment"`
	Departments    []string `json:"departments" validate:"required,min=1,dive,required"`
}

// ReplyRequest appends a note to an allocation thread
type ReplyRequest struct {
	Department string `json:"department" validate:"required"`
	Message    string `json:"message" validate:"required,max=2000"`
}
