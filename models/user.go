package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleDepartment = "department"
	RoleRequestor  = "requestor"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID         primitive.ObjectID  `json:"_id" bson:"_id"`
	Username   string              `json:"username" bson:"username"`
	Email      string              `json:"email" bson:"email"`
	Name       string              `json:"name" bson:"name"`
	Password   string              `json:"-" bson:"password"`
	Role       string              `json:"role" bson:"role"`
	Department string              `json:"department,omitempty" bson:"department,omitempty"`
	Status     string              `json:"status" bson:"status"`
	LastLogin  *primitive.DateTime `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt  primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  primitive.DateTime  `json:"updatedAt" bson:"updatedAt"`
}

// IsElevated reports whether the user may perform admin-only transitions
func (u User) IsElevated() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// DisplayName returns the name shown on replies and notifications
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// LoginRequest holds the credentials posted to the login endpoint
type LoginRequest struct {
	Email    string `json:"email" validate:"required_without=Username"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse holds the issued token and the logged in user
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// CreateUserRequest holds the structure for creating a user
type CreateUserRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=60"`
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       string `json:"role" validate:"required,oneof=superadmin admin department requestor"`
	Department string `json:"department" validate:"required_if=Role department"`
}
