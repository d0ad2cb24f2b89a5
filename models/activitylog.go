package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityLog is an audit entry for an action performed through the api
type ActivityLog struct {
	ID          primitive.ObjectID  `json:"_id" bson:"_id"`
	UserID      *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"`
	Username    string              `json:"username" bson:"username"`
	Role        string              `json:"role" bson:"role"`
	Department  string              `json:"department,omitempty" bson:"department,omitempty"`
	Action      string              `json:"action" bson:"action"`
	Description string              `json:"description" bson:"description"`
	EventID     *primitive.ObjectID `json:"eventId,omitempty" bson:"eventId,omitempty"`
	EventTitle  string              `json:"eventTitle,omitempty" bson:"eventTitle,omitempty"`
	IPAddress   string              `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	CreatedAt   primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// PaginatedActivityLogs holds a page of activity logs
type PaginatedActivityLogs struct {
	Success    bool           `json:"success"`
	Logs       []ActivityLog  `json:"logs"`
	Pagination PaginationInfo `json:"pagination"`
}
