package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationStatus = "status"
)

// Notification is an append-only record of a change addressed to one user
type Notification struct {
	ID              primitive.ObjectID  `json:"_id" bson:"_id"`
	UserID          primitive.ObjectID  `json:"userId" bson:"userId"`
	Type            string              `json:"type" bson:"type"`
	Title           string              `json:"title" bson:"title"`
	Message         string              `json:"message" bson:"message"`
	EventID         primitive.ObjectID  `json:"eventId" bson:"eventId"`
	EventTitle      string              `json:"eventTitle" bson:"eventTitle"`
	RequirementID   string              `json:"requirementId,omitempty" bson:"requirementId,omitempty"`
	RequirementName string              `json:"requirementName,omitempty" bson:"requirementName,omitempty"`
	Department      string              `json:"department,omitempty" bson:"department,omitempty"`
	Status          string              `json:"status,omitempty" bson:"status,omitempty"`
	IsRead          bool                `json:"isRead" bson:"isRead"`
	ReadAt          *primitive.DateTime `json:"readAt,omitempty" bson:"readAt,omitempty"`
	CreatedAt       primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// NotificationsResponse is the notification feed of the caller
type NotificationsResponse struct {
	Success       bool           `json:"success"`
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}
