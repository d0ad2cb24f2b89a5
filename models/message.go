package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one entry of an event conversation between a requestor and a department
type Message struct {
	ID         primitive.ObjectID  `json:"_id" bson:"_id"`
	EventID    primitive.ObjectID  `json:"eventId" bson:"eventId"`
	Department string              `json:"department" bson:"department"`
	SenderID   primitive.ObjectID  `json:"senderId" bson:"senderId"`
	SenderName string              `json:"senderName" bson:"senderName"`
	SenderRole string              `json:"senderRole" bson:"senderRole"`
	Content    string              `json:"content" bson:"content"`
	Attachment *FileAttachment     `json:"attachment,omitempty" bson:"attachment,omitempty"`
	IsRead     bool                `json:"isRead" bson:"isRead"`
	ReadAt     *primitive.DateTime `json:"readAt,omitempty" bson:"readAt,omitempty"`
	CreatedAt  primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// SendMessageRequest holds a new conversation entry
type SendMessageRequest struct {
	Department string `json:"department" validate:"required"`
	Content    string `json:"content" validate:"required_without=HasAttachment,max=4000"`
	// HasAttachment is set by the handler when a file part is present
	HasAttachment bool `json:"-"`
}
