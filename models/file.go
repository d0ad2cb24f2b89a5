package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File storage categories
const (
	FileCategoryEvents          = "events"
	FileCategoryGovernmentForms = "government-forms"
	FileCategoryEventReports    = "event-reports"
	FileCategoryMessages        = "messages"
)

// FileAttachment is the metadata of an uploaded file kept on local disk
type FileAttachment struct {
	Filename     string             `json:"filename" bson:"filename"`
	OriginalName string             `json:"originalName" bson:"originalName"`
	MimeType     string             `json:"mimetype" bson:"mimetype"`
	Size         int64              `json:"size" bson:"size"`
	Path         string             `json:"path" bson:"path"`
	UploadedAt   primitive.DateTime `json:"uploadedAt" bson:"uploadedAt"`
}
