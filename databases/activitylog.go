package databases

//go generate: mockery --name ActivityLogDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const activityLogName = "activitylogs"

// ActivityLogDatabase contains the methods to use with the activity log database
type ActivityLogDatabase interface {
	InsertOne(ctx context.Context, l *models.ActivityLog) error
	Find(ctx context.Context, filter interface{}, limit, page int) ([]models.ActivityLog, error)
	Count(ctx context.Context, filter interface{}) (int64, error)
}

type activityLogDatabase struct {
	db DatabaseHelper
}

// NewActivityLogDatabase initializes a new instance of activity log database with the provided db connection
func NewActivityLogDatabase(db DatabaseHelper) ActivityLogDatabase {
	return &activityLogDatabase{
		db: db,
	}
}

func (c *activityLogDatabase) InsertOne(ctx context.Context, l *models.ActivityLog) error {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	_, err := c.db.Collection(activityLogName).InsertOne(ctx, l)
	return err
}

func (c *activityLogDatabase) Find(ctx context.Context, filter interface{}, limit, page int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	opts := newMongoPaginate(limit, page).getPaginatedOpts()
	opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := c.db.Collection(activityLogName).Find(ctx, filter, opts).Decode(&logs)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *activityLogDatabase) Count(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(activityLogName).CountDocuments(ctx, filter)
}

// ActivityLogIndexes orders the audit trail
func ActivityLogIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
}
