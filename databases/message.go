package databases

//go generate: mockery --name MessageDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const messageName = "messages"

// MessageDatabase contains the methods to use with the message database
type MessageDatabase interface {
	InsertOne(ctx context.Context, m *models.Message) error
	FindConversation(ctx context.Context, eventID primitive.ObjectID, department string) ([]models.Message, error)
	DeleteForEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error)
}

type messageDatabase struct {
	db DatabaseHelper
}

// NewMessageDatabase initializes a new instance of message database with the provided db connection
func NewMessageDatabase(db DatabaseHelper) MessageDatabase {
	return &messageDatabase{
		db: db,
	}
}

func (c *messageDatabase) InsertOne(ctx context.Context, m *models.Message) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	_, err := c.db.Collection(messageName).InsertOne(ctx, m)
	return err
}

// FindConversation returns an event's messages oldest first. An empty department
// returns every conversation on the event.
func (c *messageDatabase) FindConversation(ctx context.Context, eventID primitive.ObjectID, department string) ([]models.Message, error) {
	filter := bson.M{"eventId": eventID}
	if department != "" {
		filter["department"] = department
	}
	var list []models.Message
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	err := c.db.Collection(messageName).Find(ctx, filter, opts).Decode(&list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (c *messageDatabase) DeleteForEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return c.db.Collection(messageName).DeleteMany(ctx, bson.M{"eventId": eventID})
}

// MessageIndexes supports loading one conversation
func MessageIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "department", Value: 1}, {Key: "createdAt", Value: 1}}},
	}
}
