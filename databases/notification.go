package databases

//go generate: mockery --name NotificationDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification database
type NotificationDatabase interface {
	InsertOne(ctx context.Context, n *models.Notification) error
	FindForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, userID, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (c *notificationDatabase) InsertOne(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := c.db.Collection(notificationName).InsertOne(ctx, n)
	return err
}

// FindForUser returns the newest notifications first
func (c *notificationDatabase) FindForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	var list []models.Notification
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	err := c.db.Collection(notificationName).Find(ctx, bson.M{"userId": userID}, opts).Decode(&list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (c *notificationDatabase) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return c.db.Collection(notificationName).CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
}

// MarkRead only touches notifications owned by userID
func (c *notificationDatabase) MarkRead(ctx context.Context, userID, id primitive.ObjectID) error {
	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := c.db.Collection(notificationName).UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *notificationDatabase) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := c.db.Collection(notificationName).UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// NotificationIndexes supports the per-user feed
func NotificationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
}
