package databases

//go generate: mockery --name EventDatabase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const eventName = "events"

// EventDatabase contains the methods to use with the event database
type EventDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Event, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Event, error)
	InsertOne(ctx context.Context, ev *models.Event) error
	Replace(ctx context.Context, ev *models.Event) error
	DeleteOne(ctx context.Context, id primitive.ObjectID) error
}

type eventDatabase struct {
	db DatabaseHelper
}

// NewEventDatabase initializes a new instance of event database with the provided db connection
func NewEventDatabase(db DatabaseHelper) EventDatabase {
	return &eventDatabase{
		db: db,
	}
}

func (c *eventDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Event, error) {
	ev := &models.Event{}
	err := c.db.Collection(eventName).FindOne(ctx, filter, opts...).Decode(&ev)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (c *eventDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Event, error) {
	var events []models.Event
	err := c.db.Collection(eventName).Find(ctx, filter, opts...).Decode(&events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// InsertOne stores a new event at version 1
func (c *eventDatabase) InsertOne(ctx context.Context, ev *models.Event) error {
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	ev.Version = 1
	ev.SyncTaggedDepartments()
	_, err := c.db.Collection(eventName).InsertOne(ctx, ev)
	return err
}

// Replace writes ev only if the stored version still matches ev.Version, then
// bumps the version. A lost race returns ErrVersionConflict and ev is unchanged.
func (c *eventDatabase) Replace(ctx context.Context, ev *models.Event) error {
	next := *ev
	next.Version = ev.Version + 1
	next.DepartmentRequirements = append([]models.DepartmentAllocation(nil), ev.DepartmentRequirements...)
	next.SyncTaggedDepartments()

	res, err := c.db.Collection(eventName).ReplaceOne(ctx,
		bson.M{"_id": ev.ID, "version": ev.Version}, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	*ev = next
	return nil
}

func (c *eventDatabase) DeleteOne(ctx context.Context, id primitive.ObjectID) error {
	n, err := c.db.Collection(eventName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EventIndexes are the indexes the events collection relies on
func EventIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "taggedDepartments", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "endDate", Value: 1}}},
	}
}

// UpdateWithRetry loads the event, applies mutate and writes it back with a
// version check. A conflicting write is retried against a fresh copy up to
// attempts times. mutate errors abort immediately.
func UpdateWithRetry(ctx context.Context, db EventDatabase, id primitive.ObjectID, attempts int, mutate func(ev *models.Event) error) (*models.Event, error) {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		ev, err := db.FindOne(ctx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if err := mutate(ev); err != nil {
			return nil, err
		}
		err = db.Replace(ctx, ev)
		if err == nil {
			return ev, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, ErrVersionConflict
}
