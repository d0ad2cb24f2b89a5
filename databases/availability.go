package databases

//go generate: mockery --name AvailabilityDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const (
	resourceAvailabilityName = "resourceavailabilities"
	locationAvailabilityName = "locationavailabilities"
)

// AvailabilityDatabase contains the methods to use with the resource and location
// availability ledgers
type AvailabilityDatabase interface {
	FindResources(ctx context.Context, filter interface{}) ([]models.ResourceAvailability, error)
	UpsertResource(ctx context.Context, r *models.ResourceAvailability) (*models.ResourceAvailability, error)
	DeleteResource(ctx context.Context, id primitive.ObjectID) error

	FindLocations(ctx context.Context, filter interface{}) ([]models.LocationAvailability, error)
	UpsertLocation(ctx context.Context, l *models.LocationAvailability) (*models.LocationAvailability, error)
	EnsureLocation(ctx context.Context, l *models.LocationAvailability) (bool, error)
	DeleteLocation(ctx context.Context, id primitive.ObjectID) error

	// DeleteBefore removes every resource and location row dated strictly before date
	DeleteBefore(ctx context.Context, date string) (models.CleanupResult, error)
}

type availabilityDatabase struct {
	db DatabaseHelper
}

// NewAvailabilityDatabase initializes a new instance of availability database with the provided db connection
func NewAvailabilityDatabase(db DatabaseHelper) AvailabilityDatabase {
	return &availabilityDatabase{
		db: db,
	}
}

func (a *availabilityDatabase) FindResources(ctx context.Context, filter interface{}) ([]models.ResourceAvailability, error) {
	var rows []models.ResourceAvailability
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	err := a.db.Collection(resourceAvailabilityName).Find(ctx, filter, opts).Decode(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *availabilityDatabase) UpsertResource(ctx context.Context, r *models.ResourceAvailability) (*models.ResourceAvailability, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	key := bson.M{"departmentId": r.DepartmentID, "requirementId": r.RequirementID, "date": r.Date}
	update := bson.M{
		"$set": bson.M{
			"departmentName":  r.DepartmentName,
			"requirementText": r.RequirementText,
			"isAvailable":     r.IsAvailable,
			"quantity":        r.Quantity,
			"maxCapacity":     r.MaxCapacity,
			"notes":           r.Notes,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	coll := a.db.Collection(resourceAvailabilityName)
	if _, err := coll.UpdateOne(ctx, key, update, options.Update().SetUpsert(true)); err != nil {
		return nil, err
	}
	stored := &models.ResourceAvailability{}
	if err := coll.FindOne(ctx, key).Decode(stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (a *availabilityDatabase) DeleteResource(ctx context.Context, id primitive.ObjectID) error {
	n, err := a.db.Collection(resourceAvailabilityName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *availabilityDatabase) FindLocations(ctx context.Context, filter interface{}) ([]models.LocationAvailability, error) {
	var rows []models.LocationAvailability
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "locationName", Value: 1}})
	err := a.db.Collection(locationAvailabilityName).Find(ctx, filter, opts).Decode(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *availabilityDatabase) UpsertLocation(ctx context.Context, l *models.LocationAvailability) (*models.LocationAvailability, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	key := bson.M{"locationName": l.LocationName, "date": l.Date}
	set := bson.M{
		"capacity":    l.Capacity,
		"status":      l.Status,
		"description": l.Description,
		"updatedAt":   now,
	}
	if l.SetBy != nil {
		set["setBy"] = l.SetBy
	}
	update := bson.M{"$set": set, "$setOnInsert": bson.M{"createdAt": now}}

	coll := a.db.Collection(locationAvailabilityName)
	if _, err := coll.UpdateOne(ctx, key, update, options.Update().SetUpsert(true)); err != nil {
		return nil, err
	}
	stored := &models.LocationAvailability{}
	if err := coll.FindOne(ctx, key).Decode(stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// EnsureLocation inserts l only when no row exists for its location and date.
// created reports whether a new row was written.
func (a *availabilityDatabase) EnsureLocation(ctx context.Context, l *models.LocationAvailability) (bool, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	key := bson.M{"locationName": l.LocationName, "date": l.Date}
	update := bson.M{"$setOnInsert": bson.M{
		"capacity":    l.Capacity,
		"status":      l.Status,
		"description": l.Description,
		"setBy":       l.SetBy,
		"createdAt":   now,
		"updatedAt":   now,
	}}
	res, err := a.db.Collection(locationAvailabilityName).UpdateOne(ctx, key, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (a *availabilityDatabase) DeleteLocation(ctx context.Context, id primitive.ObjectID) error {
	n, err := a.db.Collection(locationAvailabilityName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBefore compares the stored YYYY-MM-DD strings, which sort the same as the dates they name
func (a *availabilityDatabase) DeleteBefore(ctx context.Context, date string) (models.CleanupResult, error) {
	result := models.CleanupResult{Before: date}
	filter := bson.M{"date": bson.M{"$lt": date}}

	n, err := a.db.Collection(resourceAvailabilityName).DeleteMany(ctx, filter)
	if err != nil {
		return result, err
	}
	result.ResourceDeleted = n

	n, err = a.db.Collection(locationAvailabilityName).DeleteMany(ctx, filter)
	if err != nil {
		return result, err
	}
	result.LocationDeleted = n
	return result, nil
}

// ResourceAvailabilityIndexes enforces one override per requirement and date
func ResourceAvailabilityIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "departmentId", Value: 1}, {Key: "requirementId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}
}

// LocationAvailabilityIndexes enforces one row per location and date
func LocationAvailabilityIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "locationName", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}
