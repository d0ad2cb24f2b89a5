package databases

//go generate: mockery --name DepartmentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

const departmentName = "departments"

// DepartmentDatabase contains the methods to use with the department database
type DepartmentDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Department, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Department, error)
	InsertOne(ctx context.Context, d *models.Department) error
	UpdateOne(ctx context.Context, id primitive.ObjectID, update interface{}) error
	DeleteOne(ctx context.Context, id primitive.ObjectID) error
}

type departmentDatabase struct {
	db DatabaseHelper
}

// NewDepartmentDatabase initializes a new instance of department database with the provided db connection
func NewDepartmentDatabase(db DatabaseHelper) DepartmentDatabase {
	return &departmentDatabase{
		db: db,
	}
}

func (c *departmentDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Department, error) {
	d := &models.Department{}
	err := c.db.Collection(departmentName).FindOne(ctx, filter).Decode(&d)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (c *departmentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Department, error) {
	var departments []models.Department
	err := c.db.Collection(departmentName).Find(ctx, filter, opts...).Decode(&departments)
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (c *departmentDatabase) InsertOne(ctx context.Context, d *models.Department) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.Requirements == nil {
		d.Requirements = []models.RequirementDefinition{}
	}
	_, err := c.db.Collection(departmentName).InsertOne(ctx, d)
	return err
}

func (c *departmentDatabase) UpdateOne(ctx context.Context, id primitive.ObjectID, update interface{}) error {
	res, err := c.db.Collection(departmentName).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *departmentDatabase) DeleteOne(ctx context.Context, id primitive.ObjectID) error {
	n, err := c.db.Collection(departmentName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DepartmentIndexes makes department names unique
func DepartmentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
}
