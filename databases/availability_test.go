package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases/mocks"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

func TestAvailabilityDatabase_DeleteBefore(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	resources := &mocks.CollectionHelper{}
	locations := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "resourceavailabilities").Return(resources)
	dbHelper.On("Collection", "locationavailabilities").Return(locations)

	filter := bson.M{"date": bson.M{"$lt": "2026-03-10"}}
	resources.On("DeleteMany", mock.Anything, filter).Return(int64(4), nil)
	locations.On("DeleteMany", mock.Anything, filter).Return(int64(2), nil)

	res, err := databases.NewAvailabilityDatabase(dbHelper).DeleteBefore(context.Background(), "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, models.CleanupResult{ResourceDeleted: 4, LocationDeleted: 2, Before: "2026-03-10"}, res)
}

func TestAvailabilityDatabase_DeleteBeforeStopsOnError(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	resources := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "resourceavailabilities").Return(resources)
	resources.On("DeleteMany", mock.Anything, mock.Anything).Return(int64(0), errors.New("mocked-error"))

	_, err := databases.NewAvailabilityDatabase(dbHelper).DeleteBefore(context.Background(), "2026-03-10")
	assert.EqualError(t, err, "mocked-error")
	dbHelper.AssertNotCalled(t, "Collection", "locationavailabilities")
}

func TestAvailabilityDatabase_EnsureLocation(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	locations := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "locationavailabilities").Return(locations)

	key := bson.M{"locationName": "CustomRoom", "date": "2026-03-10"}
	locations.On("UpdateOne", mock.Anything, key, mock.MatchedBy(func(u bson.M) bool {
		_, onlyInsert := u["$setOnInsert"]
		_, sets := u["$set"]
		return onlyInsert && !sets
	}), mock.Anything).Return(&mongo.UpdateResult{UpsertedCount: 1}, nil).Once()
	locations.On("UpdateOne", mock.Anything, key, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil).Once()

	db := databases.NewAvailabilityDatabase(dbHelper)
	row := &models.LocationAvailability{LocationName: "CustomRoom", Date: "2026-03-10", Capacity: 1, Status: models.LocationAvailable}

	created, err := db.EnsureLocation(context.Background(), row)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = db.EnsureLocation(context.Background(), row)
	require.NoError(t, err)
	assert.False(t, created)
}
