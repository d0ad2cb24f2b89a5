package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/config"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases/mocks"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

func TestNewUserDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	userDB := databases.NewUserDatabase(db)

	assert.NotEmpty(t, userDB)
}

func TestUserDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).Username = "mocked-user"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "users").Return(collectionHelper)

	userDba := databases.NewUserDatabase(dbHelper)

	user, err := userDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, user)
	assert.EqualError(t, err, "mocked-error")

	user, err = userDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, &models.User{Username: "mocked-user"}, user)
	assert.NoError(t, err)
}

func TestUserDatabase_Find(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var crHelperErr databases.CursorHelper
	var crHelperCorrect databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	crHelperErr = &mocks.CursorHelper{}
	crHelperCorrect = &mocks.CursorHelper{}

	crHelperErr.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	crHelperCorrect.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.User)
		(*arg) = []models.User{{Username: "mocked-user"}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(crHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(crHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "users").Return(collectionHelper)

	userDba := databases.NewUserDatabase(dbHelper)

	users, err := userDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, users)
	assert.EqualError(t, err, "mocked-error")

	users, err = userDba.Find(context.Background(), bson.M{"error": false})

	assert.Equal(t, []models.User{{Username: "mocked-user"}}, users)
	assert.NoError(t, err)
}

func TestUserDatabase_UpdateOneNotFound(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "users").Return(collectionHelper)

	id := primitive.NewObjectID()
	collectionHelper.On("UpdateOne", mock.Anything, bson.M{"_id": id}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)

	err := databases.NewUserDatabase(dbHelper).UpdateOne(context.Background(), id, bson.M{"$set": bson.M{"status": "inactive"}})
	assert.ErrorIs(t, err, databases.ErrNotFound)
}

func TestUserDatabase_InsertOneDuplicate(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "users").Return(collectionHelper)
	collectionHelper.On("InsertOne", mock.Anything, mock.Anything).Return(nil, databases.ErrDuplicate)

	err := databases.NewUserDatabase(dbHelper).InsertOne(context.Background(), &models.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, databases.ErrDuplicate)
}
