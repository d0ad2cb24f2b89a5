package databases

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxPageSize = 100

type mongoPaginate struct {
	limit int64
	page  int64
}

func newMongoPaginate(limit, page int) *mongoPaginate {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return &mongoPaginate{
		limit: int64(limit),
		page:  int64(page),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	skip := mp.page*mp.limit - mp.limit
	fOpt := options.FindOptions{Limit: &l, Skip: &skip}

	return &fOpt
}

// EnsureIndexes creates every index the collections rely on. It is safe to call on
// each start.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	all := map[string][]mongo.IndexModel{
		eventName:                EventIndexes(),
		departmentName:           DepartmentIndexes(),
		userName:                 UserIndexes(),
		resourceAvailabilityName: ResourceAvailabilityIndexes(),
		locationAvailabilityName: LocationAvailabilityIndexes(),
		notificationName:         NotificationIndexes(),
		activityLogName:          ActivityLogIndexes(),
		messageName:              MessageIndexes(),
	}
	for name, idx := range all {
		if err := db.Collection(name).CreateIndexes(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
