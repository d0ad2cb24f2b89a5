package api

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultQueryTimeout bounds a database call when nothing else was configured
const DefaultQueryTimeout = 10 * time.Second

var queryTimeout atomic.Int64

func init() {
	queryTimeout.Store(int64(DefaultQueryTimeout))
}

// SetQueryTimeout changes the deadline WithQueryTimeout applies. Non-positive
// values restore the default.
func SetQueryTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultQueryTimeout
	}
	queryTimeout.Store(int64(d))
}

// QueryTimeout reports the deadline currently applied to database calls
func QueryTimeout() time.Duration {
	return time.Duration(queryTimeout.Load())
}

// WithQueryTimeout derives a context for one database call. A request deadline
// that is already shorter wins.
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout())
}
