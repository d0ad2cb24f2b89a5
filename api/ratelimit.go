package api

import (
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/config"
)

// RateLimit limits each client address to perMinute requests per minute
func RateLimit(perMinute int64) func(http.Handler) http.Handler {
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  perMinute,
	}
	instance := limiter.New(memory.NewStore(), rate)
	mw := stdlib.NewMiddleware(instance, stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
		config.ErrorStatus("too many requests", http.StatusTooManyRequests, w, nil)
	}))
	return mw.Handler
}
