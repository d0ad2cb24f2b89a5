package logging

import "go.uber.org/zap"

// New creates a new zap logger for the given environment. Production gets json
// output at info level, development gets the console encoder at debug level and
// everything else falls back to the example logger used locally and in tests.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}
