package logging

import "go.uber.org/zap"

// New returns a human-readable logger in development and a JSON production
// logger everywhere else.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
