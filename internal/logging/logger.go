package logging

import "go.uber.org/zap"

// New builds the service logger. Development environments get the
// console encoder, everything else structured JSON.
func New(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
