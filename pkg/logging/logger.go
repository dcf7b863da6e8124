// Package logging provides zap logger construction and log sanitization.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the root zap logger for the given environment.
// Local and test environments get human-readable development output;
// everything else gets JSON production output.
func NewLogger(env string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "local", "test":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
