package util

import (
	"strings"

	"go.uber.org/zap"
)

// NewLogger returns a JSON logger in production and a console logger
// elsewhere, named after the process so the api, consumer and reconciler
// logs can share a sink.
func NewLogger(env string, process string) *zap.SugaredLogger {
	var logger *zap.Logger
	if strings.EqualFold(env, "production") {
		logger = zap.Must(zap.NewProduction())
	} else {
		logger = zap.Must(zap.NewDevelopment())
	}

	return logger.Named(process).Sugar()
}

// For unit test
func NewNopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
