// Package loggertest provides a logger for tests, kept out of pkg/logger so
// production binaries never link the testing machinery.
package loggertest

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewLogger returns a logger wired to the test's output.
func NewLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}
