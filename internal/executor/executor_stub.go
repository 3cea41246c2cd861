//go:build !linux && !windows
// +build !linux,!windows

package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// StubOpener is a placeholder for unsupported platforms (macOS, BSD, etc.)
type StubOpener struct {
	logger *zap.Logger
}

// NewOpener creates a stub opener for unsupported platforms
func NewOpener(logger *zap.Logger) (*StubOpener, error) {
	logger.Warn("URI opening is not implemented for this platform")
	return &StubOpener{logger: logger}, nil
}

// Open returns an error indicating the platform is not supported
func (o *StubOpener) Open(ctx context.Context, uri string) error {
	return fmt.Errorf("opening %s is not implemented for this platform", uri)
}
