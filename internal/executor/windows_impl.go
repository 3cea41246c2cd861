//go:build windows
// +build windows

package executor

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// WindowsOpener hands URIs to the registered protocol handler
type WindowsOpener struct {
	logger *zap.Logger
}

// NewOpener creates the platform-specific URI opener (Windows implementation)
func NewOpener(logger *zap.Logger) (*WindowsOpener, error) {
	logger.Info("Windows URI opener initialized")
	return &WindowsOpener{logger: logger}, nil
}

// Open hands uri to the protocol handler via url.dll
func (o *WindowsOpener) Open(ctx context.Context, uri string) error {
	cmd := exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", uri)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to open %s: %w (output: %s)", uri, err, string(output))
	}
	o.logger.Info("URI opened", zap.String("uri", uri))
	return nil
}
