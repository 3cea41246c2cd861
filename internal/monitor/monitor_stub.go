//go:build !linux
// +build !linux

package monitor

import (
	"context"
	"fmt"

	"github.com/genricoloni/mucwidget/internal/domain"
	"go.uber.org/zap"
)

// MprisMonitor stub for non-Linux platforms
type MprisMonitor struct {
	logger *zap.Logger
	events chan domain.MediaMetadata
}

// NewMprisMonitor creates a stub monitor that returns an error on non-Linux platforms
func NewMprisMonitor(logger *zap.Logger) *MprisMonitor {
	ch := make(chan domain.MediaMetadata)
	close(ch)
	return &MprisMonitor{logger: logger, events: ch}
}

// Start returns an error indicating MPRIS monitoring is not supported on this platform
func (m *MprisMonitor) Start(ctx context.Context) error {
	return fmt.Errorf("MPRIS monitoring is only supported on Linux systems")
}

// Events returns a closed channel since monitoring is not available
func (m *MprisMonitor) Events() <-chan domain.MediaMetadata {
	return m.events
}

// ActivePlayer always reports no player
func (m *MprisMonitor) ActivePlayer() string {
	return ""
}

// Stop is a no-op on non-Linux platforms
func (m *MprisMonitor) Stop(ctx context.Context) error {
	return nil
}
