//go:build linux
// +build linux

package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	propertiesChanged = "org.freedesktop.DBus.Properties.PropertiesChanged"
	nameOwnerChanged  = "org.freedesktop.DBus.NameOwnerChanged"

	// dropWarnEvery limits "events dropped" warnings while a user skips tracks
	dropWarnEvery = 5 * time.Second
)

var playbackStates = map[string]domain.PlayerStatus{
	"Playing": domain.StatusPlaying,
	"Paused":  domain.StatusPaused,
	"Stopped": domain.StatusStopped,
}

// MprisMonitor follows every MPRIS player on the session bus and emits the
// state of whichever player changed last.
type MprisMonitor struct {
	logger  *zap.Logger
	events  chan domain.MediaMetadata
	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	conn    DBusClient
	wg      sync.WaitGroup

	// playerNames maps unique bus names (:1.45) to well-known player names
	playerNames  map[string]string
	activePlayer string
	droppedAt    time.Time
}

// NewMprisMonitor creates a monitor; it connects to the bus in Start
func NewMprisMonitor(logger *zap.Logger) *MprisMonitor {
	return &MprisMonitor{
		logger:      logger,
		events:      make(chan domain.MediaMetadata, 10),
		playerNames: make(map[string]string),
	}
}

// Start connects to the session bus and blocks until ctx is done or Stop is called
func (m *MprisMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	conn, err := NewStdDBusClient()
	if err != nil {
		m.mu.Lock()
		m.running, m.cancel = false, nil
		m.mu.Unlock()
		cancel()
		m.logger.Error("Failed to connect to session bus", zap.Error(err))
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	// Stop may have run while the bus was connecting
	if runCtx.Err() != nil {
		if err := conn.Close(); err != nil {
			m.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
		return runCtx.Err()
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	m.wg.Add(1)
	func() {
		defer m.wg.Done()
		if err := m.detectExistingPlayers(); err != nil {
			m.logger.Warn("Failed to detect existing players", zap.Error(err))
		}
	}()

	if err := m.subscribe(conn); err != nil {
		return err
	}

	m.wg.Add(1)
	go m.monitorSignals(runCtx)

	m.logger.Info("MPRIS monitor started")
	<-runCtx.Done()
	m.logger.Info("MPRIS monitor stopped")
	return runCtx.Err()
}

// subscribe installs the match rules for player updates and player lifecycle.
// Only the first is required.
func (m *MprisMonitor) subscribe(conn DBusClient) error {
	err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(MprisPath),
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		return fmt.Errorf("failed to add match signal: %w", err)
	}

	err = conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	)
	if err != nil {
		m.logger.Warn("Players started later will be picked up on their first update", zap.Error(err))
	}
	return nil
}

// Stop ends monitoring, closes the events channel and the bus connection
func (m *MprisMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	// Producers must be gone before the channel closes
	m.wg.Wait()
	close(m.events)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
	}
	m.logger.Info("MPRIS monitor shutdown complete")
	return nil
}

// Events returns the stream of player states
func (m *MprisMonitor) Events() <-chan domain.MediaMetadata {
	return m.events
}

// ActivePlayer returns the bus name of the player that reported last,
// or "" when no player has been seen.
func (m *MprisMonitor) ActivePlayer() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activePlayer
}

func (m *MprisMonitor) setActivePlayer(name string) {
	m.mu.Lock()
	m.activePlayer = name
	m.mu.Unlock()
}

func (m *MprisMonitor) detectExistingPlayers() error {
	names, err := m.conn.ListNames()
	if err != nil {
		return fmt.Errorf("failed to list bus names: %w", err)
	}

	found := 0
	for _, name := range names {
		if !strings.HasPrefix(name, MprisNamePrefix) {
			continue
		}
		found++

		if owner, err := m.conn.GetNameOwner(name); err == nil {
			m.mu.Lock()
			m.playerNames[owner] = name
			m.mu.Unlock()
		}
		if err := m.fetchPlayerMetadata(name); err != nil {
			m.logger.Warn("Failed to read player", zap.String("player", name), zap.Error(err))
		}
	}

	m.logger.Info("Player detection complete", zap.Int("count", found))
	return nil
}

// fetchPlayerMetadata reads the full state of one player and publishes it.
// A player with no usable metadata is skipped without error.
func (m *MprisMonitor) fetchPlayerMetadata(bus string) error {
	v, err := m.conn.GetProperty(bus, MprisPath, MprisPlayerInterface+".Metadata")
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}
	fields, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return nil
	}

	v, err = m.conn.GetProperty(bus, MprisPath, MprisPlayerInterface+".PlaybackStatus")
	if err != nil {
		return fmt.Errorf("failed to get playback status: %w", err)
	}
	status, ok := v.Value().(string)
	if !ok {
		return fmt.Errorf("invalid playback status format")
	}

	meta := toMediaMetadata(fields, status)
	m.fillModes(bus, &meta)
	m.setActivePlayer(bus)
	m.publish(meta, bus)
	return nil
}

// fillModes reads Shuffle and LoopStatus. Players that lack them keep the zero values.
func (m *MprisMonitor) fillModes(bus string, meta *domain.MediaMetadata) {
	if b, ok := m.property(bus, "Shuffle").(bool); ok {
		meta.Shuffle = b
	}
	if s, ok := m.property(bus, "LoopStatus").(string); ok {
		meta.LoopStatus = s
	}
}

// property returns the value of a player property, or nil when it cannot be read
func (m *MprisMonitor) property(bus, name string) interface{} {
	v, err := m.conn.GetProperty(bus, MprisPath, MprisPlayerInterface+"."+name)
	if err != nil {
		return nil
	}
	return v.Value()
}

func (m *MprisMonitor) monitorSignals(ctx context.Context) {
	defer m.wg.Done()

	signals := make(chan *dbus.Signal, 10)
	m.conn.Signal(signals)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			if sig == nil {
				continue
			}
			switch sig.Name {
			case nameOwnerChanged:
				m.handleNameOwnerChanged(sig)
			case propertiesChanged:
				m.handleSignal(sig)
			}
		}
	}
}

// handleNameOwnerChanged keeps playerNames in step with players joining,
// leaving or changing owner on the bus.
func (m *MprisMonitor) handleNameOwnerChanged(sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}
	name, ok := sig.Body[0].(string)
	if !ok || !strings.HasPrefix(name, MprisNamePrefix) {
		return
	}
	oldOwner, _ := sig.Body[1].(string)
	newOwner, _ := sig.Body[2].(string)

	m.mu.Lock()
	if oldOwner != "" {
		delete(m.playerNames, oldOwner)
	}
	switch {
	case newOwner != "":
		m.playerNames[newOwner] = name
		if oldOwner != "" && m.activePlayer == oldOwner {
			m.activePlayer = newOwner
		}
	case m.activePlayer == oldOwner || m.activePlayer == name:
		m.activePlayer = ""
	}
	m.mu.Unlock()

	switch {
	case oldOwner == "" && newOwner != "":
		m.logger.Info("Player appeared", zap.String("player", name))
		if err := m.fetchPlayerMetadata(name); err != nil {
			m.logger.Warn("Failed to read new player", zap.String("player", name), zap.Error(err))
		}
	case newOwner == "":
		m.logger.Info("Player left", zap.String("player", name))
	}
}

// handleSignal turns a PropertiesChanged signal into a full player state.
// Properties the signal leaves out are read back from the player.
func (m *MprisMonitor) handleSignal(sig *dbus.Signal) {
	if sig.Name != propertiesChanged || len(sig.Body) < 2 {
		return
	}
	if iface, _ := sig.Body[0].(string); iface != MprisPlayerInterface {
		return
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok || !touchesState(changed) {
		return
	}

	var fields map[string]dbus.Variant
	if v, ok := changed["Metadata"]; ok {
		if fields, ok = v.Value().(map[string]dbus.Variant); !ok {
			m.logger.Warn("Ignoring signal with malformed metadata", zap.String("sender", sig.Sender))
			return
		}
	} else {
		fields, _ = m.property(sig.Sender, "Metadata").(map[string]dbus.Variant)
	}

	var status string
	if v, ok := changed["PlaybackStatus"]; ok {
		if status, ok = v.Value().(string); !ok {
			m.logger.Warn("Ignoring signal with malformed playback status", zap.String("sender", sig.Sender))
			return
		}
	} else {
		status, _ = m.property(sig.Sender, "PlaybackStatus").(string)
	}

	meta := toMediaMetadata(fields, status)
	m.fillModes(sig.Sender, &meta)
	applyModeChanges(changed, &meta)

	m.setActivePlayer(sig.Sender)
	m.publish(meta, m.getPlayerName(sig.Sender))
}

func touchesState(changed map[string]dbus.Variant) bool {
	for _, key := range []string{"Metadata", "PlaybackStatus", "Shuffle", "LoopStatus"} {
		if _, ok := changed[key]; ok {
			return true
		}
	}
	return false
}

// publish hands a state to the engine without blocking. The engine debounces,
// so an update dropped on a full channel is superseded by the next one.
func (m *MprisMonitor) publish(meta domain.MediaMetadata, player string) {
	select {
	case m.events <- meta:
		m.logger.Debug("Player state published",
			zap.String("player", player),
			zap.String("title", meta.Title),
			zap.String("status", string(meta.Status)))
		return
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if now := time.Now(); now.Sub(m.droppedAt) >= dropWarnEvery {
		m.droppedAt = now
		m.logger.Warn("Events channel full, dropping player update", zap.String("player", player))
	}
}

// toMediaMetadata maps xesam fields and a PlaybackStatus string onto the domain model.
// Unknown statuses read as stopped.
func toMediaMetadata(fields map[string]dbus.Variant, status string) domain.MediaMetadata {
	meta := domain.MediaMetadata{Status: domain.StatusStopped}
	if s, ok := playbackStates[status]; ok {
		meta.Status = s
	}

	meta.Title = stringField(fields, "xesam:title")
	meta.Album = stringField(fields, "xesam:album")
	meta.ArtUrl = stringField(fields, "mpris:artUrl")

	// xesam:artist is a list, a few players send a plain string
	if v, ok := fields["xesam:artist"]; ok {
		switch artists := v.Value().(type) {
		case []string:
			if len(artists) > 0 {
				meta.Artist = artists[0]
			}
		case string:
			meta.Artist = artists
		}
	}
	return meta
}

func stringField(fields map[string]dbus.Variant, key string) string {
	if v, ok := fields[key]; ok {
		s, _ := v.Value().(string)
		return s
	}
	return ""
}

// applyModeChanges prefers the values carried by the signal itself
func applyModeChanges(changed map[string]dbus.Variant, meta *domain.MediaMetadata) {
	if v, ok := changed["Shuffle"]; ok {
		if b, ok := v.Value().(bool); ok {
			meta.Shuffle = b
		}
	}
	if v, ok := changed["LoopStatus"]; ok {
		if s, ok := v.Value().(string); ok {
			meta.LoopStatus = s
		}
	}
}

// getPlayerName returns the well-known name behind a unique bus name, or the
// unique name itself when the player was never mapped.
func (m *MprisMonitor) getPlayerName(uniqueName string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if name, ok := m.playerNames[uniqueName]; ok {
		return name
	}
	return uniqueName
}
