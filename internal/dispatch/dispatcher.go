// Package dispatch delivers widget triggers on a desktop session: media keys
// and launches go to the active MPRIS player, deep links to the URI opener.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/monitor"
	"github.com/genricoloni/mucwidget/internal/router"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// ErrNoPlayer is returned when a trigger needs a player and none is on the bus
var ErrNoPlayer = errors.New("no MPRIS player available")

// PlayerSource reports the player that produced the latest update
type PlayerSource interface {
	ActivePlayer() string
}

// MprisDispatcher implements domain.TriggerDispatcher over D-Bus
type MprisDispatcher struct {
	logger  *zap.Logger
	conn    monitor.DBusClient
	players PlayerSource
	opener  domain.Opener
	scheme  string
}

// NewMprisDispatcher creates a dispatcher. scheme is the app's deep-link
// scheme; background actions on other schemes always go to the opener.
func NewMprisDispatcher(logger *zap.Logger, conn monitor.DBusClient, players PlayerSource, opener domain.Opener, scheme string) *MprisDispatcher {
	return &MprisDispatcher{
		logger:  logger,
		conn:    conn,
		players: players,
		opener:  opener,
		scheme:  scheme,
	}
}

// Dispatch delivers one trigger
func (d *MprisDispatcher) Dispatch(ctx context.Context, t domain.Trigger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch t.Kind {
	case domain.TriggerMediaKey:
		return d.mediaKey(t.KeyCode)
	case domain.TriggerLaunch:
		return d.raise()
	case domain.TriggerBackgroundAction:
		return d.background(ctx, t.Target)
	default:
		return fmt.Errorf("unknown trigger kind %q", t.Kind)
	}
}

func (d *MprisDispatcher) mediaKey(code domain.KeyCode) error {
	var method string
	switch code {
	case domain.KeyMediaPlayPause:
		method = "PlayPause"
	case domain.KeyMediaNext:
		method = "Next"
	case domain.KeyMediaPrevious:
		method = "Previous"
	default:
		return fmt.Errorf("unsupported key code %d", code)
	}

	player, err := d.player()
	if err != nil {
		return err
	}

	d.logger.Debug("Sending media key",
		zap.String("player", player),
		zap.String("method", method))

	if err := d.conn.Call(player, monitor.MprisPath, monitor.MprisPlayerInterface+"."+method); err != nil {
		return fmt.Errorf("%s on %s: %w", method, player, err)
	}
	return nil
}

func (d *MprisDispatcher) raise() error {
	player, err := d.player()
	if err != nil {
		return err
	}
	if err := d.conn.Call(player, monitor.MprisPath, monitor.MprisRootInterface+".Raise"); err != nil {
		return fmt.Errorf("raise %s: %w", player, err)
	}
	return nil
}

func (d *MprisDispatcher) background(ctx context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid background target %q: %w", target, err)
	}

	if u.Scheme == d.scheme {
		switch u.Host {
		case router.HostShuffle:
			return d.toggleShuffle()
		case router.HostRepeat:
			return d.cycleRepeat()
		}
	}

	return d.opener.Open(ctx, target)
}

func (d *MprisDispatcher) toggleShuffle() error {
	player, err := d.player()
	if err != nil {
		return err
	}

	v, err := d.conn.GetProperty(player, monitor.MprisPath, monitor.MprisPlayerInterface+".Shuffle")
	if err != nil {
		return fmt.Errorf("read shuffle: %w", err)
	}
	current, _ := v.Value().(bool)

	if err := d.conn.SetProperty(player, monitor.MprisPath, monitor.MprisPlayerInterface+".Shuffle", dbus.MakeVariant(!current)); err != nil {
		return fmt.Errorf("write shuffle: %w", err)
	}
	return nil
}

// cycleRepeat advances none -> all -> one -> none
func (d *MprisDispatcher) cycleRepeat() error {
	player, err := d.player()
	if err != nil {
		return err
	}

	v, err := d.conn.GetProperty(player, monitor.MprisPath, monitor.MprisPlayerInterface+".LoopStatus")
	if err != nil {
		return fmt.Errorf("read loop status: %w", err)
	}
	current, _ := v.Value().(string)

	if err := d.conn.SetProperty(player, monitor.MprisPath, monitor.MprisPlayerInterface+".LoopStatus", dbus.MakeVariant(nextLoopStatus(current))); err != nil {
		return fmt.Errorf("write loop status: %w", err)
	}
	return nil
}

func nextLoopStatus(current string) string {
	switch current {
	case "Playlist":
		return "Track"
	case "Track":
		return "None"
	default:
		return "Playlist"
	}
}

// player picks the active player, falling back to the first one on the bus
func (d *MprisDispatcher) player() (string, error) {
	if name := d.players.ActivePlayer(); name != "" {
		return name, nil
	}

	names, err := d.conn.ListNames()
	if err != nil {
		return "", fmt.Errorf("failed to list bus names: %w", err)
	}
	for _, name := range names {
		if strings.HasPrefix(name, monitor.MprisNamePrefix) {
			return name, nil
		}
	}
	return "", ErrNoPlayer
}
