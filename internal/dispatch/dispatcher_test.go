package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/genricoloni/mucwidget/internal/domain"
	domainmocks "github.com/genricoloni/mucwidget/internal/domain/mocks"
	"github.com/genricoloni/mucwidget/internal/monitor"
	"github.com/genricoloni/mucwidget/internal/monitor/mocks"
	"github.com/genricoloni/mucwidget/internal/router"
	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const (
	testScheme = "mucplay"
	testPlayer = "org.mpris.MediaPlayer2.spotify"
)

type fixedPlayer string

func (f fixedPlayer) ActivePlayer() string { return string(f) }

type fixedTokens string

func (f fixedTokens) Next() string { return string(f) }

func newTestRouter() *router.Router {
	return router.New(router.Options{
		Scheme:       testScheme,
		AppPackage:   "com.example.mucplay",
		AudioService: "com.ryanheise.audioservice.MediaButtonReceiver",
		HostAPILevel: 26,
	}, fixedTokens("42"))
}

func newTestDispatcher(t *testing.T, active string) (*MprisDispatcher, *mocks.MockDBusClient, *domainmocks.MockOpener) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockDBusClient(ctrl)
	opener := domainmocks.NewMockOpener(ctrl)
	return NewMprisDispatcher(zap.NewNop(), conn, fixedPlayer(active), opener, testScheme), conn, opener
}

func TestDispatch_MediaKeys(t *testing.T) {
	rt := newTestRouter()

	tests := []struct {
		name   string
		code   domain.KeyCode
		method string
	}{
		{"play pause", domain.KeyMediaPlayPause, "org.mpris.MediaPlayer2.Player.PlayPause"},
		{"next", domain.KeyMediaNext, "org.mpris.MediaPlayer2.Player.Next"},
		{"previous", domain.KeyMediaPrevious, "org.mpris.MediaPlayer2.Player.Previous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, conn, _ := newTestDispatcher(t, testPlayer)
			conn.EXPECT().Call(testPlayer, monitor.MprisPath, tt.method).Return(nil)

			require.NoError(t, d.Dispatch(context.Background(), rt.MediaKey(tt.code)))
		})
	}
}

func TestDispatch_UnsupportedKeyCode(t *testing.T) {
	d, _, _ := newTestDispatcher(t, testPlayer)

	err := d.Dispatch(context.Background(), domain.Trigger{Kind: domain.TriggerMediaKey, KeyCode: 126})
	assert.Error(t, err)
}

func TestDispatch_LaunchRaisesPlayer(t *testing.T) {
	d, conn, _ := newTestDispatcher(t, testPlayer)
	conn.EXPECT().Call(testPlayer, monitor.MprisPath, "org.mpris.MediaPlayer2.Raise").Return(nil)

	require.NoError(t, d.Dispatch(context.Background(), newTestRouter().Launch()))
}

func TestDispatch_FallsBackToFirstPlayerOnBus(t *testing.T) {
	d, conn, _ := newTestDispatcher(t, "")
	conn.EXPECT().ListNames().Return([]string{"org.freedesktop.DBus", "org.mpris.MediaPlayer2.vlc"}, nil)
	conn.EXPECT().Call("org.mpris.MediaPlayer2.vlc", monitor.MprisPath, "org.mpris.MediaPlayer2.Player.Next").Return(nil)

	require.NoError(t, d.Dispatch(context.Background(), newTestRouter().MediaKey(domain.KeyMediaNext)))
}

func TestDispatch_NoPlayer(t *testing.T) {
	d, conn, _ := newTestDispatcher(t, "")
	conn.EXPECT().ListNames().Return([]string{"org.freedesktop.DBus"}, nil)

	err := d.Dispatch(context.Background(), newTestRouter().MediaKey(domain.KeyMediaPlayPause))
	assert.ErrorIs(t, err, ErrNoPlayer)
}

func TestDispatch_CallErrorIsWrapped(t *testing.T) {
	d, conn, _ := newTestDispatcher(t, testPlayer)
	busErr := errors.New("no reply")
	conn.EXPECT().Call(testPlayer, monitor.MprisPath, gomock.Any()).Return(busErr)

	err := d.Dispatch(context.Background(), newTestRouter().MediaKey(domain.KeyMediaPlayPause))
	assert.ErrorIs(t, err, busErr)
}

func TestDispatch_ShuffleToggles(t *testing.T) {
	d, conn, _ := newTestDispatcher(t, testPlayer)
	prop := "org.mpris.MediaPlayer2.Player.Shuffle"
	conn.EXPECT().GetProperty(testPlayer, monitor.MprisPath, prop).Return(dbus.MakeVariant(false), nil)
	conn.EXPECT().SetProperty(testPlayer, monitor.MprisPath, prop, dbus.MakeVariant(true)).Return(nil)

	require.NoError(t, d.Dispatch(context.Background(), newTestRouter().Background(router.HostShuffle)))
}

func TestDispatch_RepeatCycles(t *testing.T) {
	prop := "org.mpris.MediaPlayer2.Player.LoopStatus"
	tests := []struct {
		current, next string
	}{
		{"None", "Playlist"},
		{"Playlist", "Track"},
		{"Track", "None"},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			d, conn, _ := newTestDispatcher(t, testPlayer)
			conn.EXPECT().GetProperty(testPlayer, monitor.MprisPath, prop).Return(dbus.MakeVariant(tt.current), nil)
			conn.EXPECT().SetProperty(testPlayer, monitor.MprisPath, prop, dbus.MakeVariant(tt.next)).Return(nil)

			require.NoError(t, d.Dispatch(context.Background(), newTestRouter().Background(router.HostRepeat)))
		})
	}
}

func TestDispatch_OtherDeepLinksGoToOpener(t *testing.T) {
	d, _, opener := newTestDispatcher(t, testPlayer)
	opener.EXPECT().Open(gomock.Any(), "mucplay://settings?ts=42").Return(nil)

	require.NoError(t, d.Dispatch(context.Background(), newTestRouter().Background(router.HostSettings)))
}

func TestDispatch_CancelledContext(t *testing.T) {
	d, _, _ := newTestDispatcher(t, testPlayer)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Dispatch(ctx, newTestRouter().Launch())
	assert.ErrorIs(t, err, context.Canceled)
}
