// Package router builds the click targets of a widget and the trigger each
// one fires.
package router

import (
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/genricoloni/mucwidget/internal/domain"
)

const (
	ActionMediaButton      = "android.intent.action.MEDIA_BUTTON"
	ActionMain             = "android.intent.action.MAIN"
	ActionBackground       = "es.antonborri.home_widget.action.BACKGROUND"
	CategoryLauncher       = "android.intent.category.LAUNCHER"
	entryPointActivity     = ".MainActivity"
	foregroundServiceLevel = 26
)

// Deep-link hosts understood by the app-side listener. Keep verbatim.
const (
	HostSettings = "settings"
	HostShuffle  = "shuffle"
	HostRepeat   = "repeat"
)

// DeepLink returns scheme://host.
func DeepLink(scheme, host string) string {
	return scheme + "://" + host
}

// TokenSource yields uniqueness tokens for triggers the host might collapse
type TokenSource interface {
	Next() string
}

// MonotonicTokens issues strictly increasing nanosecond timestamps, even
// when the wall clock stalls or steps back.
type MonotonicTokens struct {
	last atomic.Int64
	now  func() time.Time
}

// NewMonotonicTokens creates a token source over the wall clock
func NewMonotonicTokens() *MonotonicTokens {
	return &MonotonicTokens{now: time.Now}
}

// Next returns the next token
func (m *MonotonicTokens) Next() string {
	for {
		prev := m.last.Load()
		n := m.now().UnixNano()
		if n <= prev {
			n = prev + 1
		}
		if m.last.CompareAndSwap(prev, n) {
			return strconv.FormatInt(n, 10)
		}
	}
}

// Options describes where triggers are addressed
type Options struct {
	Scheme       string
	AppPackage   string
	AudioService string
	HostAPILevel int
}

// Router builds click targets. Its output has no identity and is rebuilt on
// every render pass.
type Router struct {
	opts   Options
	tokens TokenSource
}

// New creates a router
func New(opts Options, tokens TokenSource) *Router {
	return &Router{opts: opts, tokens: tokens}
}

// Route returns the click targets for a layout. Shuffle and repeat exist only
// in the expanded layout.
func (r *Router) Route(layout domain.Layout) []domain.ClickTarget {
	targets := []domain.ClickTarget{
		{Region: domain.RegionPlay, Trigger: r.MediaKey(domain.KeyMediaPlayPause)},
		{Region: domain.RegionNext, Trigger: r.MediaKey(domain.KeyMediaNext)},
		{Region: domain.RegionPrevious, Trigger: r.MediaKey(domain.KeyMediaPrevious)},
	}
	if layout == domain.LayoutExpanded {
		targets = append(targets,
			domain.ClickTarget{Region: domain.RegionShuffle, Trigger: r.Background(HostShuffle)},
			domain.ClickTarget{Region: domain.RegionRepeat, Trigger: r.Background(HostRepeat)},
		)
	}
	return append(targets, domain.ClickTarget{Region: domain.RegionRoot, Trigger: r.Launch()})
}

// MediaKey builds a media-button trigger for the audio service. The key code
// doubles as request code so the three buttons never share a host slot.
func (r *Router) MediaKey(code domain.KeyCode) domain.Trigger {
	mode := domain.DispatchService
	if r.opts.HostAPILevel >= foregroundServiceLevel {
		mode = domain.DispatchForegroundService
	}
	return domain.Trigger{
		Kind:        domain.TriggerMediaKey,
		Mode:        mode,
		Target:      r.opts.AppPackage + "/" + r.opts.AudioService,
		Action:      ActionMediaButton,
		KeyCode:     code,
		RequestCode: int(code),
	}
}

// Background builds a scheme action for the app carrying a fresh ts parameter
func (r *Router) Background(host string) domain.Trigger {
	token := r.tokens.Next()
	u := url.URL{Scheme: r.opts.Scheme, Host: host, RawQuery: url.Values{"ts": {token}}.Encode()}
	return domain.Trigger{
		Kind:      domain.TriggerBackgroundAction,
		Mode:      domain.DispatchBroadcast,
		Target:    u.String(),
		Action:    ActionBackground,
		UniqueKey: token,
	}
}

// Launch builds the trigger that brings the existing app task forward
func (r *Router) Launch() domain.Trigger {
	return domain.Trigger{
		Kind:       domain.TriggerLaunch,
		Mode:       domain.DispatchActivity,
		Target:     r.opts.AppPackage + "/" + entryPointActivity,
		Action:     ActionMain,
		Categories: []string{CategoryLauncher},
		Flags:      domain.FlagSingleTop | domain.FlagClearTop,
	}
}
