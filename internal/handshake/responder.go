package handshake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/router"
	"go.uber.org/zap"
)

// ErrAlreadyHandled is returned when a responder sees a second request
var ErrAlreadyHandled = errors.New("configuration request already handled")

// Result is the answer reported to the host for a configuration request
type Result struct {
	OK       bool
	WidgetID int
}

// ResponderHost is the host side of the transient configuration responder
type ResponderHost interface {
	// SetResult acknowledges the request. Without it the host removes the widget.
	SetResult(result Result)
	// StartEntryPoint launches the app's main entry point with req
	StartEntryPoint(ctx context.Context, req *Request) error
	// Finish closes the responder
	Finish()
}

// Responder handles exactly one configuration request
type Responder struct {
	logger *zap.Logger
	host   ResponderHost
	scheme string

	mu    sync.Mutex
	state State
}

// NewResponder creates a responder for one request
func NewResponder(logger *zap.Logger, host ResponderHost, scheme string) *Responder {
	return &Responder{logger: logger, host: host, scheme: scheme}
}

// State returns how far the handshake got
func (r *Responder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Handle acknowledges req, redirects to the settings screen and finishes.
// The acknowledgement always comes first and happens even when the redirect fails.
func (r *Responder) Handle(ctx context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle {
		return ErrAlreadyHandled
	}
	r.state = StateConfigurationRequested

	widgetID := req.IntExtra(ExtraWidgetID, InvalidWidgetID)
	r.host.SetResult(Result{OK: true, WidgetID: widgetID})
	r.state = StateAcknowledged
	r.logger.Info("Widget configuration acknowledged", zap.Int("widget", widgetID))

	defer r.host.Finish()

	if err := r.host.StartEntryPoint(ctx, SettingsRequest(r.scheme)); err != nil {
		r.logger.Error("Redirect to settings failed", zap.Int("widget", widgetID), zap.Error(err))
		return fmt.Errorf("redirect to settings: %w", err)
	}
	r.state = StateRedirected

	r.logger.Info("Redirected to settings", zap.Int("widget", widgetID))
	return nil
}

// SettingsRequest is the entry-point request carrying the settings marker
func SettingsRequest(scheme string) *Request {
	return &Request{
		Action: ActionView,
		Data:   router.DeepLink(scheme, router.HostSettings),
		Flags:  domain.FlagNewTask | domain.FlagClearTop | domain.FlagSingleTop,
		Extras: map[string]any{ExtraNavigateToSettings: true},
	}
}
